package engine

import "fmt"

// InvalidInputError reports caller-recoverable bad input: a non-positive
// result value or an exercise key missing from the catalog.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

func invalidInputf(format string, args ...any) error {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}

// InconsistentStateError reports a persisted record lifecycle state that
// matches no defined transition. Fatal to the single operation; the caller
// decides whether to fall back to a fresh record.
type InconsistentStateError struct {
	Reason string
}

func (e *InconsistentStateError) Error() string {
	return "inconsistent record state: " + e.Reason
}

func inconsistentStatef(format string, args ...any) error {
	return &InconsistentStateError{Reason: fmt.Sprintf(format, args...)}
}
