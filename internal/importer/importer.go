// Package importer backfills the training log from a CSV export. Rows are
// replayed through the record lifecycle in date order, so imported history
// produces the same record states as if each attempt had been logged live.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/majowuji/wuji/internal/catalog"
	"github.com/majowuji/wuji/internal/models"
	"github.com/majowuji/wuji/internal/storage"
)

// Stats tracks import progress.
type Stats struct {
	RowsImported int
	RowsSkipped  int
	Rejected     []string
}

// Importer reads CSV training history and replays it into the database.
type Importer struct {
	db     *storage.DB
	loc    *time.Location
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer.
func New(db *storage.DB, loc *time.Location, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{db: db, loc: loc, log: log, dryRun: dryRun}
}

// ImportFile imports one CSV file. Expected columns, with an optional header
// row: date, exercise, value, notes. Dates are either YYYY-MM-DD or RFC 3339;
// value is reps, or seconds for timed exercises.
func (imp *Importer) ImportFile(ctx context.Context, userID int64, path string) (*Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return &imp.stats, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := imp.parse(f)
	if err != nil {
		return &imp.stats, fmt.Errorf("parsing %s: %w", path, err)
	}

	// Replay in date order so consolidation windows line up with history.
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	for i := range rows {
		rows[i].UserID = userID
		if imp.dryRun {
			imp.stats.RowsImported++
			continue
		}
		if _, _, err := imp.db.LogAttempt(ctx, &rows[i], imp.loc); err != nil {
			imp.stats.RowsSkipped++
			imp.reject(fmt.Sprintf("%s %s: %v", rows[i].Date.Format("2006-01-02"), rows[i].Exercise, err))
			continue
		}
		imp.stats.RowsImported++
	}

	imp.log.Info("import finished",
		"file", path,
		"imported", imp.stats.RowsImported,
		"skipped", imp.stats.RowsSkipped,
		"dry_run", imp.dryRun)
	return &imp.stats, nil
}

func (imp *Importer) parse(r io.Reader) ([]models.Training, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var rows []models.Training
	line := 0
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "date") {
			continue
		}
		if len(rec) < 3 {
			imp.reject(fmt.Sprintf("line %d: want at least 3 columns, got %d", line, len(rec)))
			imp.stats.RowsSkipped++
			continue
		}

		t, err := imp.parseRow(rec)
		if err != nil {
			imp.reject(fmt.Sprintf("line %d: %v", line, err))
			imp.stats.RowsSkipped++
			continue
		}
		rows = append(rows, t)
	}
	return rows, nil
}

func (imp *Importer) parseRow(rec []string) (models.Training, error) {
	date, err := parseDate(strings.TrimSpace(rec[0]), imp.loc)
	if err != nil {
		return models.Training{}, err
	}

	key := strings.TrimSpace(rec[1])
	ex, ok := catalog.Find(key)
	if !ok {
		return models.Training{}, fmt.Errorf("unknown exercise %q", key)
	}

	value, err := strconv.Atoi(strings.TrimSpace(rec[2]))
	if err != nil {
		return models.Training{}, fmt.Errorf("bad value %q", rec[2])
	}

	t := models.Training{Exercise: ex.Key, Date: date}
	if ex.Timed() {
		t.DurationSec = &value
	} else {
		t.Reps = value
	}
	if len(rec) > 3 {
		t.Notes = strings.TrimSpace(rec[3])
	}
	return t, nil
}

func (imp *Importer) reject(msg string) {
	// Cap the rejection list so a malformed file doesn't balloon memory.
	if len(imp.stats.Rejected) < 100 {
		imp.stats.Rejected = append(imp.stats.Rejected, msg)
	}
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q", s)
	}
	return t, nil
}
