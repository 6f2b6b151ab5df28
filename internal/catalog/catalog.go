// Package catalog holds the static exercise table. Exercises are defined once
// at process start and never created or destroyed at runtime.
package catalog

// Role places an exercise in the daily base program.
type Role string

const (
	RoleWarmup   Role = "warmup"
	RoleMiddle   Role = "middle"
	RoleCooldown Role = "cooldown"
	RoleBonus    Role = "bonus"
)

// Kind tells how an exercise result is measured.
type Kind string

const (
	KindReps  Kind = "reps"  // higher is better
	KindTimed Kind = "timed" // lower is better
)

// Muscle is a muscle-group tag used for load accounting.
type Muscle string

const (
	MuscleChest     Muscle = "chest"
	MuscleTriceps   Muscle = "triceps"
	MuscleShoulders Muscle = "shoulders"
	MuscleBack      Muscle = "back"
	MuscleCore      Muscle = "core"
	MuscleLegs      Muscle = "legs"
	MuscleFullBody  Muscle = "full_body"
)

// AllMuscles lists every muscle-group tag in display order.
func AllMuscles() []Muscle {
	return []Muscle{
		MuscleChest, MuscleTriceps, MuscleShoulders,
		MuscleBack, MuscleCore, MuscleLegs, MuscleFullBody,
	}
}

// NameRU returns the Cyrillic display name for a muscle group.
func (m Muscle) NameRU() string {
	switch m {
	case MuscleChest:
		return "грудь"
	case MuscleTriceps:
		return "трицепс"
	case MuscleShoulders:
		return "плечи"
	case MuscleBack:
		return "спина"
	case MuscleCore:
		return "пресс"
	case MuscleLegs:
		return "ноги"
	case MuscleFullBody:
		return "всё тело"
	}
	return string(m)
}

// Exercise is one catalog entry. Immutable.
type Exercise struct {
	Key     string   `json:"key"`
	Name    string   `json:"name"` // Cyrillic display name
	Role    Role     `json:"role"`
	Muscles []Muscle `json:"muscles"`
	Kind    Kind     `json:"kind"`
}

// Timed reports whether the exercise result is measured in seconds.
func (e Exercise) Timed() bool { return e.Kind == KindTimed }

// exercises is the fixed base program (in program order) followed by the
// bonus exercises from the book.
var exercises = []Exercise{
	{Key: "taiji_shadow", Name: "тайцзи бой с тенью", Role: RoleWarmup, Kind: KindTimed,
		Muscles: []Muscle{MuscleFullBody, MuscleLegs}},
	{Key: "pushups_fist", Name: "отжимания на кулаках", Role: RoleMiddle, Kind: KindReps,
		Muscles: []Muscle{MuscleChest, MuscleTriceps, MuscleShoulders}},
	{Key: "pushups_handles", Name: "отжимания с ручками", Role: RoleMiddle, Kind: KindReps,
		Muscles: []Muscle{MuscleChest, MuscleTriceps}},
	{Key: "jackknife", Name: "пресс складной нож", Role: RoleMiddle, Kind: KindReps,
		Muscles: []Muscle{MuscleCore}},
	{Key: "plank_elbows", Name: "стойка на локтях", Role: RoleMiddle, Kind: KindTimed,
		Muscles: []Muscle{MuscleCore, MuscleShoulders}},
	{Key: "squats_strikes", Name: "приседания с ударами", Role: RoleMiddle, Kind: KindReps,
		Muscles: []Muscle{MuscleLegs, MuscleShoulders}},
	{Key: "strikes_combo", Name: "связки ударов", Role: RoleMiddle, Kind: KindReps,
		Muscles: []Muscle{MuscleShoulders, MuscleBack}},
	{Key: "form_24", Name: "форма 24", Role: RoleCooldown, Kind: KindTimed,
		Muscles: []Muscle{MuscleFullBody, MuscleLegs}},

	{Key: "silk_reeling", Name: "чаньсыгун", Role: RoleBonus, Kind: KindTimed,
		Muscles: []Muscle{MuscleFullBody}},
	{Key: "pistol_squats", Name: "приседания пистолетиком", Role: RoleBonus, Kind: KindReps,
		Muscles: []Muscle{MuscleLegs, MuscleCore}},
	{Key: "bridge", Name: "мостик", Role: RoleBonus, Kind: KindTimed,
		Muscles: []Muscle{MuscleBack, MuscleCore}},
}

var byKey = func() map[string]Exercise {
	m := make(map[string]Exercise, len(exercises))
	for _, e := range exercises {
		m[e.Key] = e
	}
	return m
}()

// Find returns the exercise for key and whether it exists.
func Find(key string) (Exercise, bool) {
	e, ok := byKey[key]
	return e, ok
}

// All returns every exercise in declaration order.
func All() []Exercise {
	out := make([]Exercise, len(exercises))
	copy(out, exercises)
	return out
}

// Warmup returns the fixed warmup exercise.
func Warmup() Exercise { return byRole(RoleWarmup)[0] }

// Cooldown returns the fixed cooldown exercise.
func Cooldown() Exercise { return byRole(RoleCooldown)[0] }

// Middle returns the middle-slot exercises in declaration order.
func Middle() []Exercise { return byRole(RoleMiddle) }

// Bonus returns the bonus (book) exercises in declaration order.
func Bonus() []Exercise { return byRole(RoleBonus) }

// BaseProgram returns warmup, middles, and cooldown in program order.
func BaseProgram() []Exercise {
	var out []Exercise
	for _, e := range exercises {
		if e.Role != RoleBonus {
			out = append(out, e)
		}
	}
	return out
}

func byRole(r Role) []Exercise {
	var out []Exercise
	for _, e := range exercises {
		if e.Role == r {
			out = append(out, e)
		}
	}
	return out
}
