package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DaysPerWeek is the length of a full-week plan. Plans with exactly this many
// workouts map entries to weekdays instead of rotating.
const DaysPerWeek = 7

// WorkoutPlan is produced by the AI service and treated as opaque once parsed.
type WorkoutPlan struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	DurationWeeks int       `json:"duration_weeks"`
	Workouts      []Workout `json:"workouts"`
	CreatedAt     time.Time `json:"created_at"`
}

type Workout struct {
	ID                uuid.UUID  `json:"id"`
	Day               string     `json:"day"`
	Title             string     `json:"title"`
	Exercises         []Exercise `json:"exercises"`
	EstimatedDuration int        `json:"estimated_duration"` // minutes
}

type Exercise struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Sets         int       `json:"sets"`
	Reps         string    `json:"reps"`
	RestTime     int       `json:"rest_time"` // seconds
	Notes        *string   `json:"notes,omitempty"`
	MuscleGroups []string  `json:"muscle_groups"`
	Difficulty   string    `json:"difficulty"`
}

// IsFullWeek reports whether every weekday has its own workout entry.
func (p *WorkoutPlan) IsFullWeek() bool {
	return len(p.Workouts) == DaysPerWeek
}

// RotationLength is the number of days a partial plan cycles through: a week,
// or every entry when the plan has more than seven.
func (p *WorkoutPlan) RotationLength() int {
	return max(DaysPerWeek, len(p.Workouts))
}

// MondayFirst reports whether the first entry is labelled as a Monday.
func (p *WorkoutPlan) MondayFirst() bool {
	if len(p.Workouts) == 0 {
		return false
	}
	day := strings.ToLower(strings.TrimSpace(p.Workouts[0].Day))
	return strings.HasPrefix(day, "mon")
}

// EnsureIDs fills in missing identifiers and the creation time. Plans posted
// by clients may omit them; set progress is keyed by exercise ID.
func (p *WorkoutPlan) EnsureIDs(now time.Time) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	for i := range p.Workouts {
		w := &p.Workouts[i]
		if w.ID == uuid.Nil {
			w.ID = uuid.New()
		}
		for j := range w.Exercises {
			if w.Exercises[j].ID == uuid.Nil {
				w.Exercises[j].ID = uuid.New()
			}
		}
	}
}

// Exercise returns the exercise with the given ID.
func (w *Workout) Exercise(id uuid.UUID) (Exercise, bool) {
	for _, e := range w.Exercises {
		if e.ID == id {
			return e, true
		}
	}
	return Exercise{}, false
}

// CustomizationResponse is the AI verdict on a free-text plan change request.
// ModifiedPlan is nil when the request was refused.
type CustomizationResponse struct {
	IsHarmful      bool         `json:"is_harmful"`
	WarningMessage *string      `json:"warning_message,omitempty"`
	ModifiedPlan   *WorkoutPlan `json:"modified_plan,omitempty"`
	Explanation    string       `json:"explanation"`
}

// SavedWorkout is a plan parked in one of the numbered slots.
type SavedWorkout struct {
	ID          uuid.UUID   `json:"id"`
	WorkoutPlan WorkoutPlan `json:"workout_plan"`
	SavedDate   time.Time   `json:"saved_date"`
	SlotNumber  int         `json:"slot_number"`
	Name        string      `json:"name"`
}
