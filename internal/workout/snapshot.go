package workout

import (
	"github.com/claude/repright/internal/models"
	"github.com/google/uuid"
)

// Snapshot is what a client renders for the current step.
type Snapshot struct {
	Step           Step             `json:"step"`
	Workout        *models.Workout  `json:"workout,omitempty"`
	Exercise       *models.Exercise `json:"exercise,omitempty"`
	SetNumber      int              `json:"set_number,omitempty"`
	TotalSets      int              `json:"total_sets,omitempty"`
	RestSeconds    int              `json:"rest_seconds,omitempty"`
	Exercises      []ExerciseStatus `json:"exercises,omitempty"`
	StreakCount    int              `json:"streak_count"`
	ElapsedSeconds int              `json:"elapsed_seconds"`
	Completed      bool             `json:"completed_today"`
}

type ExerciseStatus struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	CompletedSets int       `json:"completed_sets"`
	TotalSets     int       `json:"total_sets"`
	Done          bool      `json:"done"`
}

func (f *Flow) Snapshot() Snapshot {
	st := f.sess.State()
	snap := Snapshot{
		Step:           f.step,
		StreakCount:    st.StreakCount,
		ElapsedSeconds: int(f.sess.Elapsed().Seconds()),
		Completed:      st.CompletedToday,
	}
	if w, ok := f.sess.CurrentWorkout(); ok {
		snap.Workout = &w
		for _, ex := range w.Exercises {
			done := min(f.sess.SetProgress(ex.ID), ex.Sets)
			snap.Exercises = append(snap.Exercises, ExerciseStatus{
				ID:            ex.ID,
				Name:          ex.Name,
				CompletedSets: done,
				TotalSets:     ex.Sets,
				Done:          done >= ex.Sets,
			})
		}
	}
	switch f.step {
	case StepActive:
		ex := f.exercise
		snap.Exercise = &ex
		snap.SetNumber = f.setNumber
		snap.TotalSets = ex.Sets
	case StepResting:
		ex := f.exercise
		snap.Exercise = &ex
		snap.SetNumber = f.setNumber
		snap.TotalSets = ex.Sets
		snap.RestSeconds = ex.RestTime
	}
	return snap
}
