// Package workout drives a user through today's workout: readiness,
// exercise selection, the set/rest loop and completion.
package workout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/repright/internal/models"
	"github.com/claude/repright/internal/session"
	"github.com/google/uuid"
)

var (
	ErrInvalidTransition = errors.New("invalid workout transition")
	ErrNoWorkoutToday    = errors.New("no workout scheduled today")
	ErrUnknownExercise   = errors.New("exercise is not part of today's workout")
	ErrExerciseCompleted = errors.New("exercise already completed today")
)

type Step string

const (
	StepReady     Step = "ready"
	StepSelection Step = "exercise_selection"
	StepActive    Step = "active_exercise"
	StepResting   Step = "resting"
	StepCompleted Step = "completed"
)

// Session is the part of *session.Session the flow reads and mutates.
type Session interface {
	State() session.State
	Day() time.Time
	Elapsed() time.Duration
	CurrentWorkout() (models.Workout, bool)
	SetProgress(exerciseID uuid.UUID) int
	AttemptWorkout(ctx context.Context) (session.State, error)
	CompleteWorkout(ctx context.Context, minutes int) (session.State, error)
	Pause(ctx context.Context) (session.State, error)
	Resume(ctx context.Context) (session.State, error)
	RecordSetProgress(ctx context.Context, exerciseID uuid.UUID, completed int) (session.State, error)
	SetWorkoutMinutes(ctx context.Context, minutes int) (session.State, error)
}

// Flow is the in-memory workout state machine of one device. Everything it
// must remember across restarts lives in the Session.
type Flow struct {
	sess Session
	day  time.Time

	step     Step
	exercise models.Exercise
	// setNumber is the set being performed when active, and the next set
	// when resting.
	setNumber int
}

func New(sess Session) *Flow {
	return &Flow{sess: sess, day: sess.Day(), step: StepReady}
}

func (f *Flow) Step() Step {
	return f.step
}

// Sync resets the flow when the session has rolled over to a new day. A
// completed flow stays completed so the completion screen is not erased.
func (f *Flow) Sync() bool {
	day := f.sess.Day()
	if day.Equal(f.day) {
		return false
	}
	f.day = day
	if f.step == StepCompleted {
		return false
	}
	f.reset()
	return true
}

func (f *Flow) reset() {
	f.step = StepReady
	f.exercise = models.Exercise{}
	f.setNumber = 0
}

func (f *Flow) transitionErr(op string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, op, f.step)
}

// Confirm moves from Ready to exercise selection, marking today attempted
// and starting the session timer.
func (f *Flow) Confirm(ctx context.Context) (Snapshot, error) {
	if f.step != StepReady {
		return f.Snapshot(), f.transitionErr("confirm")
	}
	w, ok := f.sess.CurrentWorkout()
	if !ok {
		return f.Snapshot(), ErrNoWorkoutToday
	}
	if _, err := f.sess.AttemptWorkout(ctx); err != nil {
		return f.Snapshot(), err
	}
	if f.allDone(w) {
		if !f.sess.State().CompletedToday {
			if _, err := f.sess.CompleteWorkout(ctx, 0); err != nil {
				return f.Snapshot(), err
			}
		}
		f.step = StepCompleted
		return f.Snapshot(), nil
	}
	if _, err := f.sess.Resume(ctx); err != nil {
		return f.Snapshot(), err
	}
	f.step = StepSelection
	return f.Snapshot(), nil
}

// Select starts an exercise that is not yet finished today, continuing
// after its recorded sets.
func (f *Flow) Select(ctx context.Context, exerciseID uuid.UUID) (Snapshot, error) {
	if f.step != StepSelection {
		return f.Snapshot(), f.transitionErr("select an exercise")
	}
	w, ok := f.sess.CurrentWorkout()
	if !ok {
		return f.Snapshot(), ErrNoWorkoutToday
	}
	ex, ok := w.Exercise(exerciseID)
	if !ok {
		return f.Snapshot(), ErrUnknownExercise
	}
	done := f.sess.SetProgress(ex.ID)
	if done >= ex.Sets {
		return f.Snapshot(), ErrExerciseCompleted
	}
	if _, err := f.sess.Resume(ctx); err != nil {
		return f.Snapshot(), err
	}
	f.exercise = ex
	f.setNumber = done + 1
	f.step = StepActive
	return f.Snapshot(), nil
}

// CompleteSet marks the current set done. The last set of an exercise
// records it as finished and returns to selection, or completes the workout
// when nothing is left; other sets lead to a rest.
func (f *Flow) CompleteSet(ctx context.Context) (Snapshot, error) {
	if f.step != StepActive {
		return f.Snapshot(), f.transitionErr("complete a set")
	}
	next := f.setNumber + 1
	if next <= f.exercise.Sets {
		if _, err := f.sess.RecordSetProgress(ctx, f.exercise.ID, next-1); err != nil {
			return f.Snapshot(), err
		}
		f.setNumber = next
		f.step = StepResting
		return f.Snapshot(), nil
	}

	if _, err := f.sess.RecordSetProgress(ctx, f.exercise.ID, f.exercise.Sets); err != nil {
		return f.Snapshot(), err
	}
	f.exercise = models.Exercise{}
	f.setNumber = 0

	w, ok := f.sess.CurrentWorkout()
	if ok && f.allDone(w) {
		if _, err := f.sess.CompleteWorkout(ctx, 0); err != nil {
			return f.Snapshot(), err
		}
		f.step = StepCompleted
		return f.Snapshot(), nil
	}
	f.step = StepSelection
	return f.Snapshot(), nil
}

// StartNextSet ends a rest. The rest target is advisory.
func (f *Flow) StartNextSet() (Snapshot, error) {
	if f.step != StepResting {
		return f.Snapshot(), f.transitionErr("start the next set")
	}
	f.step = StepActive
	return f.Snapshot(), nil
}

// Abort stops the current exercise early, keeping the sets done so far.
// Positive minutes overwrite today's reported workout time.
func (f *Flow) Abort(ctx context.Context, minutes int) (Snapshot, error) {
	if f.step != StepActive && f.step != StepResting {
		return f.Snapshot(), f.transitionErr("abort an exercise")
	}
	if minutes < 0 {
		return f.Snapshot(), fmt.Errorf("%w: negative minutes", session.ErrInvalidInput)
	}
	if err := f.recordPartial(ctx); err != nil {
		return f.Snapshot(), err
	}
	if minutes > 0 {
		if _, err := f.sess.SetWorkoutMinutes(ctx, minutes); err != nil {
			return f.Snapshot(), err
		}
	}
	f.exercise = models.Exercise{}
	f.setNumber = 0
	f.step = StepSelection
	return f.Snapshot(), nil
}

// Exit leaves the flow, keeping partial progress and pausing the timer.
func (f *Flow) Exit(ctx context.Context) (Snapshot, error) {
	if f.step == StepActive || f.step == StepResting {
		if err := f.recordPartial(ctx); err != nil {
			return f.Snapshot(), err
		}
	}
	if _, err := f.sess.Pause(ctx); err != nil {
		return f.Snapshot(), err
	}
	f.reset()
	return f.Snapshot(), nil
}

func (f *Flow) recordPartial(ctx context.Context) error {
	completed := max(0, f.setNumber-1)
	_, err := f.sess.RecordSetProgress(ctx, f.exercise.ID, completed)
	return err
}

func (f *Flow) allDone(w models.Workout) bool {
	for _, ex := range w.Exercises {
		if f.sess.SetProgress(ex.ID) < ex.Sets {
			return false
		}
	}
	return true
}
