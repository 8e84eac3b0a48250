// Package session owns the per-device workout session state: streak
// tracking, daily flags, the session timer and set progress.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/repright/internal/models"
	"github.com/google/uuid"
)

// ErrInvalidInput is returned for caller-supplied values the session rejects.
// The state is left unchanged.
var ErrInvalidInput = errors.New("invalid input")

// Session is an explicitly owned session context for one device. Every
// transition persists its changed fields as one batch. A Session is not safe
// for concurrent use; callers serialize access per device.
type Session struct {
	persister Persister
	cal       Calendar
	now       func() time.Time
	logger    *slog.Logger

	state State
}

type Option func(*Session)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithCalendar(cal Calendar) Option {
	return func(s *Session) { s.cal = cal }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// RolloverReport describes what a rollover did.
type RolloverReport struct {
	From             time.Time `json:"from"`
	To               time.Time `json:"to"`
	Boundaries       int       `json:"boundaries"`
	Credited         int       `json:"credited"`
	StreakBroken     bool      `json:"streak_broken"`
	DiscardedSession bool      `json:"discarded_session"`
}

// Crossed reports whether at least one day boundary was processed.
func (r RolloverReport) Crossed() bool {
	return r.Boundaries > 0
}

// Open loads the device state and rolls it forward to today.
func Open(ctx context.Context, p Persister, opts ...Option) (*Session, RolloverReport, error) {
	s := &Session{
		persister: p,
		cal:       NewCalendar(nil),
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}

	st, err := p.Load(ctx)
	if err != nil {
		return nil, RolloverReport{}, fmt.Errorf("loading session: %w", err)
	}
	s.state = st

	report, err := s.Rollover(ctx)
	if err != nil {
		return nil, RolloverReport{}, err
	}
	return s, report, nil
}

// State returns a snapshot of the current state.
func (s *Session) State() State {
	return s.state.Clone()
}

// Day returns the calendar day the daily fields belong to.
func (s *Session) Day() time.Time {
	return s.state.Day
}

func (s *Session) Calendar() Calendar {
	return s.cal
}

func (s *Session) Now() time.Time {
	return s.now()
}

// mutate applies fn to a copy of the state and persists the difference. The
// transition takes effect only once its fields are stored, so memory never
// runs ahead of the store.
func (s *Session) mutate(ctx context.Context, fn func(*State) error) (State, error) {
	next := s.state.Clone()
	if err := fn(&next); err != nil {
		return s.State(), err
	}
	if err := s.persister.Save(ctx, s.state, next); err != nil {
		s.logger.Warn("persisting session state", "error", err)
		return s.State(), err
	}
	s.state = next
	return s.State(), nil
}

// Rollover processes every calendar-day boundary between the stored day and
// today. Each boundary is handled exactly once; a day already rolled over is
// never revisited.
func (s *Session) Rollover(ctx context.Context) (RolloverReport, error) {
	now := s.now()
	today := s.cal.Day(now)
	report := RolloverReport{From: s.state.Day, To: today}

	if !s.state.Day.IsZero() && !s.state.Day.Before(today) {
		return report, nil
	}

	_, err := s.mutate(ctx, func(st *State) error {
		if st.SessionStartTime != nil && !s.cal.SameDay(*st.SessionStartTime, now) {
			st.SessionStartTime = nil
			st.WorkoutMinutesToday = 0
			st.AccumulatedSecondsToday = 0
			report.DiscardedSession = true
		}
		if st.Day.IsZero() {
			st.Day = today
			return nil
		}
		for day := s.cal.Day(st.Day); day.Before(today); day = s.cal.NextDay(day) {
			s.closeDay(st, day, &report)
		}
		st.Day = today
		return nil
	})
	if err != nil {
		return report, err
	}
	if report.Crossed() {
		s.logger.Info("day rollover",
			"from", report.From.Format(time.DateOnly), "to", today.Format(time.DateOnly),
			"boundaries", report.Boundaries, "streak", s.state.StreakCount,
			"streak_broken", report.StreakBroken)
	}
	return report, nil
}

// closeDay settles the streak for day under the plan state that applied to
// it, then resets the daily fields and rotates the plan.
func (s *Session) closeDay(st *State, day time.Time, report *RolloverReport) {
	report.Boundaries++
	if st.scheduled() {
		switch {
		case st.AttemptedToday:
			if st.LastWorkoutDate == nil || !s.cal.SameDay(*st.LastWorkoutDate, day) {
				st.StreakCount++
				d := day
				st.LastWorkoutDate = &d
				report.Credited++
			}
		case st.StreakCount > 0:
			st.StreakCount = 0
			st.StreakJustBroken = true
			report.StreakBroken = true
		}
	}
	st.resetDaily()
	st.advanceDayIndex()
	clear(st.SetProgress)
}

// IsScheduledDay reports whether today counts toward the streak.
func (s *Session) IsScheduledDay() bool {
	return s.state.scheduled()
}

// CurrentWorkout returns today's workout. Rest days of a partial plan return
// false, as does a device without an active plan.
func (s *Session) CurrentWorkout() (models.Workout, bool) {
	return currentWorkout(s.state, s.cal.Weekday(s.now()))
}

func currentWorkout(st State, weekday time.Weekday) (models.Workout, bool) {
	plan := st.ActivePlan
	if plan == nil || len(plan.Workouts) == 0 {
		return models.Workout{}, false
	}
	if plan.IsFullWeek() {
		idx := int(weekday)
		if plan.MondayFirst() {
			idx = (idx + 6) % models.DaysPerWeek
		}
		return plan.Workouts[idx], true
	}
	if st.CurrentDayIndex < 0 || st.CurrentDayIndex >= len(plan.Workouts) {
		return models.Workout{}, false
	}
	return plan.Workouts[st.CurrentDayIndex], true
}

// AttemptWorkout marks today as attempted. The first attempt on a scheduled
// day credits the streak immediately; later calls leave it alone.
func (s *Session) AttemptWorkout(ctx context.Context) (State, error) {
	now := s.now()
	return s.mutate(ctx, func(st *State) error {
		first := !st.AttemptedToday
		st.AttemptedToday = true
		if first && st.scheduled() {
			st.StreakCount++
			st.LastWorkoutDate = &now
		}
		return nil
	})
}

// CompleteWorkout marks today complete. With minutes > 0 the reported time
// replaces today's total; otherwise the running timer is folded in.
func (s *Session) CompleteWorkout(ctx context.Context, minutes int) (State, error) {
	if minutes < 0 {
		return s.State(), fmt.Errorf("%w: negative minutes", ErrInvalidInput)
	}
	now := s.now()
	return s.mutate(ctx, func(st *State) error {
		st.CompletedToday = true
		if minutes > 0 {
			st.WorkoutMinutesToday = minutes
			st.AccumulatedSecondsToday = minutes * 60
			st.SessionStartTime = nil
			return nil
		}
		foldTimer(st, now)
		return nil
	})
}

// Pause folds the running timer into today's accumulated seconds.
func (s *Session) Pause(ctx context.Context) (State, error) {
	if !s.state.Running() {
		return s.State(), nil
	}
	now := s.now()
	return s.mutate(ctx, func(st *State) error {
		foldTimer(st, now)
		return nil
	})
}

// Resume starts the session timer unless it is already running.
func (s *Session) Resume(ctx context.Context) (State, error) {
	if s.state.Running() {
		return s.State(), nil
	}
	now := s.now()
	return s.mutate(ctx, func(st *State) error {
		st.SessionStartTime = &now
		return nil
	})
}

func foldTimer(st *State, now time.Time) {
	if st.SessionStartTime == nil {
		return
	}
	elapsed := int(now.Sub(*st.SessionStartTime) / time.Second)
	st.AccumulatedSecondsToday += max(0, elapsed)
	st.WorkoutMinutesToday = st.AccumulatedSecondsToday / 60
	st.SessionStartTime = nil
}

// Elapsed returns today's workout time including a running session.
func (s *Session) Elapsed() time.Duration {
	d := time.Duration(s.state.AccumulatedSecondsToday) * time.Second
	if start := s.state.SessionStartTime; start != nil {
		if delta := s.now().Sub(*start); delta > 0 {
			d += delta
		}
	}
	return d
}

// AcknowledgeStreakBroken clears the one-shot streak-broken flag.
func (s *Session) AcknowledgeStreakBroken(ctx context.Context) (State, error) {
	if !s.state.StreakJustBroken {
		return s.State(), nil
	}
	return s.mutate(ctx, func(st *State) error {
		st.StreakJustBroken = false
		return nil
	})
}

// CompleteOnboarding stores the profile and marks the device onboarded.
func (s *Session) CompleteOnboarding(ctx context.Context, profile models.UserProfile) (State, error) {
	return s.mutate(ctx, func(st *State) error {
		st.Profile = &profile
		st.Onboarded = true
		return nil
	})
}

// UpdateProfile replaces the stored profile wholesale.
func (s *Session) UpdateProfile(ctx context.Context, profile models.UserProfile) (State, error) {
	if !s.state.Onboarded {
		return s.State(), fmt.Errorf("%w: device is not onboarded", ErrInvalidInput)
	}
	return s.mutate(ctx, func(st *State) error {
		st.Profile = &profile
		return nil
	})
}

// ActivatePlan makes plan the active plan and restarts its rotation.
func (s *Session) ActivatePlan(ctx context.Context, plan models.WorkoutPlan, name string) (State, error) {
	if len(plan.Workouts) == 0 {
		return s.State(), fmt.Errorf("%w: plan has no workouts", ErrInvalidInput)
	}
	plan.EnsureIDs(s.now())
	if err := checkPlan(plan); err != nil {
		return s.State(), err
	}
	if name == "" {
		name = plan.Title
	}
	return s.mutate(ctx, func(st *State) error {
		st.ActivePlan = &plan
		st.ActivePlanName = name
		st.CurrentDayIndex = 0
		clear(st.SetProgress)
		return nil
	})
}

// checkPlan rejects plans the flow cannot walk: exercises without sets and
// exercise IDs used twice, which would share set progress.
func checkPlan(plan models.WorkoutPlan) error {
	seen := make(map[uuid.UUID]bool)
	for _, w := range plan.Workouts {
		for _, ex := range w.Exercises {
			if ex.Sets < 1 {
				return fmt.Errorf("%w: exercise %q has %d sets", ErrInvalidInput, ex.Name, ex.Sets)
			}
			if ex.RestTime < 0 {
				return fmt.Errorf("%w: exercise %q has negative rest time", ErrInvalidInput, ex.Name)
			}
			if seen[ex.ID] {
				return fmt.Errorf("%w: duplicate exercise id %s", ErrInvalidInput, ex.ID)
			}
			seen[ex.ID] = true
		}
	}
	return nil
}

func (s *Session) ClearPlan(ctx context.Context) (State, error) {
	return s.mutate(ctx, func(st *State) error {
		st.ActivePlan = nil
		st.ActivePlanName = ""
		st.CurrentDayIndex = 0
		clear(st.SetProgress)
		return nil
	})
}

// RecordSetProgress stores the completed set count of an exercise. Zero
// removes the entry.
func (s *Session) RecordSetProgress(ctx context.Context, exerciseID uuid.UUID, completed int) (State, error) {
	if completed < 0 {
		return s.State(), fmt.Errorf("%w: negative set count", ErrInvalidInput)
	}
	return s.mutate(ctx, func(st *State) error {
		if completed == 0 {
			delete(st.SetProgress, exerciseID)
			return nil
		}
		st.SetProgress[exerciseID] = completed
		return nil
	})
}

// SetProgress returns the completed set count of an exercise today.
func (s *Session) SetProgress(exerciseID uuid.UUID) int {
	return s.state.SetProgress[exerciseID]
}

// SetWorkoutMinutes overwrites today's reported workout time.
func (s *Session) SetWorkoutMinutes(ctx context.Context, minutes int) (State, error) {
	if minutes < 0 {
		return s.State(), fmt.Errorf("%w: negative minutes", ErrInvalidInput)
	}
	return s.mutate(ctx, func(st *State) error {
		st.WorkoutMinutesToday = minutes
		return nil
	})
}

// DeleteAll erases every stored value of the device and returns it to
// onboarding.
func (s *Session) DeleteAll(ctx context.Context) (State, error) {
	if err := s.persister.Reset(ctx); err != nil {
		return s.State(), fmt.Errorf("deleting device data: %w", err)
	}
	s.state = State{SetProgress: map[uuid.UUID]int{}}
	return s.mutate(ctx, func(st *State) error {
		st.Day = s.cal.Day(s.now())
		return nil
	})
}
