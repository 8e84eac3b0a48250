package session

import (
	"maps"
	"time"

	"github.com/claude/repright/internal/models"
	"github.com/google/uuid"
)

// State is the persistent per-device session record. Zero value is the
// fresh-install default.
type State struct {
	Onboarded               bool                `json:"onboarded"`
	Profile                 *models.UserProfile `json:"profile,omitempty"`
	ActivePlan              *models.WorkoutPlan `json:"active_plan,omitempty"`
	ActivePlanName          string              `json:"active_plan_name"`
	CurrentDayIndex         int                 `json:"current_day_index"`
	StreakCount             int                 `json:"streak_count"`
	LastWorkoutDate         *time.Time          `json:"last_workout_date,omitempty"`
	CompletedToday          bool                `json:"completed_today"`
	AttemptedToday          bool                `json:"attempted_today"`
	StreakJustBroken        bool                `json:"streak_just_broken"`
	WorkoutMinutesToday     int                 `json:"workout_minutes_today"`
	AccumulatedSecondsToday int                 `json:"accumulated_seconds_today"`
	SessionStartTime        *time.Time          `json:"session_start_time,omitempty"`
	SetProgress             map[uuid.UUID]int   `json:"set_progress"`

	// Day is the local calendar day the daily fields belong to.
	Day time.Time `json:"day"`
}

// Clone returns a copy that shares no mutable memory with s. Plans and
// profiles are immutable once stored and are shared.
func (s State) Clone() State {
	c := s
	if s.LastWorkoutDate != nil {
		t := *s.LastWorkoutDate
		c.LastWorkoutDate = &t
	}
	if s.SessionStartTime != nil {
		t := *s.SessionStartTime
		c.SessionStartTime = &t
	}
	c.SetProgress = maps.Clone(s.SetProgress)
	if c.SetProgress == nil {
		c.SetProgress = map[uuid.UUID]int{}
	}
	return c
}

// Running reports whether a live session timer is anchored.
func (s State) Running() bool {
	return s.SessionStartTime != nil
}

// scheduled applies the scheduled-day rule to the plan state as it is now.
func (s State) scheduled() bool {
	if s.ActivePlan == nil {
		return true
	}
	if s.ActivePlan.IsFullWeek() {
		return true
	}
	return s.CurrentDayIndex < len(s.ActivePlan.Workouts)
}

// advanceDayIndex moves a partial-week plan one step through its rotation.
// Indices past the last workout are rest days.
func (s *State) advanceDayIndex() {
	if s.ActivePlan == nil {
		return
	}
	if !s.ActivePlan.IsFullWeek() && s.CurrentDayIndex < s.ActivePlan.RotationLength()-1 {
		s.CurrentDayIndex++
		return
	}
	s.CurrentDayIndex = 0
}

func (s *State) resetDaily() {
	s.AttemptedToday = false
	s.CompletedToday = false
	s.WorkoutMinutesToday = 0
	s.AccumulatedSecondsToday = 0
	s.SessionStartTime = nil
}
