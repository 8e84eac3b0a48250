package mcp

import (
	"context"
	"time"

	"github.com/claude/repright/internal/device"
	"github.com/claude/repright/internal/models"
	"github.com/claude/repright/internal/saved"
)

// SessionSummary is the streak and today's progress of one device. Field
// names match the REST session view so HTTPClient can decode it directly.
type SessionSummary struct {
	Onboarded           bool       `json:"onboarded"`
	StreakCount         int        `json:"streak_count"`
	StreakJustBroken    bool       `json:"streak_just_broken"`
	LastWorkoutDate     *time.Time `json:"last_workout_date,omitempty"`
	ScheduledToday      bool       `json:"scheduled_today"`
	AttemptedToday      bool       `json:"attempted_today"`
	CompletedToday      bool       `json:"completed_today"`
	WorkoutMinutesToday int        `json:"workout_minutes_today"`
	ElapsedSeconds      int        `json:"elapsed_seconds"`
	ActivePlanName      string     `json:"active_plan_name"`
	CurrentDayIndex     int        `json:"current_day_index"`
}

type TodayWorkout struct {
	Scheduled bool            `json:"scheduled"`
	Workout   *models.Workout `json:"workout,omitempty"`
}

type ActivePlan struct {
	Name            string              `json:"name"`
	Plan            *models.WorkoutPlan `json:"plan"`
	CurrentDayIndex int                 `json:"current_day_index"`
}

type SavedWorkouts struct {
	Slots     []saved.Slot `json:"slots"`
	Available []int        `json:"available"`
}

// DataSource abstracts where device data comes from. Both RegistrySource
// (in-process) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	DeviceIDs(ctx context.Context) ([]string, error)
	Session(ctx context.Context, deviceID string) (SessionSummary, error)
	TodayWorkout(ctx context.Context, deviceID string) (TodayWorkout, error)
	Plan(ctx context.Context, deviceID string) (ActivePlan, error)
	SavedWorkouts(ctx context.Context, deviceID string) (SavedWorkouts, error)
}

// RegistrySource reads devices through the registry, so each read also
// rolls the device over to today.
type RegistrySource struct {
	devices *device.Registry
}

// Compile-time check: RegistrySource satisfies DataSource.
var _ DataSource = (*RegistrySource)(nil)

func NewRegistrySource(devices *device.Registry) *RegistrySource {
	return &RegistrySource{devices: devices}
}

func (s *RegistrySource) DeviceIDs(ctx context.Context) ([]string, error) {
	return s.devices.DeviceIDs(ctx)
}

func (s *RegistrySource) Session(ctx context.Context, deviceID string) (SessionSummary, error) {
	var out SessionSummary
	err := s.devices.Do(ctx, deviceID, func(d *device.Device) error {
		st := d.Session.State()
		out = SessionSummary{
			Onboarded:           st.Onboarded,
			StreakCount:         st.StreakCount,
			StreakJustBroken:    st.StreakJustBroken,
			LastWorkoutDate:     st.LastWorkoutDate,
			ScheduledToday:      d.Session.IsScheduledDay(),
			AttemptedToday:      st.AttemptedToday,
			CompletedToday:      st.CompletedToday,
			WorkoutMinutesToday: st.WorkoutMinutesToday,
			ElapsedSeconds:      int(d.Session.Elapsed().Seconds()),
			ActivePlanName:      st.ActivePlanName,
			CurrentDayIndex:     st.CurrentDayIndex,
		}
		return nil
	})
	return out, err
}

func (s *RegistrySource) TodayWorkout(ctx context.Context, deviceID string) (TodayWorkout, error) {
	var out TodayWorkout
	err := s.devices.Do(ctx, deviceID, func(d *device.Device) error {
		out.Scheduled = d.Session.IsScheduledDay()
		if w, ok := d.Session.CurrentWorkout(); ok {
			out.Workout = &w
		}
		return nil
	})
	return out, err
}

func (s *RegistrySource) Plan(ctx context.Context, deviceID string) (ActivePlan, error) {
	var out ActivePlan
	err := s.devices.Do(ctx, deviceID, func(d *device.Device) error {
		st := d.Session.State()
		out = ActivePlan{Name: st.ActivePlanName, Plan: st.ActivePlan, CurrentDayIndex: st.CurrentDayIndex}
		return nil
	})
	return out, err
}

func (s *RegistrySource) SavedWorkouts(ctx context.Context, deviceID string) (SavedWorkouts, error) {
	var out SavedWorkouts
	err := s.devices.Do(ctx, deviceID, func(d *device.Device) error {
		var err error
		if out.Slots, err = d.Saved.Slots(ctx); err != nil {
			return err
		}
		out.Available, err = d.Saved.Available(ctx)
		return err
	})
	return out, err
}
