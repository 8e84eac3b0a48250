package server

import (
	"net/http"

	"github.com/claude/repright/internal/device"
	"github.com/claude/repright/internal/models"
	"github.com/claude/repright/internal/session"
)

// sessionView is the session state plus values derived from it at read time.
type sessionView struct {
	session.State
	ElapsedSeconds int             `json:"elapsed_seconds"`
	ScheduledToday bool            `json:"scheduled_today"`
	TodayWorkout   *models.Workout `json:"today_workout,omitempty"`
}

func viewOf(d *device.Device) sessionView {
	v := sessionView{
		State:          d.Session.State(),
		ElapsedSeconds: int(d.Session.Elapsed().Seconds()),
		ScheduledToday: d.Session.IsScheduledDay(),
	}
	if w, ok := d.Session.CurrentWorkout(); ok {
		v.TodayWorkout = &w
	}
	return v
}

// mutated wraps a session transition so the handler returns the fresh view.
func mutated(d *device.Device, _ session.State, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return viewOf(d), nil
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		return viewOf(d), nil
	})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		st, err := d.Session.Pause(r.Context())
		return mutated(d, st, err)
	})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		st, err := d.Session.Resume(r.Context())
		return mutated(d, st, err)
	})
}

func (s *Server) handleAckStreak(w http.ResponseWriter, r *http.Request) {
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		st, err := d.Session.AcknowledgeStreakBroken(r.Context())
		return mutated(d, st, err)
	})
}

func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		st, err := d.DeleteAll(r.Context())
		return mutated(d, st, err)
	})
}

func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	var in models.ProfileInput
	if !decodeJSON(w, r, &in) {
		return
	}
	profile, err := in.Profile()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		st, err := d.Session.CompleteOnboarding(r.Context(), profile)
		return mutated(d, st, err)
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		st := d.Session.State()
		return map[string]any{"onboarded": st.Onboarded, "profile": st.Profile}, nil
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in models.ProfileInput
	if !decodeJSON(w, r, &in) {
		return
	}
	profile, err := in.Profile()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		st, err := d.Session.UpdateProfile(r.Context(), profile)
		return mutated(d, st, err)
	})
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		st := d.Session.State()
		return map[string]any{
			"name":              st.ActivePlanName,
			"plan":              st.ActivePlan,
			"current_day_index": st.CurrentDayIndex,
		}, nil
	})
}

type activatePlanRequest struct {
	Name string             `json:"name"`
	Plan models.WorkoutPlan `json:"plan"`
}

func (s *Server) handleActivatePlan(w http.ResponseWriter, r *http.Request) {
	var req activatePlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		st, err := d.Session.ActivatePlan(r.Context(), req.Plan, req.Name)
		return mutated(d, st, err)
	})
}

func (s *Server) handleClearPlan(w http.ResponseWriter, r *http.Request) {
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		st, err := d.Session.ClearPlan(r.Context())
		return mutated(d, st, err)
	})
}

func (s *Server) handleTodayWorkout(w http.ResponseWriter, r *http.Request) {
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		out := map[string]any{"scheduled": d.Session.IsScheduledDay()}
		if wk, ok := d.Session.CurrentWorkout(); ok {
			out["workout"] = wk
		}
		return out, nil
	})
}

func (s *Server) handleAttempt(w http.ResponseWriter, r *http.Request) {
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		st, err := d.Session.AttemptWorkout(r.Context())
		return mutated(d, st, err)
	})
}

type completeRequest struct {
	Minutes int `json:"minutes"`
}

// handleComplete marks today complete outside the guided flow. An empty
// body folds the running timer.
func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		st, err := d.Session.CompleteWorkout(r.Context(), req.Minutes)
		return mutated(d, st, err)
	})
}
