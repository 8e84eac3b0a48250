package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/claude/repright/internal/coach"
	"github.com/claude/repright/internal/device"
	"github.com/claude/repright/internal/models"
	"github.com/claude/repright/internal/session"
)

type generatePlanRequest struct {
	Profile models.UserProfile `json:"profile"`
	Notes   string             `json:"notes"`
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req generatePlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	plan, err := s.coach.GeneratePlan(r.Context(), req.Profile, req.Notes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

type customizePlanRequest struct {
	Plan    models.WorkoutPlan `json:"plan"`
	Request string             `json:"request"`
}

func (s *Server) handleCustomizePlan(w http.ResponseWriter, r *http.Request) {
	var req customizePlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Request) == "" {
		s.writeError(w, r, fmt.Errorf("%w: request is required", session.ErrInvalidInput))
		return
	}
	resp, err := s.coach.CustomizePlan(r.Context(), req.Plan, req.Request)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type cameraPositionRequest struct {
	Exercise string `json:"exercise"`
}

func (s *Server) handleCameraPosition(w http.ResponseWriter, r *http.Request) {
	var req cameraPositionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Exercise) == "" {
		s.writeError(w, r, fmt.Errorf("%w: exercise is required", session.ErrInvalidInput))
		return
	}
	pos, err := s.coach.CameraPosition(r.Context(), req.Exercise)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"camera_position":   pos,
		"instruction_lines": pos.InstructionLines(),
	})
}

type analyzeFormRequest struct {
	Exercise       string                `json:"exercise"`
	Frames         []string              `json:"frames"` // base64 JPEG
	CameraPosition models.CameraPosition `json:"camera_position"`
}

func (s *Server) handleAnalyzeForm(w http.ResponseWriter, r *http.Request) {
	var req analyzeFormRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Exercise) == "" || len(req.Frames) == 0 {
		s.writeError(w, r, fmt.Errorf("%w: exercise and at least one frame are required", session.ErrInvalidInput))
		return
	}
	analysis, err := s.coach.AnalyzeForm(r.Context(), req.Frames, req.Exercise, req.CameraPosition)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

type generateDevicePlanRequest struct {
	Notes string `json:"notes"`
	Name  string `json:"name"`
}

// handleGenerateDevicePlan builds a plan from the device's stored profile and
// activates it. The AI call runs outside the device lock.
func (s *Server) handleGenerateDevicePlan(w http.ResponseWriter, r *http.Request) {
	var req generateDevicePlanRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	if !s.coach.Configured() {
		s.writeError(w, r, coach.ErrNotConfigured)
		return
	}

	var profile models.UserProfile
	err := s.devices.Do(r.Context(), deviceParam(r), func(d *device.Device) error {
		st := d.Session.State()
		if !st.Onboarded || st.Profile == nil {
			return fmt.Errorf("%w: device is not onboarded", session.ErrInvalidInput)
		}
		profile = *st.Profile
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	plan, err := s.coach.GeneratePlan(r.Context(), profile, req.Notes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		st, err := d.Session.ActivatePlan(r.Context(), plan, req.Name)
		return mutated(d, st, err)
	})
}

type customizeDevicePlanRequest struct {
	Request string `json:"request"`
}

// handleCustomizeDevicePlan asks the AI to change the active plan and
// activates the result unless the request was refused.
func (s *Server) handleCustomizeDevicePlan(w http.ResponseWriter, r *http.Request) {
	var req customizeDevicePlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Request) == "" {
		s.writeError(w, r, fmt.Errorf("%w: request is required", session.ErrInvalidInput))
		return
	}
	if !s.coach.Configured() {
		s.writeError(w, r, coach.ErrNotConfigured)
		return
	}

	var (
		plan models.WorkoutPlan
		name string
	)
	err := s.devices.Do(r.Context(), deviceParam(r), func(d *device.Device) error {
		st := d.Session.State()
		if st.ActivePlan == nil {
			return errNoActivePlan
		}
		plan, name = *st.ActivePlan, st.ActivePlanName
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.coach.CustomizePlan(r.Context(), plan, req.Request)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if resp.IsHarmful || resp.ModifiedPlan == nil {
		writeJSON(w, http.StatusOK, map[string]any{"customization": resp})
		return
	}

	s.withDevice(w, r, func(d *device.Device) (any, error) {
		// Another request may have swapped the plan during the AI call.
		if cur := d.Session.State().ActivePlan; cur == nil || cur.ID != plan.ID {
			return nil, errPlanChanged
		}
		if _, err := d.Session.ActivatePlan(r.Context(), *resp.ModifiedPlan, name); err != nil {
			return nil, err
		}
		return map[string]any{"customization": resp, "session": viewOf(d)}, nil
	})
}
