package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/claude/repright/internal/coach"
	"github.com/claude/repright/internal/device"
	"github.com/claude/repright/internal/models"
	"github.com/claude/repright/internal/saved"
	"github.com/claude/repright/internal/session"
	"github.com/claude/repright/internal/workout"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds request bodies. Form analysis uploads carry base64
// frames.
const maxBodyBytes = 32 << 20

var (
	errNoActivePlan = errors.New("no active plan")
	errEmptySlot    = errors.New("saved workout slot is empty")
	errPlanChanged  = errors.New("active plan changed while customizing")
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, device.ErrInvalidDeviceID),
		errors.Is(err, session.ErrInvalidInput),
		errors.Is(err, models.ErrInvalidProfile),
		errors.Is(err, saved.ErrInvalidSlot):
		return http.StatusBadRequest
	case errors.Is(err, workout.ErrUnknownExercise), errors.Is(err, errEmptySlot):
		return http.StatusNotFound
	case errors.Is(err, workout.ErrInvalidTransition),
		errors.Is(err, workout.ErrNoWorkoutToday),
		errors.Is(err, workout.ErrExerciseCompleted),
		errors.Is(err, errNoActivePlan),
		errors.Is(err, errPlanChanged):
		return http.StatusConflict
	case errors.Is(err, coach.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, coach.ErrUpstream), errors.Is(err, coach.ErrInvalidResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// withDevice runs fn for the device named in the URL and writes its result.
func (s *Server) withDevice(w http.ResponseWriter, r *http.Request, fn func(*device.Device) (any, error)) {
	var out any
	err := s.devices.Do(r.Context(), deviceParam(r), func(d *device.Device) error {
		var err error
		out, err = fn(d)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func deviceParam(r *http.Request) string {
	return chi.URLParam(r, "deviceID")
}

func slotParam(r *http.Request) (int, error) {
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", saved.ErrInvalidSlot, chi.URLParam(r, "slot"))
	}
	return slot, nil
}
