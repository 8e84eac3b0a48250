package server

import (
	"net/http"

	"github.com/claude/repright/internal/device"
	"github.com/claude/repright/internal/workout"
	"github.com/google/uuid"
)

func (s *Server) handleGetFlow(w http.ResponseWriter, r *http.Request) {
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		return d.Flow.Snapshot(), nil
	})
}

func (s *Server) handleFlowConfirm(w http.ResponseWriter, r *http.Request) {
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		return snapshotOrErr(d.Flow.Confirm(r.Context()))
	})
}

type selectRequest struct {
	ExerciseID uuid.UUID `json:"exercise_id"`
}

func (s *Server) handleFlowSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		return snapshotOrErr(d.Flow.Select(r.Context(), req.ExerciseID))
	})
}

func (s *Server) handleFlowCompleteSet(w http.ResponseWriter, r *http.Request) {
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		return snapshotOrErr(d.Flow.CompleteSet(r.Context()))
	})
}

func (s *Server) handleFlowNextSet(w http.ResponseWriter, r *http.Request) {
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		return snapshotOrErr(d.Flow.StartNextSet())
	})
}

type abortRequest struct {
	Minutes int `json:"minutes"`
}

func (s *Server) handleFlowAbort(w http.ResponseWriter, r *http.Request) {
	var req abortRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		return snapshotOrErr(d.Flow.Abort(r.Context(), req.Minutes))
	})
}

func (s *Server) handleFlowExit(w http.ResponseWriter, r *http.Request) {
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		return snapshotOrErr(d.Flow.Exit(r.Context()))
	})
}

func snapshotOrErr(snap workout.Snapshot, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return snap, nil
}
