package server

import (
	"net/http"

	"github.com/claude/repright/internal/device"
	"github.com/claude/repright/internal/models"
)

func (s *Server) handleListSaved(w http.ResponseWriter, r *http.Request) {
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		slots, err := d.Saved.Slots(r.Context())
		if err != nil {
			return nil, err
		}
		free, err := d.Saved.Available(r.Context())
		if err != nil {
			return nil, err
		}
		return map[string]any{"slots": slots, "available": free}, nil
	})
}

func (s *Server) handleGetSaved(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		sw, found, err := d.Saved.Get(r.Context(), slot)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, errEmptySlot
		}
		return sw, nil
	})
}

type saveSlotRequest struct {
	Name string `json:"name"`
	// Plan defaults to the active plan.
	Plan *models.WorkoutPlan `json:"plan"`
}

func (s *Server) handleSaveSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req saveSlotRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		plan := req.Plan
		name := req.Name
		if plan == nil {
			st := d.Session.State()
			if st.ActivePlan == nil {
				return nil, errNoActivePlan
			}
			plan = st.ActivePlan
			if name == "" {
				name = st.ActivePlanName
			}
		}
		return d.Saved.Save(r.Context(), slot, name, *plan)
	})
}

func (s *Server) handleDeleteSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		if err := d.Saved.Delete(r.Context(), slot); err != nil {
			return nil, err
		}
		return d.Saved.Slots(r.Context())
	})
}

func (s *Server) handleDeleteAllSaved(w http.ResponseWriter, r *http.Request) {
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		if err := d.Saved.DeleteAll(r.Context()); err != nil {
			return nil, err
		}
		return d.Saved.Slots(r.Context())
	})
}

// handleActivateSlot makes a saved plan the active plan under its slot name.
func (s *Server) handleActivateSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withDevice(w, r, func(d *device.Device) (any, error) {
		sw, found, err := d.Saved.Get(r.Context(), slot)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, errEmptySlot
		}
		st, err := d.Session.ActivatePlan(r.Context(), sw.WorkoutPlan, sw.Name)
		return mutated(d, st, err)
	})
}
