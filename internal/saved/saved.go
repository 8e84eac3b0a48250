// Package saved keeps up to three named workout plans per device.
package saved

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/claude/repright/internal/kv"
	"github.com/claude/repright/internal/models"
	"github.com/claude/repright/internal/session"
	"github.com/google/uuid"
)

// MaxSlots is the number of saved-workout slots, numbered from 1.
const MaxSlots = 3

var ErrInvalidSlot = errors.New("invalid saved workout slot")

const key = "savedWorkouts"

// Slot is one numbered slot and its content, if any.
type Slot struct {
	Slot    int                  `json:"slot"`
	Workout *models.SavedWorkout `json:"workout,omitempty"`
}

// Manager reads and writes a device's saved workouts as a single JSON value.
type Manager struct {
	store    kv.Store
	deviceID string
	now      func() time.Time
	logger   *slog.Logger
}

func NewManager(store kv.Store, deviceID string, now func() time.Time, logger *slog.Logger) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{store: store, deviceID: deviceID, now: now, logger: logger}
}

func (m *Manager) key() string {
	return session.DeviceKeyPrefix(m.deviceID) + key
}

func checkSlot(slot int) error {
	if slot < 1 || slot > MaxSlots {
		return fmt.Errorf("%w: %d (want 1-%d)", ErrInvalidSlot, slot, MaxSlots)
	}
	return nil
}

// load returns the stored workouts sorted by slot. A malformed value reads
// as empty.
func (m *Manager) load(ctx context.Context) ([]models.SavedWorkout, error) {
	raw, ok, err := m.store.Get(ctx, m.key())
	if err != nil {
		return nil, fmt.Errorf("reading saved workouts: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var list []models.SavedWorkout
	if err := json.Unmarshal(raw, &list); err != nil {
		m.logger.Warn("ignoring malformed saved workouts", "device", m.deviceID, "error", err)
		return nil, nil
	}
	list = slices.DeleteFunc(list, func(w models.SavedWorkout) bool { return checkSlot(w.SlotNumber) != nil })
	slices.SortFunc(list, func(a, b models.SavedWorkout) int { return a.SlotNumber - b.SlotNumber })
	return list, nil
}

func (m *Manager) write(ctx context.Context, list []models.SavedWorkout) error {
	var b kv.Batch
	if len(list) == 0 {
		b.Delete(m.key())
	} else {
		data, err := json.Marshal(list)
		if err != nil {
			return fmt.Errorf("encoding saved workouts: %w", err)
		}
		b.Put(m.key(), data)
	}
	if err := m.store.Apply(ctx, b); err != nil {
		return fmt.Errorf("writing saved workouts: %w", err)
	}
	return nil
}

// Save puts plan into slot, replacing whatever was there.
func (m *Manager) Save(ctx context.Context, slot int, name string, plan models.WorkoutPlan) (models.SavedWorkout, error) {
	if err := checkSlot(slot); err != nil {
		return models.SavedWorkout{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = plan.Title
	}
	list, err := m.load(ctx)
	if err != nil {
		return models.SavedWorkout{}, err
	}

	now := m.now()
	plan.EnsureIDs(now)
	sw := models.SavedWorkout{
		ID:          uuid.New(),
		WorkoutPlan: plan,
		SavedDate:   now,
		SlotNumber:  slot,
		Name:        name,
	}
	list = slices.DeleteFunc(list, func(w models.SavedWorkout) bool { return w.SlotNumber == slot })
	list = append(list, sw)
	slices.SortFunc(list, func(a, b models.SavedWorkout) int { return a.SlotNumber - b.SlotNumber })

	if err := m.write(ctx, list); err != nil {
		return models.SavedWorkout{}, err
	}
	return sw, nil
}

// Get returns the workout in slot, or false if the slot is empty.
func (m *Manager) Get(ctx context.Context, slot int) (models.SavedWorkout, bool, error) {
	if err := checkSlot(slot); err != nil {
		return models.SavedWorkout{}, false, err
	}
	list, err := m.load(ctx)
	if err != nil {
		return models.SavedWorkout{}, false, err
	}
	for _, w := range list {
		if w.SlotNumber == slot {
			return w, true, nil
		}
	}
	return models.SavedWorkout{}, false, nil
}

func (m *Manager) Delete(ctx context.Context, slot int) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	list, err := m.load(ctx)
	if err != nil {
		return err
	}
	n := len(list)
	list = slices.DeleteFunc(list, func(w models.SavedWorkout) bool { return w.SlotNumber == slot })
	if len(list) == n {
		return nil
	}
	return m.write(ctx, list)
}

func (m *Manager) DeleteAll(ctx context.Context) error {
	return m.write(ctx, nil)
}

// Slots lists every slot in order, empty ones included.
func (m *Manager) Slots(ctx context.Context) ([]Slot, error) {
	list, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	slots := make([]Slot, MaxSlots)
	for i := range slots {
		slots[i].Slot = i + 1
	}
	for _, w := range list {
		slots[w.SlotNumber-1].Workout = &w
	}
	return slots, nil
}

// Available returns the numbers of the empty slots.
func (m *Manager) Available(ctx context.Context) ([]int, error) {
	slots, err := m.Slots(ctx)
	if err != nil {
		return nil, err
	}
	free := []int{}
	for _, s := range slots {
		if s.Workout == nil {
			free = append(free, s.Slot)
		}
	}
	return free, nil
}
