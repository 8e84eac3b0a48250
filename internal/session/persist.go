package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/claude/repright/internal/kv"
	"github.com/claude/repright/internal/models"
	"github.com/google/uuid"
)

// Persister loads and stores one device's State. Save receives the state
// before and after a transition so only changed fields are written.
type Persister interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, prev, next State) error
	Reset(ctx context.Context) error
}

// DeviceKeyPrefix returns the key namespace of a device.
func DeviceKeyPrefix(deviceID string) string {
	return "device/" + deviceID + "/"
}

// field maps one State field to one store key. encode returns nil when the
// field holds its default and the key should be absent.
type field struct {
	key    string
	encode func(State) ([]byte, error)
	decode func(*State, []byte) error
}

var fields = []field{
	{"onboarded",
		func(s State) ([]byte, error) { return encodeBool(s.Onboarded), nil },
		func(s *State, b []byte) error { return decodeBool(b, &s.Onboarded) }},
	{"profile",
		func(s State) ([]byte, error) { return encodeJSON(s.Profile) },
		func(s *State, b []byte) error {
			var p models.UserProfile
			if err := json.Unmarshal(b, &p); err != nil {
				return err
			}
			s.Profile = &p
			return nil
		}},
	{"activePlan",
		func(s State) ([]byte, error) { return encodeJSON(s.ActivePlan) },
		func(s *State, b []byte) error {
			var p models.WorkoutPlan
			if err := json.Unmarshal(b, &p); err != nil {
				return err
			}
			s.ActivePlan = &p
			return nil
		}},
	{"activePlanName",
		func(s State) ([]byte, error) {
			if s.ActivePlanName == "" {
				return nil, nil
			}
			return []byte(s.ActivePlanName), nil
		},
		func(s *State, b []byte) error { s.ActivePlanName = string(b); return nil }},
	{"currentDayIndex",
		func(s State) ([]byte, error) { return encodeInt(s.CurrentDayIndex), nil },
		func(s *State, b []byte) error {
			if err := decodeInt(b, &s.CurrentDayIndex); err != nil {
				return err
			}
			limit := models.DaysPerWeek
			if s.ActivePlan != nil {
				limit = s.ActivePlan.RotationLength()
			}
			if s.CurrentDayIndex >= limit {
				s.CurrentDayIndex = 0
			}
			return nil
		}},
	{"streakCount",
		func(s State) ([]byte, error) { return encodeInt(s.StreakCount), nil },
		func(s *State, b []byte) error { return decodeInt(b, &s.StreakCount) }},
	{"lastWorkoutDate",
		func(s State) ([]byte, error) { return encodeTime(s.LastWorkoutDate), nil },
		func(s *State, b []byte) error { return decodeTime(b, &s.LastWorkoutDate) }},
	{"completedToday",
		func(s State) ([]byte, error) { return encodeBool(s.CompletedToday), nil },
		func(s *State, b []byte) error { return decodeBool(b, &s.CompletedToday) }},
	{"attemptedToday",
		func(s State) ([]byte, error) { return encodeBool(s.AttemptedToday), nil },
		func(s *State, b []byte) error { return decodeBool(b, &s.AttemptedToday) }},
	{"streakJustBroken",
		func(s State) ([]byte, error) { return encodeBool(s.StreakJustBroken), nil },
		func(s *State, b []byte) error { return decodeBool(b, &s.StreakJustBroken) }},
	{"workoutMinutesToday",
		func(s State) ([]byte, error) { return encodeInt(s.WorkoutMinutesToday), nil },
		func(s *State, b []byte) error { return decodeInt(b, &s.WorkoutMinutesToday) }},
	{"accumulatedSecondsToday",
		func(s State) ([]byte, error) { return encodeInt(s.AccumulatedSecondsToday), nil },
		func(s *State, b []byte) error { return decodeInt(b, &s.AccumulatedSecondsToday) }},
	{"sessionStartTime",
		func(s State) ([]byte, error) { return encodeTime(s.SessionStartTime), nil },
		func(s *State, b []byte) error { return decodeTime(b, &s.SessionStartTime) }},
	{"setProgress",
		encodeProgress,
		decodeProgress},
	{"day",
		func(s State) ([]byte, error) {
			if s.Day.IsZero() {
				return nil, nil
			}
			return []byte(s.Day.Format(time.RFC3339Nano)), nil
		},
		func(s *State, b []byte) error {
			t, err := time.Parse(time.RFC3339Nano, string(b))
			if err != nil {
				return err
			}
			s.Day = t
			return nil
		}},
}

// StorePersister keeps a device's fields in a kv.Store, one key per field.
type StorePersister struct {
	store    kv.Store
	deviceID string
	logger   *slog.Logger
}

func NewStorePersister(store kv.Store, deviceID string, logger *slog.Logger) *StorePersister {
	return &StorePersister{store: store, deviceID: deviceID, logger: logger}
}

func (p *StorePersister) key(name string) string {
	return DeviceKeyPrefix(p.deviceID) + name
}

// Load reads every field. Missing keys keep their defaults; malformed values
// are logged and replaced with defaults. Only store failures are returned.
func (p *StorePersister) Load(ctx context.Context) (State, error) {
	st := State{SetProgress: map[uuid.UUID]int{}}
	for _, f := range fields {
		raw, ok, err := p.store.Get(ctx, p.key(f.key))
		if err != nil {
			return State{}, fmt.Errorf("loading %s: %w", f.key, err)
		}
		if !ok {
			continue
		}
		if err := f.decode(&st, raw); err != nil {
			p.logger.Warn("ignoring malformed stored value",
				"device", p.deviceID, "key", f.key, "error", err)
		}
	}
	if st.StreakCount < 0 {
		st.StreakCount = 0
	}
	if st.CurrentDayIndex < 0 {
		st.CurrentDayIndex = 0
	}
	if st.SetProgress == nil {
		st.SetProgress = map[uuid.UUID]int{}
	}
	return st, nil
}

// Save writes the fields that differ between prev and next in one batch.
func (p *StorePersister) Save(ctx context.Context, prev, next State) error {
	var b kv.Batch
	for _, f := range fields {
		before, err := f.encode(prev)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", f.key, err)
		}
		after, err := f.encode(next)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", f.key, err)
		}
		if bytes.Equal(before, after) && (before == nil) == (after == nil) {
			continue
		}
		if after == nil {
			b.Delete(p.key(f.key))
		} else {
			b.Put(p.key(f.key), after)
		}
	}
	if err := p.store.Apply(ctx, b); err != nil {
		return fmt.Errorf("saving session state: %w", err)
	}
	return nil
}

// Reset removes every key of the device, including saved workout slots.
func (p *StorePersister) Reset(ctx context.Context) error {
	keys, err := p.store.Keys(ctx, DeviceKeyPrefix(p.deviceID))
	if err != nil {
		return fmt.Errorf("listing device keys: %w", err)
	}
	var b kv.Batch
	for _, k := range keys {
		b.Delete(k)
	}
	if err := p.store.Apply(ctx, b); err != nil {
		return fmt.Errorf("deleting device keys: %w", err)
	}
	return nil
}

func encodeBool(v bool) []byte {
	if !v {
		return nil
	}
	return []byte(strconv.FormatBool(v))
}

func decodeBool(b []byte, dst *bool) error {
	v, err := strconv.ParseBool(string(b))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func encodeInt(v int) []byte {
	if v == 0 {
		return nil
	}
	return []byte(strconv.Itoa(v))
}

func decodeInt(b []byte, dst *int) error {
	v, err := strconv.Atoi(string(b))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func encodeTime(t *time.Time) []byte {
	if t == nil {
		return nil
	}
	return []byte(t.Format(time.RFC3339Nano))
}

func decodeTime(b []byte, dst **time.Time) error {
	t, err := time.Parse(time.RFC3339Nano, string(b))
	if err != nil {
		return err
	}
	*dst = &t
	return nil
}

func encodeJSON[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

type progressEntry struct {
	ExerciseID    string `json:"exerciseId"`
	CompletedSets int    `json:"completedSets"`
}

func encodeProgress(s State) ([]byte, error) {
	if len(s.SetProgress) == 0 {
		return nil, nil
	}
	entries := make([]progressEntry, 0, len(s.SetProgress))
	for id, n := range s.SetProgress {
		entries = append(entries, progressEntry{ExerciseID: id.String(), CompletedSets: n})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ExerciseID < entries[j].ExerciseID })
	return json.Marshal(entries)
}

func decodeProgress(s *State, b []byte) error {
	var entries []progressEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return err
	}
	progress := make(map[uuid.UUID]int, len(entries))
	for _, e := range entries {
		id, err := uuid.Parse(e.ExerciseID)
		if err != nil {
			return fmt.Errorf("exercise id %q: %w", e.ExerciseID, err)
		}
		if e.CompletedSets > 0 {
			progress[id] = e.CompletedSets
		}
	}
	s.SetProgress = progress
	return nil
}
