// Package device keeps one session, workout flow and saved-workout manager
// per device and serializes access to them.
package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/claude/repright/internal/events"
	"github.com/claude/repright/internal/kv"
	"github.com/claude/repright/internal/observability"
	"github.com/claude/repright/internal/saved"
	"github.com/claude/repright/internal/session"
	"github.com/claude/repright/internal/workout"
)

var ErrInvalidDeviceID = errors.New("invalid device id")

var deviceIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidID reports whether id can be used as a device key namespace.
func ValidID(id string) bool {
	return deviceIDPattern.MatchString(id)
}

// Device bundles the per-device components. It is only valid inside the
// callback passed to Registry.Do.
type Device struct {
	ID      string
	Session *session.Session
	Flow    *workout.Flow
	Saved   *saved.Manager
}

// DeleteAll erases the device's data and restarts its workout flow.
func (d *Device) DeleteAll(ctx context.Context) (session.State, error) {
	st, err := d.Session.DeleteAll(ctx)
	if err != nil {
		return st, err
	}
	d.Flow = workout.New(d.Session)
	return st, nil
}

type entry struct {
	mu  sync.Mutex
	dev *Device
}

// Registry lazily opens devices from the store. Calls for one device run one
// at a time; different devices proceed in parallel.
type Registry struct {
	store     kv.Store
	publisher events.Publisher
	cal       session.Calendar
	now       func() time.Time
	logger    *slog.Logger

	mu      sync.Mutex
	devices map[string]*entry
}

type Option func(*Registry)

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(r *Registry) { r.cal = session.NewCalendar(loc) }
}

func NewRegistry(store kv.Store, publisher events.Publisher, logger *slog.Logger, opts ...Option) *Registry {
	if publisher == nil {
		publisher = events.Noop{}
	}
	r := &Registry{
		store:     store,
		publisher: publisher,
		cal:       session.NewCalendar(nil),
		now:       time.Now,
		logger:    logger,
		devices:   make(map[string]*entry),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Registry) Calendar() session.Calendar {
	return r.cal
}

func (r *Registry) entry(id string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.devices[id]
	if !ok {
		e = &entry{}
		r.devices[id] = e
	}
	return e
}

// Do runs fn with the device, after rolling its session forward to today.
// Milestones reached during fn are published as events once the device lock
// is released.
func (r *Registry) Do(ctx context.Context, id string, fn func(*Device) error) error {
	if !ValidID(id) {
		return fmt.Errorf("%w: %q", ErrInvalidDeviceID, id)
	}
	evs, err := r.do(ctx, id, fn)
	r.publish(ctx, evs)
	return err
}

func (r *Registry) do(ctx context.Context, id string, fn func(*Device) error) ([]events.Event, error) {
	e := r.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	var report session.RolloverReport
	if e.dev == nil {
		dev, rep, err := r.open(ctx, id)
		if err != nil {
			return nil, err
		}
		e.dev, report = dev, rep
	} else {
		rep, err := e.dev.Session.Rollover(ctx)
		if err != nil {
			return nil, fmt.Errorf("rolling over device %s: %w", id, err)
		}
		report = rep
	}
	e.dev.Flow.Sync()
	evs := r.rolloverEvents(id, report, e.dev.Session.State())

	before := e.dev.Session.State()
	err := fn(e.dev)
	evs = append(evs, r.transitionEvents(id, before, e.dev.Session.State())...)
	return evs, err
}

func (r *Registry) open(ctx context.Context, id string) (*Device, session.RolloverReport, error) {
	logger := r.logger.With("device", id)
	s, report, err := session.Open(ctx,
		session.NewStorePersister(r.store, id, logger),
		session.WithClock(r.now),
		session.WithCalendar(r.cal),
		session.WithLogger(logger))
	if err != nil {
		return nil, report, fmt.Errorf("opening device %s: %w", id, err)
	}
	return &Device{
		ID:      id,
		Session: s,
		Flow:    workout.New(s),
		Saved:   saved.NewManager(r.store, id, r.now, logger),
	}, report, nil
}

// DeviceIDs lists every device with stored state.
func (r *Registry) DeviceIDs(ctx context.Context) ([]string, error) {
	keys, err := r.store.Keys(ctx, "device/")
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	seen := make(map[string]bool)
	for _, k := range keys {
		id, _, ok := strings.Cut(strings.TrimPrefix(k, "device/"), "/")
		if ok && ValidID(id) {
			seen[id] = true
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// RolloverAll rolls every stored device forward to today. Failures are
// logged and do not stop the sweep.
func (r *Registry) RolloverAll(ctx context.Context) {
	ids, err := r.DeviceIDs(ctx)
	if err != nil {
		r.logger.Error("day rollover sweep", "error", err)
		return
	}
	for _, id := range ids {
		if err := r.Do(ctx, id, func(*Device) error { return nil }); err != nil {
			r.logger.Error("day rollover", "device", id, "error", err)
		}
	}
	r.logger.Info("day rollover sweep complete", "devices", len(ids))
}

func (r *Registry) rolloverEvents(id string, report session.RolloverReport, st session.State) []events.Event {
	if !report.Crossed() {
		return nil
	}
	observability.RecordRollover(report.Boundaries, report.StreakBroken)

	at := r.now()
	day := st.Day.Format(time.DateOnly)
	evs := []events.Event{{
		Type: events.TypeDayRollover, DeviceID: id, OccurredAt: at,
		StreakCount: st.StreakCount, Day: day, Boundaries: report.Boundaries,
	}}
	if report.StreakBroken {
		evs = append(evs, events.Event{
			Type: events.TypeStreakBroken, DeviceID: id, OccurredAt: at, Day: day,
		})
	}
	return evs
}

func (r *Registry) transitionEvents(id string, before, after session.State) []events.Event {
	at := r.now()
	day := after.Day.Format(time.DateOnly)
	var evs []events.Event
	if !before.AttemptedToday && after.AttemptedToday {
		evs = append(evs, events.Event{
			Type: events.TypeWorkoutAttempted, DeviceID: id, OccurredAt: at,
			StreakCount: after.StreakCount, Day: day,
		})
	}
	if !before.CompletedToday && after.CompletedToday {
		observability.RecordWorkoutCompleted()
		evs = append(evs, events.Event{
			Type: events.TypeWorkoutCompleted, DeviceID: id, OccurredAt: at,
			StreakCount: after.StreakCount, Day: day, Minutes: after.WorkoutMinutesToday,
		})
	}
	return evs
}

func (r *Registry) publish(ctx context.Context, evs []events.Event) {
	if len(evs) == 0 {
		return
	}
	if err := r.publisher.Publish(ctx, evs...); err != nil {
		r.logger.Warn("publishing session events", "error", err)
	}
}
