// Package schedule runs a callback at every local midnight.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Timer is the part of *time.Timer the scheduler uses.
type Timer interface {
	Stop() bool
}

// AfterFunc arms a one-shot timer. time.AfterFunc satisfies it once wrapped.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Midnight fires run once per calendar day at the next local midnight. Each
// firing computes the following deadline and re-arms; a pending timer is
// always replaced, never stacked.
type Midnight struct {
	loc       *time.Location
	now       func() time.Time
	afterFunc AfterFunc
	run       func(ctx context.Context)
	logger    *slog.Logger

	mu      sync.Mutex
	timer   Timer
	ctx     context.Context
	stopped bool
}

type Option func(*Midnight)

func WithClock(now func() time.Time) Option {
	return func(m *Midnight) { m.now = now }
}

func WithAfterFunc(f AfterFunc) Option {
	return func(m *Midnight) { m.afterFunc = f }
}

func NewMidnight(loc *time.Location, run func(ctx context.Context), logger *slog.Logger, opts ...Option) *Midnight {
	if loc == nil {
		loc = time.Local
	}
	m := &Midnight{
		loc:       loc,
		now:       time.Now,
		afterFunc: realAfterFunc,
		run:       run,
		logger:    logger,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Next returns the first local midnight strictly after t.
func (m *Midnight) Next(t time.Time) time.Time {
	t = t.In(m.loc)
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, m.loc)
}

// Start arms the timer. Cancelling ctx stops the scheduler.
func (m *Midnight) Start(ctx context.Context) {
	m.mu.Lock()
	m.ctx = ctx
	m.stopped = false
	m.arm()
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.Stop()
	}()
}

// arm replaces any pending timer. Callers hold mu.
func (m *Midnight) arm() {
	if m.timer != nil {
		m.timer.Stop()
	}
	now := m.now()
	next := m.Next(now)
	m.timer = m.afterFunc(next.Sub(now), m.fire)
	m.logger.Debug("next day rollover scheduled", "at", next)
}

func (m *Midnight) fire() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	ctx := m.ctx
	m.mu.Unlock()

	m.run(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.stopped {
		m.arm()
	}
}

// Stop cancels the pending timer. It is safe to call more than once.
func (m *Midnight) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
