// Package breaker adapts the teacher's circuit_breaker package into an
// internal resilience primitive for MQTT publishes and Knowledge writes: a
// flapping broker or a stuck write path fails fast instead of blocking a
// tick or callback loop (spec §7 kinds 4 & 6).
package breaker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned by Execute when the breaker is open (fast-failing).
var ErrOpen = errors.New("breaker: circuit open, fast-fail")

// State is the breaker's current disposition.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Config tunes trip and reset behavior.
type Config struct {
	MaxFailures  int
	ResetTimeout time.Duration
}

// Breaker wraps a named operation with failure counting and a cooldown.
type Breaker struct {
	name string
	cfg  Config
	log  *slog.Logger

	mu          sync.Mutex
	state       State
	recentFails int
	openedAt    time.Time
}

// New returns a Breaker in the Closed state.
func New(name string, cfg Config, log *slog.Logger) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 10 * time.Second
	}
	return &Breaker{name: name, cfg: cfg, log: log, state: Closed}
}

// Execute runs op, tripping the breaker after cfg.MaxFailures consecutive
// failures and fast-failing with ErrOpen until cfg.ResetTimeout elapses,
// after which a single probe attempt is allowed through (half-open).
func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	b.mu.Lock()
	state := b.state
	openedAt := b.openedAt
	b.mu.Unlock()

	if state == Open {
		if time.Since(openedAt) < b.cfg.ResetTimeout {
			b.log.Warn("breaker fast-fail", "name", b.name, "since_open", time.Since(openedAt))
			return ErrOpen
		}
		b.mu.Lock()
		b.state = HalfOpen
		b.mu.Unlock()
	}

	err := op(ctx)
	if err == nil {
		b.onSuccess()
		return nil
	}
	b.onFailure(err)
	return err
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recentFails = 0
	if b.state != Closed {
		b.log.Info("breaker closed", "name", b.name)
	}
	b.state = Closed
}

func (b *Breaker) onFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recentFails++
	if b.state == HalfOpen || b.recentFails >= b.cfg.MaxFailures {
		b.state = Open
		b.openedAt = time.Now()
		b.log.Warn("breaker opened", "name", b.name, "error", err, "failures", b.recentFails)
	}
}

// CurrentState reports the breaker's disposition, for /healthz surfaces.
func (b *Breaker) CurrentState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
