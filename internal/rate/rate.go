// Package rate paces injected input events and shapes mouse motion.
//
// The limiter is a fixed-interval throttle: each event kind (move, click,
// key) keeps the timestamp of its last permitted event, and Wait sleeps for
// whatever remains of the configured minimum interval before stamping a new
// one. Motion shaping clamps the per-step delta and optionally applies
// exponential smoothing toward the target.
package rate

import (
	"context"
	"sync"
	"time"
)

// Kind identifies the event class being throttled.
type Kind string

const (
	KindMove  Kind = "move"
	KindClick Kind = "click"
	KindKey   Kind = "key"
)

// Config tunes the limiter. Zero or negative rates are guarded at use time
// rather than rejected, so a partially filled config stays usable.
type Config struct {
	MoveHz       float64
	MaxDelta     int
	Smooth       float64
	ClicksPerSec float64
	KeysPerSec   float64
}

// DefaultConfig matches the tuning the server ships with.
var DefaultConfig = Config{
	MoveHz:       120,
	MaxDelta:     60,
	Smooth:       0.0,
	ClicksPerSec: 8.0,
	KeysPerSec:   12.0,
}

// Clamp bounds for live reconfiguration.
const (
	MinMoveHz = 15.0
	MaxMoveHz = 480.0
	MinSmooth = 0.0
	MaxSmooth = 0.98
	MinPerSec = 1.0
	MaxPerSec = 60.0
)

// Clamped returns a copy of c with every field forced into its allowed
// range. Used when applying runtime reconfiguration from tool calls.
func (c Config) Clamped() Config {
	c.MoveHz = clampFloat(c.MoveHz, MinMoveHz, MaxMoveHz)
	if c.MaxDelta < 1 {
		c.MaxDelta = 1
	}
	c.Smooth = clampFloat(c.Smooth, MinSmooth, MaxSmooth)
	c.ClicksPerSec = clampFloat(c.ClicksPerSec, MinPerSec, MaxPerSec)
	c.KeysPerSec = clampFloat(c.KeysPerSec, MinPerSec, MaxPerSec)
	return c
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Limiter throttles events per kind and shapes motion steps.
type Limiter struct {
	mu   sync.Mutex
	cfg  Config
	last map[Kind]time.Time

	// now is swappable for tests
	now func() time.Time
}

// NewLimiter creates a limiter with the given config.
func NewLimiter(cfg Config) *Limiter {
	return &Limiter{
		cfg:  cfg,
		last: make(map[Kind]time.Time),
		now:  time.Now,
	}
}

// Config returns a snapshot of the current configuration.
func (l *Limiter) Config() Config {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cfg
}

// SetConfig replaces the configuration, clamping every field into range.
func (l *Limiter) SetConfig(cfg Config) Config {
	clamped := cfg.Clamped()
	l.mu.Lock()
	l.cfg = clamped
	l.mu.Unlock()
	return clamped
}

// rateFor maps an event kind to its configured events-per-second.
func (l *Limiter) rateFor(kind Kind) float64 {
	switch kind {
	case KindClick:
		return l.cfg.ClicksPerSec
	case KindKey:
		return l.cfg.KeysPerSec
	default:
		return l.cfg.MoveHz
	}
}

// Until returns the remaining wait before the next event of kind may fire.
func (l *Limiter) Until(kind Kind) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.untilLocked(kind)
}

func (l *Limiter) untilLocked(kind Kind) time.Duration {
	rate := l.rateFor(kind)
	if rate <= 0 {
		rate = 0.001
	}
	minInterval := time.Duration(float64(time.Second) / rate)
	last, ok := l.last[kind]
	if !ok {
		return 0
	}
	elapsed := l.now().Sub(last)
	if elapsed >= minInterval {
		return 0
	}
	return minInterval - elapsed
}

// Mark stamps kind as having just fired.
func (l *Limiter) Mark(kind Kind) {
	l.mu.Lock()
	l.last[kind] = l.now()
	l.mu.Unlock()
}

// Wait blocks until the next event of kind may fire, then stamps it.
// Returns early with the context error if ctx is cancelled first.
func (l *Limiter) Wait(ctx context.Context, kind Kind) error {
	if d := l.Until(kind); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	l.Mark(kind)
	return nil
}

// FilterTarget computes the next motion step from cur toward target:
// the per-axis delta is clamped to ±MaxDelta, then scaled by (1-Smooth).
func (l *Limiter) FilterTarget(curX, curY, targetX, targetY int) (int, int) {
	l.mu.Lock()
	maxDelta := l.cfg.MaxDelta
	smooth := l.cfg.Smooth
	l.mu.Unlock()

	dx := targetX - curX
	dy := targetY - curY

	if maxDelta > 0 {
		dx = clampInt(dx, maxDelta)
		dy = clampInt(dy, maxDelta)
	}
	if smooth > 0 {
		dx = int(float64(dx) * (1.0 - smooth))
		dy = int(float64(dy) * (1.0 - smooth))
	}

	return curX + dx, curY + dy
}

func clampInt(v, bound int) int {
	if v > bound {
		return bound
	}
	if v < -bound {
		return -bound
	}
	return v
}
