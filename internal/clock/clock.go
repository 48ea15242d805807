package clock

import (
	"sync"
	"time"
)

// Source reports elapsed simulation time.
type Source interface {
	Now() time.Duration
}

// Clock holds the two simulation time sources.
//
// Scaled time drives gameplay (movement, cooldowns, aggro memory) and stops
// while paused. Unscaled time always advances with the real tick delta and
// drives respawn waits and paused-state UI.
type Clock struct {
	mu       sync.RWMutex
	scaled   time.Duration
	unscaled time.Duration
	scale    float64
	paused   bool
}

// New creates clock with scale 1.
func New() *Clock {
	return &Clock{scale: 1}
}

// Advance moves both clocks by dt and returns the scaled delta applied.
func (c *Clock) Advance(dt time.Duration) time.Duration {
	if dt <= 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.unscaled += dt
	if c.paused {
		return 0
	}
	scaled := time.Duration(float64(dt) * c.scale)
	c.scaled += scaled
	return scaled
}

// Now returns scaled time.
func (c *Clock) Now() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scaled
}

// UnscaledNow returns unscaled time.
func (c *Clock) UnscaledNow() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.unscaled
}

// Scaled returns the scaled time source.
func (c *Clock) Scaled() Source {
	return c
}

// Unscaled returns the unscaled time source.
func (c *Clock) Unscaled() Source {
	return unscaledSource{c}
}

// Pause freezes scaled time.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = true
}

// Resume unfreezes scaled time.
func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = false
}

// IsPaused reports whether scaled time is frozen.
func (c *Clock) IsPaused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paused
}

// SetScale sets scaled time multiplier (clamp >= 0).
func (c *Clock) SetScale(scale float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if scale < 0 {
		scale = 0
	}
	c.scale = scale
}

// Scale returns scaled time multiplier.
func (c *Clock) Scale() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scale
}

type unscaledSource struct {
	c *Clock
}

func (s unscaledSource) Now() time.Duration {
	return s.c.UnscaledNow()
}

// Manual is a settable Source for tests and tools.
type Manual struct {
	now time.Duration
}

// NewManual creates Manual source at t.
func NewManual(t time.Duration) *Manual {
	return &Manual{now: t}
}

// Now returns current manual time.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Set sets current manual time.
func (m *Manual) Set(t time.Duration) {
	m.now = t
}

// Add advances manual time by dt.
func (m *Manual) Add(dt time.Duration) {
	m.now += dt
}
