package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_AdvanceBothSources(t *testing.T) {
	c := New()

	applied := c.Advance(100 * time.Millisecond)

	assert.Equal(t, 100*time.Millisecond, applied)
	assert.Equal(t, 100*time.Millisecond, c.Now())
	assert.Equal(t, 100*time.Millisecond, c.UnscaledNow())
	assert.Equal(t, 100*time.Millisecond, c.Scaled().Now())
	assert.Equal(t, 100*time.Millisecond, c.Unscaled().Now())
}

func TestClock_PauseFreezesScaledOnly(t *testing.T) {
	c := New()
	c.Advance(time.Second)

	c.Pause()
	assert.True(t, c.IsPaused())

	applied := c.Advance(500 * time.Millisecond)
	assert.Zero(t, applied)
	assert.Equal(t, time.Second, c.Now())
	assert.Equal(t, 1500*time.Millisecond, c.UnscaledNow())

	c.Resume()
	c.Advance(250 * time.Millisecond)
	assert.Equal(t, 1250*time.Millisecond, c.Now())
	assert.Equal(t, 1750*time.Millisecond, c.UnscaledNow())
}

func TestClock_Scale(t *testing.T) {
	c := New()
	c.SetScale(0.5)

	applied := c.Advance(time.Second)
	assert.Equal(t, 500*time.Millisecond, applied)
	assert.Equal(t, time.Second, c.UnscaledNow())

	c.SetScale(-3)
	assert.Zero(t, c.Scale())
}

func TestClock_NonPositiveDelta(t *testing.T) {
	c := New()
	assert.Zero(t, c.Advance(0))
	assert.Zero(t, c.Advance(-time.Second))
	assert.Zero(t, c.UnscaledNow())
}

func TestManual(t *testing.T) {
	m := NewManual(time.Second)
	m.Add(time.Second)
	assert.Equal(t, 2*time.Second, m.Now())
	m.Set(0)
	assert.Zero(t, m.Now())
}
