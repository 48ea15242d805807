package model

import (
	"math"
	"time"
)

// Body is a movable agent in the arena: world object plus facing, velocity
// and the vertical coordinate captured at spawn.
type Body struct {
	*WorldObject // embedded

	facing   float64 // heading, radians, 0 = +X
	velocity Location
	lockedZ  float64
}

// NewBody creates a body at loc facing heading. Z is locked to loc.Z.
func NewBody(obj *WorldObject, heading float64) *Body {
	return &Body{
		WorldObject: obj,
		facing:      heading,
		lockedZ:     obj.Location().Z,
	}
}

// Facing returns heading in radians.
func (b *Body) Facing() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.facing
}

// SetFacing sets heading in radians.
func (b *Body) SetFacing(heading float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.facing = normalizeAngle(heading)
}

// Forward returns planar unit vector of the facing.
func (b *Body) Forward() Location {
	return HeadingVector(b.Facing())
}

// Velocity returns last applied planar velocity (units/second).
func (b *Body) Velocity() Location {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.velocity
}

// SetVelocity stores velocity for the next Integrate.
func (b *Body) SetVelocity(v Location) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.velocity = v.Planar()
}

// ZeroVelocity clears residual velocity (respawn, teleport).
func (b *Body) ZeroVelocity() {
	b.SetVelocity(Location{})
}

// LockedZ returns the spawn-time vertical coordinate.
func (b *Body) LockedZ() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lockedZ
}

// Integrate moves the body by velocity * dt.
func (b *Body) Integrate(dt time.Duration) {
	v := b.Velocity()
	if v == (Location{}) || dt <= 0 {
		return
	}
	b.SetLocation(b.Location().Add(v.Scale(dt.Seconds())))
}

// arriveEpsilon absorbs float drift when parking exactly at stop distance.
const arriveEpsilon = 1e-6

// MoveToward steps the body toward target at speed, never closer than stop.
// Returns the planar direction of travel (zero if already within stop) and
// the remaining planar distance before the step.
func (b *Body) MoveToward(target Location, speed, stop float64, dt time.Duration) (Location, float64) {
	pos := b.Location()
	dir, dist := pos.PlanarDirection(target)
	if dist-stop <= arriveEpsilon || speed <= 0 || dt <= 0 {
		b.ZeroVelocity()
		return Location{}, dist
	}

	step := min(speed*dt.Seconds(), dist-stop)
	b.SetLocation(pos.Add(dir.Scale(step)))
	b.SetVelocity(dir.Scale(speed))
	return dir, dist
}

// TurnToward rotates facing toward planar direction dir with exponential
// smoothing at turnRate (1/s). Zero dir leaves facing unchanged.
func (b *Body) TurnToward(dir Location, turnRate float64, dt time.Duration) {
	if dir.PlanarLength() < 1e-4 {
		return
	}
	target := HeadingOf(dir)
	if turnRate <= 0 {
		b.SetFacing(target)
		return
	}

	current := b.Facing()
	diff := normalizeAngle(target - current)
	t := min(1.0, turnRate*dt.Seconds())
	b.SetFacing(current + diff*t)
}

// LockVertical pins Z to the spawn-time value.
func (b *Body) LockVertical() {
	b.SetLocation(b.Location().WithZ(b.LockedZ()))
}

// normalizeAngle wraps a into (-pi, pi].
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}
