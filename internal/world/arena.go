package world

import (
	"math/rand/v2"
	"sync"

	"github.com/udisondev/arena/internal/model"
)

// Arena is the rectangular play area on the X/Y plane.
// Z is never touched by Clamp or RandomPoint.
type Arena struct {
	minX, minY float64
	maxX, maxY float64

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

// NewArena creates an arena from two corners (order-insensitive).
func NewArena(x1, y1, x2, y2 float64) *Arena {
	return &Arena{
		minX: min(x1, x2),
		minY: min(y1, y2),
		maxX: max(x1, x2),
		maxY: max(y1, y2),
		rng:  rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// SetSeed makes RandomPoint deterministic.
func (a *Arena) SetSeed(seed uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Min returns the lower corner (Z = 0).
func (a *Arena) Min() model.Location {
	return model.NewLocation(a.minX, a.minY, 0)
}

// Max returns the upper corner (Z = 0).
func (a *Arena) Max() model.Location {
	return model.NewLocation(a.maxX, a.maxY, 0)
}

// Center returns the arena center (Z = 0).
func (a *Arena) Center() model.Location {
	return model.NewLocation((a.minX+a.maxX)/2, (a.minY+a.maxY)/2, 0)
}

// Clamp returns p with X/Y clamped into [min+padding, max-padding].
// When padding exceeds half the extent on an axis, that axis collapses to
// the arena center.
func (a *Arena) Clamp(p model.Location, padding float64) model.Location {
	lo, hi := a.paddedRange(a.minX, a.maxX, padding)
	p.X = min(max(p.X, lo), hi)
	lo, hi = a.paddedRange(a.minY, a.maxY, padding)
	p.Y = min(max(p.Y, lo), hi)
	return p
}

// RandomPoint returns a uniform point inside [min+padding, max-padding] on
// both axes, Z = 0.
func (a *Arena) RandomPoint(padding float64) model.Location {
	a.mu.Lock()
	defer a.mu.Unlock()

	xlo, xhi := a.paddedRange(a.minX, a.maxX, padding)
	ylo, yhi := a.paddedRange(a.minY, a.maxY, padding)
	return model.NewLocation(
		xlo+a.rng.Float64()*(xhi-xlo),
		ylo+a.rng.Float64()*(yhi-ylo),
		0,
	)
}

// Contains reports whether p lies inside the padded area.
func (a *Arena) Contains(p model.Location, padding float64) bool {
	xlo, xhi := a.paddedRange(a.minX, a.maxX, padding)
	ylo, yhi := a.paddedRange(a.minY, a.maxY, padding)
	return p.X >= xlo && p.X <= xhi && p.Y >= ylo && p.Y <= yhi
}

func (a *Arena) paddedRange(lo, hi, padding float64) (float64, float64) {
	padding = max(padding, 0)
	plo, phi := lo+padding, hi-padding
	if plo > phi {
		mid := (lo + hi) / 2
		return mid, mid
	}
	return plo, phi
}
