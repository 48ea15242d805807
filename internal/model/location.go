package model

import "math"

// Location представляет координаты в мире арены.
// X/Y — плоскость движения, Z — вертикаль (фиксируется при спавне).
// Value type, передаётся по значению.
type Location struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// NewLocation создаёт Location с указанными координатами.
func NewLocation(x, y, z float64) Location {
	return Location{X: x, Y: y, Z: z}
}

// WithZ возвращает копию с обновлённой вертикалью.
func (l Location) WithZ(z float64) Location {
	l.Z = z
	return l
}

// Add returns l + o.
func (l Location) Add(o Location) Location {
	return Location{X: l.X + o.X, Y: l.Y + o.Y, Z: l.Z + o.Z}
}

// Sub returns l - o.
func (l Location) Sub(o Location) Location {
	return Location{X: l.X - o.X, Y: l.Y - o.Y, Z: l.Z - o.Z}
}

// Scale returns l * k.
func (l Location) Scale(k float64) Location {
	return Location{X: l.X * k, Y: l.Y * k, Z: l.Z * k}
}

// Planar returns l projected onto the movement plane (Z = 0).
func (l Location) Planar() Location {
	l.Z = 0
	return l
}

// PlanarLength returns length of the planar component.
func (l Location) PlanarLength() float64 {
	return math.Hypot(l.X, l.Y)
}

// PlanarDistance возвращает расстояние в плоскости движения, игнорируя Z.
func (l Location) PlanarDistance(other Location) float64 {
	return math.Hypot(l.X-other.X, l.Y-other.Y)
}

// DistanceSquared возвращает квадрат полного 3D расстояния (без sqrt).
func (l Location) DistanceSquared(other Location) float64 {
	dx := l.X - other.X
	dy := l.Y - other.Y
	dz := l.Z - other.Z
	return dx*dx + dy*dy + dz*dz
}

// PlanarDirection returns the unit planar vector from l toward other
// and the planar distance. Zero vector when points coincide.
func (l Location) PlanarDirection(other Location) (Location, float64) {
	d := other.Sub(l).Planar()
	dist := d.PlanarLength()
	if dist < 1e-9 {
		return Location{}, 0
	}
	return d.Scale(1 / dist), dist
}

// HeadingVector returns the planar unit vector for heading angle (radians, 0 = +X).
func HeadingVector(heading float64) Location {
	return Location{X: math.Cos(heading), Y: math.Sin(heading)}
}

// HeadingOf returns heading angle of planar vector v.
func HeadingOf(v Location) float64 {
	return math.Atan2(v.Y, v.X)
}
