package world

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/udisondev/arena/internal/model"
)

// DefaultCellSize is the grid cell edge in arena units.
const DefaultCellSize = 4.0

// Grid is the spatial query service: a uniform cell grid over the arena.
// Objects outside the arena are stored in the nearest border cell.
type Grid struct {
	arena    *Arena
	cellSize float64
	cols     int
	rows     int

	mu      sync.RWMutex
	cells   []*Region                     // row-major [row*cols+col]
	objects map[uint32]*model.WorldObject // objectID → object
	homes   map[uint32]int                // objectID → cell index
}

// NewGrid creates a grid covering arena with the given cell size
// (DefaultCellSize when <= 0).
func NewGrid(arena *Arena, cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}

	size := arena.Max().Sub(arena.Min())
	cols := max(1, int(math.Ceil(size.X/cellSize)))
	rows := max(1, int(math.Ceil(size.Y/cellSize)))

	g := &Grid{
		arena:    arena,
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    make([]*Region, cols*rows),
		objects:  make(map[uint32]*model.WorldObject),
		homes:    make(map[uint32]int),
	}
	for r := range rows {
		for c := range cols {
			g.cells[r*cols+c] = NewRegion(c, r)
		}
	}
	return g
}

// Arena returns the bounds the grid covers.
func (g *Grid) Arena() *Arena {
	return g.arena
}

// RegionCount returns number of cells.
func (g *Grid) RegionCount() int {
	return len(g.cells)
}

// AddObject inserts obj. Returns error if an object with the same ID exists.
func (g *Grid) AddObject(obj *model.WorldObject) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.objects[obj.ObjectID()]; exists {
		return fmt.Errorf("object %d already in grid", obj.ObjectID())
	}

	idx := g.cellIndex(obj.Location())
	g.objects[obj.ObjectID()] = obj
	g.homes[obj.ObjectID()] = idx
	g.cells[idx].AddObject(obj)
	return nil
}

// RemoveObject removes object by ID (no-op if absent).
func (g *Grid) RemoveObject(objectID uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx, ok := g.homes[objectID]
	if !ok {
		return
	}
	g.cells[idx].RemoveObject(objectID)
	delete(g.homes, objectID)
	delete(g.objects, objectID)
}

// UpdateObject re-buckets obj after its location changed.
func (g *Grid) UpdateObject(obj *model.WorldObject) {
	g.mu.Lock()
	defer g.mu.Unlock()

	old, ok := g.homes[obj.ObjectID()]
	if !ok {
		return
	}
	idx := g.cellIndex(obj.Location())
	if idx == old {
		return
	}
	g.cells[old].RemoveObject(obj.ObjectID())
	g.cells[idx].AddObject(obj)
	g.homes[obj.ObjectID()] = idx
}

// GetObject returns object by ID.
func (g *Grid) GetObject(objectID uint32) (*model.WorldObject, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	obj, ok := g.objects[objectID]
	return obj, ok
}

// ObjectCount returns number of objects in the grid.
func (g *Grid) ObjectCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.objects)
}

// Clear removes all objects.
func (g *Grid) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, cell := range g.cells {
		cell.Clear()
	}
	clear(g.objects)
	clear(g.homes)
}

// QuerySphere returns objects whose collider sphere overlaps the sphere
// (origin, radius) and whose category intersects filter.
// Results are ordered by object ID.
func (g *Grid) QuerySphere(origin model.Location, radius float64, filter model.Category) []*model.WorldObject {
	if radius < 0 || filter == model.CategoryNone {
		return nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	// Colliders may stick out of their home cell by their own radius.
	reach := radius + g.maxRadiusLocked()
	c0, r0 := g.cellCoords(origin.X-reach, origin.Y-reach)
	c1, r1 := g.cellCoords(origin.X+reach, origin.Y+reach)

	var hits []*model.WorldObject
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			g.cells[r*g.cols+c].ForEachObject(func(obj *model.WorldObject) bool {
				if !obj.Category().Has(filter) {
					return true
				}
				limit := radius + obj.Radius()
				if origin.DistanceSquared(obj.Location()) <= limit*limit {
					hits = append(hits, obj)
				}
				return true
			})
		}
	}

	slices.SortFunc(hits, func(a, b *model.WorldObject) int {
		return cmp.Compare(a.ObjectID(), b.ObjectID())
	})
	return hits
}

func (g *Grid) maxRadiusLocked() float64 {
	var m float64
	for _, obj := range g.objects {
		m = max(m, obj.Radius())
	}
	return m
}

func (g *Grid) cellIndex(p model.Location) int {
	c, r := g.cellCoords(p.X, p.Y)
	return r*g.cols + c
}

// cellCoords converts arena coordinates to clamped cell coordinates.
func (g *Grid) cellCoords(x, y float64) (col, row int) {
	lo := g.arena.Min()
	col = int(math.Floor((x - lo.X) / g.cellSize))
	row = int(math.Floor((y - lo.Y) / g.cellSize))
	col = min(max(col, 0), g.cols-1)
	row = min(max(row, 0), g.rows-1)
	return col, row
}
