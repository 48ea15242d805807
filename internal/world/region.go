package world

import (
	"github.com/udisondev/arena/internal/model"
)

// Region is a single grid cell. Access is serialized by Grid.mu.
type Region struct {
	col, row int
	objects  map[uint32]*model.WorldObject // objectID → object
}

// NewRegion creates an empty cell.
func NewRegion(col, row int) *Region {
	return &Region{
		col:     col,
		row:     row,
		objects: make(map[uint32]*model.WorldObject),
	}
}

// Col returns cell column index
func (r *Region) Col() int {
	return r.col
}

// Row returns cell row index
func (r *Region) Row() int {
	return r.row
}

// AddObject adds object to the cell.
func (r *Region) AddObject(obj *model.WorldObject) {
	r.objects[obj.ObjectID()] = obj
}

// RemoveObject removes object from the cell.
func (r *Region) RemoveObject(objectID uint32) {
	delete(r.objects, objectID)
}

// Count returns number of objects in the cell.
func (r *Region) Count() int {
	return len(r.objects)
}

// Clear removes all objects.
func (r *Region) Clear() {
	clear(r.objects)
}

// ForEachObject iterates over objects in the cell.
// If fn returns false, iteration stops.
func (r *Region) ForEachObject(fn func(*model.WorldObject) bool) {
	for _, obj := range r.objects {
		if !fn(obj) {
			return
		}
	}
}
