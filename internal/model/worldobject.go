package model

import "sync"

// WorldObject — базовый объект арены: ID, имя, категория, позиция и коллайдер.
//
// A WorldObject may be a hurtbox owned by another object (multi-collider
// entities); Owner() resolves the entity that owns the Health.
type WorldObject struct {
	objectID uint32
	name     string
	category Category
	location Location
	radius   float64
	owner    *WorldObject
	health   *Health

	mu sync.RWMutex
}

// NewWorldObject создаёт новый объект.
func NewWorldObject(objectID uint32, name string, category Category, loc Location) *WorldObject {
	return &WorldObject{
		objectID: objectID,
		name:     name,
		category: category,
		location: loc,
	}
}

// ObjectID возвращает уникальный ID объекта (immutable после создания).
func (w *WorldObject) ObjectID() uint32 {
	return w.objectID
}

// Name возвращает имя объекта.
func (w *WorldObject) Name() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.name
}

// Category returns the object's target category.
func (w *WorldObject) Category() Category {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.category
}

// Location возвращает копию координат объекта.
func (w *WorldObject) Location() Location {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.location
}

// SetLocation устанавливает новые координаты объекта.
func (w *WorldObject) SetLocation(loc Location) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.location = loc
}

// Radius returns collider radius (0 = point collider).
func (w *WorldObject) Radius() float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.radius
}

// SetRadius sets collider radius (clamp >= 0).
func (w *WorldObject) SetRadius(r float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.radius = max(r, 0)
}

// Owner returns the entity owning this collider; the object itself when unowned.
func (w *WorldObject) Owner() *WorldObject {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.owner == nil {
		return w
	}
	return w.owner
}

// SetOwner attaches this collider to an owning entity.
func (w *WorldObject) SetOwner(owner *WorldObject) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.owner = owner
}

// Health returns the object's Health entity (nil for props and hurtboxes).
func (w *WorldObject) Health() *Health {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.health
}

// SetHealth binds a Health entity to this object.
func (w *WorldObject) SetHealth(h *Health) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.health = h
}

// IsAlive reports whether the object has Health and it is above zero.
// Objects without Health are never alive.
func (w *WorldObject) IsAlive() bool {
	h := w.Health()
	return h != nil && h.IsAlive()
}
