package ai

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Manager keeps AI controllers of all live agents and ticks them in
// registration order, so a run with a fixed seed is reproducible.
type Manager struct {
	mu          sync.RWMutex
	controllers map[uint32]Controller
	order       []uint32
}

// NewManager creates empty controller registry
func NewManager() *Manager {
	return &Manager{
		controllers: make(map[uint32]Controller),
	}
}

// Register registers and starts AI controller for agent.
// Re-registering an objectID replaces (and stops) the previous controller.
func (m *Manager) Register(objectID uint32, controller Controller) {
	m.mu.Lock()
	prev, exists := m.controllers[objectID]
	m.controllers[objectID] = controller
	if !exists {
		m.order = append(m.order, objectID)
	}
	m.mu.Unlock()

	if exists {
		prev.Stop()
	}
	controller.Start()

	slog.Debug("AI controller registered",
		"objectID", objectID,
		"state", controller.State())
}

// Unregister stops and removes AI controller
func (m *Manager) Unregister(objectID uint32) {
	m.mu.Lock()
	controller, ok := m.controllers[objectID]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.controllers, objectID)
	m.order = slices.DeleteFunc(m.order, func(id uint32) bool { return id == objectID })
	m.mu.Unlock()

	controller.Stop()

	slog.Debug("AI controller unregistered", "objectID", objectID)
}

// TickAll ticks all registered controllers in registration order.
// Controllers may unregister themselves (or others) from inside Tick.
func (m *Manager) TickAll(dt time.Duration) {
	m.mu.RLock()
	ids := slices.Clone(m.order)
	m.mu.RUnlock()

	count := 0
	for _, id := range ids {
		m.mu.RLock()
		controller, ok := m.controllers[id]
		m.mu.RUnlock()
		if !ok {
			continue
		}
		controller.Tick(dt)
		count++
	}

	if count > 0 && IsDebugEnabled() {
		slog.Debug("AI tick completed", "controllers", count, "dt", dt)
	}
}

// Count returns number of registered controllers
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.controllers)
}

// GetController returns controller for agent
func (m *Manager) GetController(objectID uint32) (Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	controller, ok := m.controllers[objectID]
	if !ok {
		return nil, fmt.Errorf("controller not found for objectID %d", objectID)
	}
	return controller, nil
}

// StopAll stops and removes every controller (scene teardown).
func (m *Manager) StopAll() {
	m.mu.Lock()
	controllers := m.controllers
	order := m.order
	m.controllers = make(map[uint32]Controller)
	m.order = nil
	m.mu.Unlock()

	for _, id := range order {
		controllers[id].Stop()
	}
}
