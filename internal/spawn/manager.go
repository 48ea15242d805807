package spawn

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/udisondev/arena/internal/ai"
	"github.com/udisondev/arena/internal/clock"
	"github.com/udisondev/arena/internal/event"
	"github.com/udisondev/arena/internal/game/combat"
	"github.com/udisondev/arena/internal/model"
	"github.com/udisondev/arena/internal/world"
)

// EnemySpec describes one enemy to place in the arena.
type EnemySpec struct {
	Name     string
	Location model.Location
	Heading  float64
	MaxHP    int
	Radius   float64
	Params   ai.Params
	Attack   model.AttackProfile
}

// Enemy is a spawned enemy agent with its controller and resolver.
type Enemy struct {
	Body     *model.Body
	AI       *ai.EnemyAI
	Resolver *combat.Resolver

	unsubscribe func()
}

// Manager spawns enemy agents into the grid and AI registry and removes
// them once they die.
type Manager struct {
	grid      *world.Grid
	aiManager *ai.Manager
	ids       *world.ObjectIDGenerator
	clock     clock.Source
	bus       event.Broker
	target    ai.TargetFunc

	mu      sync.RWMutex
	enemies map[uint32]*Enemy
	order   []uint32
}

// NewManager creates new enemy spawn manager.
// target is the tracked target handed to every enemy AI.
func NewManager(
	grid *world.Grid,
	aiManager *ai.Manager,
	ids *world.ObjectIDGenerator,
	src clock.Source,
	bus event.Broker,
	target ai.TargetFunc,
) *Manager {
	return &Manager{
		grid:      grid,
		aiManager: aiManager,
		ids:       ids,
		clock:     src,
		bus:       bus,
		target:    target,
		enemies:   make(map[uint32]*Enemy),
	}
}

// DoSpawn creates the enemy described by spec, adds it to the grid and
// registers (starts) its AI.
func (m *Manager) DoSpawn(spec EnemySpec) (*Enemy, error) {
	objectID := m.ids.NextEnemyID()

	obj := model.NewWorldObject(objectID, spec.Name, model.CategoryEnemy, spec.Location)
	obj.SetRadius(spec.Radius)
	obj.SetHealth(model.NewHealth(objectID, spec.MaxHP, m.bus))

	if err := m.grid.AddObject(obj); err != nil {
		return nil, fmt.Errorf("adding enemy %q to grid: %w", spec.Name, err)
	}

	body := model.NewBody(obj, spec.Heading)
	resolver := combat.NewResolver(body, spec.Attack, m.grid, m.clock, m.bus)

	var bounds ai.Bounds
	if arena := m.grid.Arena(); arena != nil {
		bounds = arena
	}
	enemyAI := ai.NewEnemyAI(body, spec.Params, resolver, m.target, bounds, m.clock, m.bus)

	enemy := &Enemy{
		Body:     body,
		AI:       enemyAI,
		Resolver: resolver,
	}
	if m.bus != nil {
		enemy.unsubscribe = m.bus.Subscribe(event.TypeDied, objectID, func(event.Event) {
			m.Despawn(objectID)
		})
	}

	m.mu.Lock()
	m.enemies[objectID] = enemy
	m.order = append(m.order, objectID)
	m.mu.Unlock()

	m.aiManager.Register(objectID, enemyAI)

	slog.Info("enemy spawned",
		"objectID", objectID,
		"name", spec.Name,
		"location", spec.Location,
		"maxHP", spec.MaxHP)

	return enemy, nil
}

// SpawnAll spawns every spec. Failures are logged; the first error is returned.
func (m *Manager) SpawnAll(specs []EnemySpec) error {
	var firstErr error
	for _, spec := range specs {
		if _, err := m.DoSpawn(spec); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			slog.Error("failed to spawn enemy",
				"name", spec.Name,
				"error", err)
		}
	}
	return firstErr
}

// Despawn removes enemy from the AI registry and the grid.
func (m *Manager) Despawn(objectID uint32) {
	m.mu.Lock()
	enemy, ok := m.enemies[objectID]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.enemies, objectID)
	m.order = slices.DeleteFunc(m.order, func(id uint32) bool { return id == objectID })
	m.mu.Unlock()

	if enemy.unsubscribe != nil {
		enemy.unsubscribe()
	}
	m.aiManager.Unregister(objectID)
	m.grid.RemoveObject(objectID)

	slog.Info("enemy despawned",
		"objectID", objectID,
		"name", enemy.Body.Name())
}

// Clear despawns every enemy.
func (m *Manager) Clear() {
	for _, enemy := range m.Enemies() {
		m.Despawn(enemy.Body.ObjectID())
	}
}

// GetEnemy returns enemy by objectID
func (m *Manager) GetEnemy(objectID uint32) (*Enemy, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	enemy, ok := m.enemies[objectID]
	return enemy, ok
}

// Enemies returns live enemies in spawn order.
func (m *Manager) Enemies() []*Enemy {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Enemy, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.enemies[id])
	}
	return out
}

// EnemyCount returns number of live enemies.
func (m *Manager) EnemyCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.enemies)
}
