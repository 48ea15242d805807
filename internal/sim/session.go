package sim

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/udisondev/arena/internal/ai"
	"github.com/udisondev/arena/internal/clock"
	"github.com/udisondev/arena/internal/config"
	"github.com/udisondev/arena/internal/event"
	"github.com/udisondev/arena/internal/game/combat"
	"github.com/udisondev/arena/internal/model"
	"github.com/udisondev/arena/internal/spawn"
	"github.com/udisondev/arena/internal/world"
)

// enemyRingRadius spreads enemies of one spawn entry around its position.
const enemyRingRadius = 1.0

// Session is one arena scene: clock, bus, grid, player, enemies and the
// run coordinator, advanced in a fixed order by Advance.
//
// Session is not safe for concurrent use; Runner serializes access.
type Session struct {
	cfg config.Arena

	clock     *clock.Clock
	bus       *event.Bus
	arena     *world.Arena
	grid      *world.Grid
	ids       *world.ObjectIDGenerator
	aiManager *ai.Manager
	enemies   *spawn.Manager
	coord     *spawn.Coordinator
	player    *Player

	tick uint64
}

// NewSession builds the scene described by cfg. cfg is expected to be
// normalized (config.LoadArena does that).
func NewSession(cfg config.Arena) (*Session, error) {
	s := &Session{
		cfg:       cfg,
		clock:     clock.New(),
		bus:       event.NewDeferredBus(),
		aiManager: ai.NewManager(),
	}

	s.arena = world.NewArena(cfg.Bounds.MinX, cfg.Bounds.MinY, cfg.Bounds.MaxX, cfg.Bounds.MaxY)
	s.grid = world.NewGrid(s.arena, cfg.CellSize)

	s.coord = spawn.NewCoordinator(spawn.Settings{
		StartLives:   cfg.Lives.StartLives,
		RespawnDelay: cfg.Lives.RespawnDelay,
		SpawnPadding: cfg.Lives.SpawnPadding,
		FixedSpawn:   cfg.Lives.FixedSpawn,
		MaxHP:        cfg.Player.MaxHP,
	}, s.clock, s.arena, s.bus)
	s.coord.SetReloadFunc(s.reload)

	if err := s.build(); err != nil {
		return nil, err
	}

	slog.Info("session created",
		"bounds", cfg.Bounds,
		"enemies", s.enemies.EnemyCount(),
		"lives", cfg.Lives.StartLives,
		"tickRate", cfg.TickRate)

	return s, nil
}

// build places player and enemies into a fresh grid.
func (s *Session) build() error {
	s.ids = world.NewObjectIDGenerator()

	if err := s.buildPlayer(); err != nil {
		return err
	}

	s.enemies = spawn.NewManager(s.grid, s.aiManager, s.ids, s.clock.Scaled(), s.bus, s.targetPlayer)
	if err := s.enemies.SpawnAll(s.enemySpecs()); err != nil {
		return fmt.Errorf("spawning enemies: %w", err)
	}

	if s.cfg.Seed != 0 {
		s.SetSeed(s.cfg.Seed)
	}
	return nil
}

func (s *Session) buildPlayer() error {
	pc := s.cfg.Player
	id := s.ids.NextPlayerID()

	obj := model.NewWorldObject(id, pc.Name, model.CategoryPlayer, pc.Spawn)
	obj.SetRadius(pc.Radius)
	obj.SetHealth(model.NewHealth(id, pc.MaxHP, s.bus))
	if err := s.grid.AddObject(obj); err != nil {
		return fmt.Errorf("adding player to grid: %w", err)
	}

	body := model.NewBody(obj, 0)
	resolver := combat.NewResolver(body, pc.Attack.Profile(), s.grid, s.clock.Scaled(), s.bus)
	s.player = NewPlayer(body, resolver, MoverParams{
		Speed:              pc.Speed,
		TurnRate:           pc.TurnRate,
		BackpedalSpeed:     pc.BackpedalSpeed,
		BackpedalThreshold: pc.BackpedalThreshold,
	})
	s.coord.AttachPlayer(body)
	return nil
}

// enemySpecs expands config entries; Count > 1 spreads copies on a ring.
func (s *Session) enemySpecs() []spawn.EnemySpec {
	var specs []spawn.EnemySpec
	for _, e := range s.cfg.Enemies {
		for i := range e.Count {
			pos := e.Position
			if e.Count > 1 {
				angle := 2 * math.Pi * float64(i) / float64(e.Count)
				pos = pos.Add(model.HeadingVector(angle).Scale(enemyRingRadius))
			}
			specs = append(specs, spawn.EnemySpec{
				Name:     e.Name,
				Location: pos,
				MaxHP:    e.MaxHP,
				Radius:   e.Radius,
				Params:   behaviorParams(e.Behavior),
				Attack:   e.Attack.Profile(),
			})
		}
	}
	return specs
}

func behaviorParams(b config.Behavior) ai.Params {
	return ai.Params{
		Speed:           b.Speed,
		TurnRate:        b.TurnRate,
		AggroRadius:     b.AggroRadius,
		LoseAggroRadius: b.LoseAggroRadius,
		LoseDelay:       b.LoseDelay,
		WanderRadius:    b.WanderRadius,
		WanderWaitMin:   b.WanderWaitMin,
		WanderWaitMax:   b.WanderWaitMax,
		StopDistance:    b.StopDistance,
		WanderPadding:   b.WanderPadding,
	}
}

// reload tears the scene down and builds it again (Retry hook).
func (s *Session) reload() {
	s.coord.DetachPlayer()
	s.enemies.Clear()
	s.aiManager.StopAll()
	s.grid.Clear()

	if err := s.build(); err != nil {
		slog.Error("session reload failed", "error", err)
		return
	}
	slog.Info("session reloaded", "enemies", s.enemies.EnemyCount())
}

// targetPlayer is the tracked target of every enemy.
func (s *Session) targetPlayer() *model.WorldObject {
	if s.player == nil {
		return nil
	}
	return s.player.Body().WorldObject
}

// Advance runs one tick of dt real time:
//
//  0. clocks advance; due respawns run on unscaled time
//  1. player mover and enemy AI decide and move (skipped while paused)
//  2. attack sequences advance and resolve hits
//  3. vertical lock and arena clamp, grid re-bucketing
//  4. queued notifications are dispatched
func (s *Session) Advance(dt time.Duration) {
	s.tick++

	// 0
	scaled := s.clock.Advance(dt)
	s.coord.Advance()

	// 1
	if !s.clock.IsPaused() {
		s.player.Tick(scaled)
		s.aiManager.TickAll(scaled)
	}

	// 2
	s.player.Resolver().Advance(scaled)
	for _, enemy := range s.enemies.Enemies() {
		enemy.Resolver.Advance(scaled)
	}

	// 3
	s.settle(s.player.Body(), s.cfg.Player.ClampPadding)
	for _, enemy := range s.enemies.Enemies() {
		s.settle(enemy.Body, enemy.Body.Radius())
	}

	// 4
	n := s.bus.Flush()

	if ai.IsDebugEnabled() {
		slog.Debug("tick",
			"tick", s.tick,
			"dt", dt,
			"scaled", scaled,
			"events", n)
	}
}

func (s *Session) settle(body *model.Body, padding float64) {
	body.LockVertical()
	if s.arena != nil {
		body.SetLocation(s.arena.Clamp(body.Location(), padding))
	}
	s.grid.UpdateObject(body.WorldObject)
}

// RequestAttack asks agent objectID to start a swing.
// Returns true when the swing was accepted.
func (s *Session) RequestAttack(objectID uint32) bool {
	if s.player != nil && s.player.Body().ObjectID() == objectID {
		return s.player.Resolver().TryStart()
	}
	if enemy, ok := s.enemies.GetEnemy(objectID); ok {
		return enemy.Resolver.TryStart()
	}
	slog.Debug("attack request for unknown agent", "objectID", objectID)
	return false
}

// SetMoveInput sets player movement input on the plane.
func (s *Session) SetMoveInput(dir model.Location) {
	s.player.SetInput(dir)
}

// Retry restarts the run after game over (or at any time).
func (s *Session) Retry() {
	s.coord.Retry()
}

// AddCoins credits coins to the run (coin pickups are external).
func (s *Session) AddCoins(n int) {
	s.coord.AddCoins(n)
}

// SetRunEndedFunc sets game-over hook (run history recorder).
func (s *Session) SetRunEndedFunc(fn func(spawn.RunSummary)) {
	s.coord.SetRunEndedFunc(fn)
}

// SetSeed reseeds spawn-point selection and every current enemy's wander rng.
func (s *Session) SetSeed(seed uint64) {
	s.arena.SetSeed(seed)
	for _, enemy := range s.enemies.Enemies() {
		id := uint64(enemy.Body.ObjectID())
		enemy.AI.SetRand(rand.New(rand.NewPCG(seed, id)))
	}
}

// Bus returns the notification bus. Handlers run in step 4 of Advance.
func (s *Session) Bus() *event.Bus {
	return s.bus
}

// Clock returns session clocks.
func (s *Session) Clock() *clock.Clock {
	return s.clock
}

// Grid returns spatial query service.
func (s *Session) Grid() *world.Grid {
	return s.grid
}

// Arena returns arena bounds.
func (s *Session) Arena() *world.Arena {
	return s.arena
}

// Player returns the player agent.
func (s *Session) Player() *Player {
	return s.player
}

// Enemies returns enemy spawn manager.
func (s *Session) Enemies() *spawn.Manager {
	return s.enemies
}

// AI returns AI controller registry.
func (s *Session) AI() *ai.Manager {
	return s.aiManager
}

// Coordinator returns run coordinator.
func (s *Session) Coordinator() *spawn.Coordinator {
	return s.coord
}

// Tick returns number of Advance calls so far.
func (s *Session) Tick() uint64 {
	return s.tick
}
