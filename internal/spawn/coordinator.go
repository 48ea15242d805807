package spawn

import (
	"log/slog"
	"time"

	"github.com/udisondev/arena/internal/clock"
	"github.com/udisondev/arena/internal/event"
	"github.com/udisondev/arena/internal/model"
)

// Respawnable is the player side of the coordinator. *model.Body implements it.
type Respawnable interface {
	ObjectID() uint32
	Name() string
	Location() model.Location
	SetLocation(loc model.Location)
	ZeroVelocity()
	Health() *model.Health
}

// SpawnArea picks spawn points. Implemented by world.Arena.
type SpawnArea interface {
	RandomPoint(padding float64) model.Location
}

// Settings configure lives and respawn behaviour.
type Settings struct {
	StartLives   int
	RespawnDelay time.Duration // unscaled
	SpawnPadding float64

	// FixedSpawn overrides random spawn selection when set.
	FixedSpawn *model.Location

	// MaxHP restored on respawn; 0 keeps the player's current max.
	MaxHP int
}

// RunState is the per-run bookkeeping reset on retry.
type RunState struct {
	Lives      int `json:"lives"`
	StartLives int `json:"start_lives"`
	Deaths     int `json:"deaths"`
	Coins      int `json:"coins"`
}

// RunSummary is handed to the run-ended hook on game over.
type RunSummary struct {
	StartLives int
	Deaths     int
	Coins      int
	Duration   time.Duration // scaled time from run start to game over
	EndedAt    time.Time
}

// Coordinator owns lives, deaths and coins of a run and respawns the
// attached player after death until lives run out.
//
// All methods are expected to be called from the simulation goroutine.
type Coordinator struct {
	settings Settings
	clock    *clock.Clock
	area     SpawnArea
	bus      event.Broker
	respawns *RespawnScheduler

	player      Respawnable
	unsubscribe func()

	state        RunState
	gameOver     bool
	runStartedAt time.Duration

	onRunEnded func(RunSummary)
	onReload   func()
}

// NewCoordinator creates coordinator. area may be nil (respawn in place
// unless a fixed spawn is configured).
func NewCoordinator(settings Settings, clk *clock.Clock, area SpawnArea, bus event.Broker) *Coordinator {
	settings.StartLives = max(settings.StartLives, 0)
	return &Coordinator{
		settings: settings,
		clock:    clk,
		area:     area,
		bus:      bus,
		respawns: NewRespawnScheduler(clk.Unscaled()),
		state: RunState{
			Lives:      settings.StartLives,
			StartLives: settings.StartLives,
		},
		runStartedAt: clk.Now(),
	}
}

// SetRunEndedFunc sets callback invoked once per game over.
func (c *Coordinator) SetRunEndedFunc(fn func(RunSummary)) {
	c.onRunEnded = fn
}

// SetReloadFunc sets callback invoked by Retry to rebuild the scene.
func (c *Coordinator) SetReloadFunc(fn func()) {
	c.onReload = fn
}

// AttachPlayer starts tracking deaths of p. A previously attached player
// is detached first.
func (c *Coordinator) AttachPlayer(p Respawnable) {
	c.DetachPlayer()
	c.player = p

	if c.bus != nil {
		c.unsubscribe = c.bus.Subscribe(event.TypeDied, p.ObjectID(), func(event.Event) {
			c.onPlayerDied()
		})
	}

	slog.Debug("player attached",
		"player", p.Name(),
		"objectID", p.ObjectID(),
		"lives", c.state.Lives)
}

// DetachPlayer stops tracking the player and drops its pending respawn.
func (c *Coordinator) DetachPlayer() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	if c.player != nil {
		c.respawns.Cancel(c.player.ObjectID())
		c.player = nil
	}
}

// Player returns attached player (nil when detached).
func (c *Coordinator) Player() Respawnable {
	return c.player
}

func (c *Coordinator) onPlayerDied() {
	if c.player == nil || c.gameOver {
		return
	}

	c.state.Deaths++
	if c.state.Lives > 0 {
		c.state.Lives--
		c.publish(event.Event{Type: event.TypeLivesChanged, Value: c.state.Lives})
	}

	slog.Info("player died",
		"player", c.player.Name(),
		"lives", c.state.Lives,
		"deaths", c.state.Deaths)

	if c.state.Lives > 0 {
		c.respawns.Schedule(c.player.ObjectID(), c.settings.RespawnDelay)
		c.publish(event.Event{
			Type:   event.TypeRespawnPending,
			Source: c.player.ObjectID(),
			Delay:  c.settings.RespawnDelay,
		})
		return
	}

	c.endRun()
}

func (c *Coordinator) endRun() {
	c.gameOver = true
	c.clock.Pause()

	summary := RunSummary{
		StartLives: c.state.StartLives,
		Deaths:     c.state.Deaths,
		Coins:      c.state.Coins,
		Duration:   c.clock.Now() - c.runStartedAt,
		EndedAt:    time.Now(),
	}

	c.publish(event.Event{Type: event.TypeGameOver, Value: c.state.Coins})

	slog.Info("game over",
		"deaths", summary.Deaths,
		"coins", summary.Coins,
		"duration", summary.Duration)

	if c.onRunEnded != nil {
		c.onRunEnded(summary)
	}
}

// Advance runs due respawns. Called every tick, including paused ones.
func (c *Coordinator) Advance() {
	for _, task := range c.respawns.Due() {
		if c.player == nil || task.ObjectID != c.player.ObjectID() {
			slog.Warn("respawn task for unknown player dropped", "objectID", task.ObjectID)
			continue
		}
		c.respawn(c.player)
	}
}

func (c *Coordinator) respawn(p Respawnable) {
	pos := c.spawnPoint(p)
	p.SetLocation(pos)
	p.ZeroVelocity()

	if h := p.Health(); h != nil {
		maxHP := c.settings.MaxHP
		if maxHP <= 0 {
			maxHP = h.Max()
		}
		h.SetMax(maxHP, true)
	}

	c.publish(event.Event{Type: event.TypeRespawned, Source: p.ObjectID()})

	slog.Info("player respawned",
		"player", p.Name(),
		"location", pos,
		"lives", c.state.Lives)
}

// spawnPoint selects the respawn position at respawn time:
// fixed spawn, else a random arena point, else the current position.
// The player's height is always kept.
func (c *Coordinator) spawnPoint(p Respawnable) model.Location {
	current := p.Location()
	switch {
	case c.settings.FixedSpawn != nil:
		return c.settings.FixedSpawn.WithZ(current.Z)
	case c.area != nil:
		return c.area.RandomPoint(c.settings.SpawnPadding).WithZ(current.Z)
	default:
		slog.Debug("no spawn area configured, respawning in place", "player", p.Name())
		return current
	}
}

// Retry resets the run: lives, deaths and coins, resumes the scaled clock
// and asks the owner to reload the scene.
func (c *Coordinator) Retry() {
	c.state = RunState{
		Lives:      c.settings.StartLives,
		StartLives: c.settings.StartLives,
	}
	c.gameOver = false
	c.respawns.Clear()
	c.clock.Resume()
	c.runStartedAt = c.clock.Now()

	c.publish(event.Event{Type: event.TypeLivesChanged, Value: c.state.Lives})
	c.publish(event.Event{Type: event.TypeCoinsChanged, Value: c.state.Coins})

	slog.Info("run restarted", "lives", c.state.Lives)

	if c.onReload != nil {
		c.onReload()
	}
}

// AddCoins adds n coins. Non-positive n is ignored.
func (c *Coordinator) AddCoins(n int) {
	if n <= 0 {
		return
	}
	c.state.Coins += n
	c.publish(event.Event{Type: event.TypeCoinsChanged, Value: c.state.Coins})
}

// Lives returns remaining lives.
func (c *Coordinator) Lives() int {
	return c.state.Lives
}

// Coins returns coins collected this run.
func (c *Coordinator) Coins() int {
	return c.state.Coins
}

// Deaths returns deaths this run.
func (c *Coordinator) Deaths() int {
	return c.state.Deaths
}

// State returns a copy of the run state.
func (c *Coordinator) State() RunState {
	return c.state
}

// IsGameOver reports whether the run has ended.
func (c *Coordinator) IsGameOver() bool {
	return c.gameOver
}

// PendingRespawns returns number of scheduled respawns.
func (c *Coordinator) PendingRespawns() int {
	return c.respawns.TaskCount()
}

func (c *Coordinator) publish(ev event.Event) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}
