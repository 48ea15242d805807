package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/arena/internal/config"
	"github.com/udisondev/arena/internal/event"
	"github.com/udisondev/arena/internal/model"
	"github.com/udisondev/arena/internal/spawn"
)

const step = 20 * time.Millisecond

func testConfig() config.Arena {
	cfg := config.DefaultArena()
	cfg.Seed = 1
	cfg.Enemies = nil
	cfg.Feed.Enabled = false
	return cfg
}

func newTestSession(t *testing.T, cfg config.Arena) *Session {
	t.Helper()
	s, err := NewSession(cfg)
	require.NoError(t, err)
	return s
}

func run(s *Session, d time.Duration) {
	for elapsed := time.Duration(0); elapsed < d; elapsed += step {
		s.Advance(step)
	}
}

func record(s *Session) *[]event.Event {
	var events []event.Event
	s.Bus().SubscribeAll(func(ev event.Event) { events = append(events, ev) })
	return &events
}

func countType(events []event.Event, t event.Type) int {
	n := 0
	for _, ev := range events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func TestNewSession_Defaults(t *testing.T) {
	cfg := config.DefaultArena()
	s := newTestSession(t, cfg)

	assert.Equal(t, 3, s.Enemies().EnemyCount())
	assert.Equal(t, 3, s.AI().Count())
	assert.Equal(t, 4, s.Grid().ObjectCount())
	assert.Equal(t, 3, s.Coordinator().Lives())
	assert.True(t, s.Player().Body().IsAlive())
}

func TestNewSession_EnemyCountSpread(t *testing.T) {
	cfg := testConfig()
	e := config.DefaultEnemy("Bat", model.NewLocation(5, 5, 0))
	e.Count = 4
	cfg.Enemies = []config.EnemySpawn{e}

	s := newTestSession(t, cfg)

	enemies := s.Enemies().Enemies()
	require.Len(t, enemies, 4)
	for _, enemy := range enemies {
		assert.InDelta(t, 1.0, enemy.Body.Location().PlanarDistance(model.NewLocation(5, 5, 0)), 1e-9)
	}
}

func TestSession_PlayerMoves(t *testing.T) {
	s := newTestSession(t, testConfig())

	s.SetMoveInput(model.NewLocation(0, 2, 0)) // normalized
	run(s, time.Second)

	pos := s.Player().Body().Location()
	assert.InDelta(t, 0.0, pos.X, 1e-9)
	assert.InDelta(t, 6.0, pos.Y, 1e-6)
	assert.Greater(t, s.Player().Body().Facing(), 1.0, "turned toward +Y")

	// stays inside the arena
	run(s, 2*time.Second)
	pos = s.Player().Body().Location()
	assert.InDelta(t, 9.5, pos.Y, 1e-9, "clamped with padding")

	obj, ok := s.Grid().GetObject(s.Player().Body().ObjectID())
	require.True(t, ok)
	assert.Equal(t, pos, obj.Location())
}

func TestSession_PlayerBackpedal(t *testing.T) {
	s := newTestSession(t, testConfig())

	// facing +X, moving -X
	s.SetMoveInput(model.NewLocation(-1, 0, 0))
	run(s, time.Second)

	pos := s.Player().Body().Location()
	assert.InDelta(t, -6*0.85, pos.X, 1e-6)
	assert.InDelta(t, 0.0, s.Player().Body().Facing(), 1e-9, "facing kept while backpedaling")
}

func TestSession_VerticalLock(t *testing.T) {
	cfg := testConfig()
	cfg.Player.Spawn = model.NewLocation(0, 0, 0.5)
	s := newTestSession(t, cfg)

	body := s.Player().Body()
	body.SetLocation(body.Location().WithZ(4))
	s.Advance(step)

	assert.Equal(t, 0.5, body.Location().Z)
}

func TestSession_PausedSkipsMovement(t *testing.T) {
	s := newTestSession(t, testConfig())

	s.Clock().Pause()
	s.SetMoveInput(model.NewLocation(1, 0, 0))
	run(s, time.Second)

	assert.Equal(t, model.NewLocation(0, 0, 0), s.Player().Body().Location())
	assert.Equal(t, time.Duration(0), s.Clock().Now())
	assert.Equal(t, time.Second, s.Clock().UnscaledNow())
}

func TestSession_PlayerKillsEnemy(t *testing.T) {
	cfg := testConfig()
	e := config.DefaultEnemy("Slime", model.NewLocation(1, 0, 0))
	e.MaxHP = 5
	cfg.Enemies = []config.EnemySpawn{e}
	s := newTestSession(t, cfg)
	events := record(s)

	enemyID := s.Enemies().Enemies()[0].Body.ObjectID()

	require.True(t, s.RequestAttack(s.Player().Body().ObjectID()))
	assert.False(t, s.RequestAttack(s.Player().Body().ObjectID()), "swing in flight")

	run(s, 400*time.Millisecond)

	assert.Equal(t, 1, countType(*events, event.TypeHitMoment))
	assert.Equal(t, 1, countType(*events, event.TypeDied))
	assert.Equal(t, 0, s.Enemies().EnemyCount(), "dead enemy despawned")
	assert.Equal(t, 0, s.AI().Count())
	_, ok := s.Grid().GetObject(enemyID)
	assert.False(t, ok)
	assert.Equal(t, 10, s.Player().Body().Health().Current(), "enemy swing canceled by death")
}

func TestSession_EnemyAttacksPlayer(t *testing.T) {
	cfg := testConfig()
	cfg.Enemies = []config.EnemySpawn{config.DefaultEnemy("Slime", model.NewLocation(4, 0, 0))}
	s := newTestSession(t, cfg)
	events := record(s)

	run(s, 3*time.Second)

	enemy := s.Enemies().Enemies()[0]
	assert.Equal(t, "CHASE", enemy.AI.State().String())
	assert.Less(t, s.Player().Body().Health().Current(), 10)
	assert.GreaterOrEqual(t, countType(*events, event.TypeAttackStarted), 1)
	assert.GreaterOrEqual(t, countType(*events, event.TypeStateChanged), 1)
}

func TestSession_RespawnAfterDeath(t *testing.T) {
	s := newTestSession(t, testConfig())
	events := record(s)
	body := s.Player().Body()

	body.Health().TakeDamage(100)
	s.Advance(step)

	assert.Equal(t, 2, s.Coordinator().Lives())
	assert.Equal(t, 1, s.Coordinator().PendingRespawns())
	assert.Equal(t, 1, countType(*events, event.TypeRespawnPending))

	run(s, time.Second)

	assert.True(t, body.IsAlive())
	assert.Equal(t, 1, countType(*events, event.TypeRespawned))
	assert.True(t, s.Arena().Contains(body.Location(), 0.8))
}

func TestSession_GameOverAndRetry(t *testing.T) {
	cfg := testConfig()
	cfg.Lives.StartLives = 1
	cfg.Enemies = []config.EnemySpawn{config.DefaultEnemy("Slime", model.NewLocation(8, 8, 0))}
	s := newTestSession(t, cfg)
	events := record(s)

	var summaries []spawn.RunSummary
	s.SetRunEndedFunc(func(sum spawn.RunSummary) { summaries = append(summaries, sum) })

	s.AddCoins(3)
	s.Player().Body().Health().TakeDamage(100)
	s.Advance(step)

	require.True(t, s.Coordinator().IsGameOver())
	assert.True(t, s.Clock().IsPaused())
	assert.Equal(t, 1, countType(*events, event.TypeGameOver))
	require.Len(t, summaries, 1)
	assert.Equal(t, 3, summaries[0].Coins)

	// gameplay frozen
	now := s.Clock().Now()
	run(s, time.Second)
	assert.Equal(t, now, s.Clock().Now())

	oldBody := s.Player().Body()
	s.Retry()
	s.Advance(step)

	assert.False(t, s.Coordinator().IsGameOver())
	assert.False(t, s.Clock().IsPaused())
	assert.Equal(t, 1, s.Coordinator().Lives())
	assert.Equal(t, 0, s.Coordinator().Coins())
	assert.NotSame(t, oldBody, s.Player().Body(), "scene rebuilt")
	assert.True(t, s.Player().Body().IsAlive())
	assert.Equal(t, 1, s.Enemies().EnemyCount())
	assert.Equal(t, 2, s.Grid().ObjectCount())

	// new player is tracked
	s.Player().Body().Health().TakeDamage(100)
	s.Advance(step)
	assert.True(t, s.Coordinator().IsGameOver())
}

func TestSession_RequestAttackUnknown(t *testing.T) {
	s := newTestSession(t, testConfig())
	assert.False(t, s.RequestAttack(0xdead))
}

func TestSession_Snapshot(t *testing.T) {
	cfg := testConfig()
	cfg.Enemies = []config.EnemySpawn{config.DefaultEnemy("Slime", model.NewLocation(8, 8, 0))}
	s := newTestSession(t, cfg)
	s.Advance(step)

	snap := s.Snapshot()
	assert.Equal(t, uint64(1), snap.Tick)
	assert.Equal(t, 10, snap.Player.HP)
	assert.Equal(t, 3, snap.Run.Lives)
	require.Len(t, snap.Enemies, 1)
	assert.Equal(t, "WANDER", snap.Enemies[0].State)
	assert.Equal(t, "Slime", snap.Enemies[0].Name)
}

func TestSession_SnapshotCooldown(t *testing.T) {
	s := newTestSession(t, testConfig())
	assert.Zero(t, s.Snapshot().Player.Cooldown)

	require.True(t, s.RequestAttack(s.Player().Body().ObjectID()))
	snap := s.Snapshot()
	assert.True(t, snap.Player.Swinging)
	assert.Equal(t, int64(350), snap.Player.Cooldown)

	s.Advance(100 * time.Millisecond)
	assert.Equal(t, int64(250), s.Snapshot().Player.Cooldown)
}

func TestSession_DeterministicWithSeed(t *testing.T) {
	cfg := testConfig()
	cfg.Enemies = []config.EnemySpawn{config.DefaultEnemy("Slime", model.NewLocation(8, 8, 0))}

	a := newTestSession(t, cfg)
	b := newTestSession(t, cfg)
	run(a, 5*time.Second)
	run(b, 5*time.Second)

	assert.Equal(t,
		a.Enemies().Enemies()[0].Body.Location(),
		b.Enemies().Enemies()[0].Body.Location())
}
