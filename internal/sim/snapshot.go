package sim

import (
	"github.com/udisondev/arena/internal/model"
	"github.com/udisondev/arena/internal/spawn"
)

// AgentSnapshot is the presentation view of one agent.
type AgentSnapshot struct {
	ID       uint32         `json:"id"`
	Name     string         `json:"name"`
	Location model.Location `json:"location"`
	Facing   float64        `json:"facing"`
	HP       int            `json:"hp"`
	MaxHP    int            `json:"max_hp"`
	State    string         `json:"state,omitempty"`
	Swinging bool           `json:"swinging"`
	Cooldown int64          `json:"cooldown_ms"` // until the next swing can start
}

// Snapshot is the full presentation view of a session, sent to feed
// clients on connect.
type Snapshot struct {
	Tick     uint64          `json:"tick"`
	Paused   bool            `json:"paused"`
	GameOver bool            `json:"game_over"`
	Run      spawn.RunState  `json:"run"`
	Player   AgentSnapshot   `json:"player"`
	Enemies  []AgentSnapshot `json:"enemies"`
}

func agentSnapshot(body *model.Body) AgentSnapshot {
	snap := AgentSnapshot{
		ID:       body.ObjectID(),
		Name:     body.Name(),
		Location: body.Location(),
		Facing:   body.Facing(),
	}
	if h := body.Health(); h != nil {
		snap.HP = h.Current()
		snap.MaxHP = h.Max()
	}
	return snap
}

// Snapshot captures current session state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:     s.tick,
		Paused:   s.clock.IsPaused(),
		GameOver: s.coord.IsGameOver(),
		Run:      s.coord.State(),
		Player:   agentSnapshot(s.player.Body()),
	}
	snap.Player.Swinging = s.player.Resolver().InProgress()
	snap.Player.Cooldown = s.player.Resolver().CooldownRemaining().Milliseconds()

	for _, enemy := range s.enemies.Enemies() {
		e := agentSnapshot(enemy.Body)
		e.State = enemy.AI.State().String()
		e.Swinging = enemy.Resolver.InProgress()
		e.Cooldown = enemy.Resolver.CooldownRemaining().Milliseconds()
		snap.Enemies = append(snap.Enemies, e)
	}
	return snap
}
