package event

import "time"

// Type identifies a core notification.
type Type uint8

const (
	// TypeHealthChanged carries (Current, Max) after any HP mutation.
	TypeHealthChanged Type = iota + 1
	// TypeDied fires once per life when HP reaches zero. No payload.
	TypeDied
	// TypeAttackStarted fires when a resolver accepts TryStart (swing animation hook).
	TypeAttackStarted
	// TypeHitMoment fires once per attack sequence at the hit instant. Value = targets hit.
	TypeHitMoment
	// TypeStateChanged fires on Wander/Chase transitions. State = new state name.
	TypeStateChanged
	// TypeLivesChanged carries the remaining lives in Value.
	TypeLivesChanged
	// TypeRespawnPending carries the respawn delay (HUD overlay hook).
	TypeRespawnPending
	// TypeRespawned fires after the player was repositioned and healed.
	TypeRespawned
	// TypeGameOver fires when the last life is lost.
	TypeGameOver
	// TypeCoinsChanged carries the run's coin total in Value.
	TypeCoinsChanged
)

// String returns human-readable event type name
func (t Type) String() string {
	switch t {
	case TypeHealthChanged:
		return "health_changed"
	case TypeDied:
		return "died"
	case TypeAttackStarted:
		return "attack_started"
	case TypeHitMoment:
		return "hit_moment"
	case TypeStateChanged:
		return "state_changed"
	case TypeLivesChanged:
		return "lives_changed"
	case TypeRespawnPending:
		return "respawn_pending"
	case TypeRespawned:
		return "respawned"
	case TypeGameOver:
		return "game_over"
	case TypeCoinsChanged:
		return "coins_changed"
	default:
		return "unknown"
	}
}

// AnySource subscribes to events from every source.
// Object IDs start at 1, so 0 never names a real entity.
const AnySource uint32 = 0

// Event is a single notification emitted by the core.
// Value type, copied into every handler.
type Event struct {
	Type    Type          `json:"type"`
	Source  uint32        `json:"source"`
	Current int           `json:"current,omitempty"`
	Max     int           `json:"max,omitempty"`
	Value   int           `json:"value,omitempty"`
	Delay   time.Duration `json:"delay,omitempty"`
	State   string        `json:"state,omitempty"`
}

// Publisher accepts events. Implementations decide when handlers run.
type Publisher interface {
	Publish(ev Event)
}

// Subscriber registers handlers. The returned func removes the handler.
type Subscriber interface {
	Subscribe(t Type, source uint32, h Handler) (unsubscribe func())
}

// Handler receives a dispatched event.
type Handler func(ev Event)

// Broker is both ends of a bus. *Bus implements it.
type Broker interface {
	Publisher
	Subscriber
}
