package feed

import (
	"encoding/json"
	"time"

	"github.com/udisondev/arena/internal/event"
)

// Server → client message kinds.
const (
	KindSnapshot = "snapshot"
	KindEvent    = "event"
)

// Client → server message types.
const (
	TypeInput  = "input"
	TypeAttack = "attack"
	TypeRetry  = "retry"
)

// serverMessage is the envelope of every frame sent to clients.
type serverMessage struct {
	Kind       string     `json:"kind"`
	ServerTime int64      `json:"serverTime"`
	Event      *wireEvent `json:"event,omitempty"`
	Snapshot   any        `json:"snapshot,omitempty"`
}

// wireEvent is event.Event with a readable type.
type wireEvent struct {
	Type    string `json:"type"`
	Source  uint32 `json:"source,omitempty"`
	Current int    `json:"current,omitempty"`
	Max     int    `json:"max,omitempty"`
	Value   int    `json:"value,omitempty"`
	DelayMs int64  `json:"delayMs,omitempty"`
	State   string `json:"state,omitempty"`
}

func toWire(ev event.Event) *wireEvent {
	return &wireEvent{
		Type:    ev.Type.String(),
		Source:  ev.Source,
		Current: ev.Current,
		Max:     ev.Max,
		Value:   ev.Value,
		DelayMs: ev.Delay.Milliseconds(),
		State:   ev.State,
	}
}

func marshalEvent(ev event.Event) ([]byte, error) {
	return json.Marshal(serverMessage{
		Kind:       KindEvent,
		ServerTime: time.Now().UnixMilli(),
		Event:      toWire(ev),
	})
}

func marshalSnapshot(snapshot any) ([]byte, error) {
	return json.Marshal(serverMessage{
		Kind:       KindSnapshot,
		ServerTime: time.Now().UnixMilli(),
		Snapshot:   snapshot,
	})
}

// clientMessage is a command frame sent by a client.
type clientMessage struct {
	Type string  `json:"type"`
	DX   float64 `json:"dx"`
	DY   float64 `json:"dy"`
}
