package ai

import (
	"time"

	"github.com/udisondev/arena/internal/model"
)

// Controller represents AI controller interface for arena agents
type Controller interface {
	// Start starts AI controller
	Start()

	// Stop stops AI controller
	Stop()

	// IsRunning reports whether Tick has any effect
	IsRunning() bool

	// State returns current behaviour state
	State() model.AgentState

	// Tick performs one decision/movement step (called every simulation tick)
	Tick(dt time.Duration)
}
