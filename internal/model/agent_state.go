package model

// AgentState is the decision state of an enemy agent.
type AgentState int32

const (
	// StateWander - agent walks between random points around its home
	StateWander AgentState = iota
	// StateChase - agent pursues and attacks its tracked target
	StateChase
)

// String returns human-readable state name
func (s AgentState) String() string {
	switch s {
	case StateWander:
		return "WANDER"
	case StateChase:
		return "CHASE"
	default:
		return "UNKNOWN"
	}
}
