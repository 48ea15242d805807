package combat

// Phase is the stage of an attack sequence.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseWindup
	PhaseActive
	PhaseRecovery
)

// String returns human-readable phase name
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseWindup:
		return "WINDUP"
	case PhaseActive:
		return "ACTIVE"
	case PhaseRecovery:
		return "RECOVERY"
	default:
		return "UNKNOWN"
	}
}
