package model

import "time"

// AttackProfile is the immutable melee configuration of an agent archetype.
type AttackProfile struct {
	Damage   int
	Cooldown time.Duration

	// Radius of the hit sphere; Range places its default center at
	// position + facing * Range/2.
	Radius float64
	Range  float64

	// Phase durations of the swing envelope.
	Windup   time.Duration
	Active   time.Duration
	Recovery time.Duration

	// HitMomentFraction is the progress through Active (0..1) at which the
	// hit query runs.
	HitMomentFraction float64

	// EngageDistance is the planar distance at which AI agents start a swing.
	EngageDistance float64

	TargetFilter Category
}

// Duration returns full swing length (windup + active + recovery).
func (p AttackProfile) Duration() time.Duration {
	return p.Windup + p.Active + p.Recovery
}
