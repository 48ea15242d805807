package combat

import (
	"log/slog"
	"time"

	"github.com/udisondev/arena/internal/clock"
	"github.com/udisondev/arena/internal/event"
	"github.com/udisondev/arena/internal/model"
)

// SpatialQuery returns objects overlapping a sphere, filtered by category.
// Implemented by world.Grid.
type SpatialQuery interface {
	QuerySphere(origin model.Location, radius float64, filter model.Category) []*model.WorldObject
}

// HitResult describes one resolved hit-moment (for tests and diagnostics).
type HitResult struct {
	AttackerID uint32
	Origin     model.Location
	TargetIDs  []uint32 // deduplicated owner IDs that received damage
	Damage     int
}

// Sequence is the in-flight state of one swing.
type Sequence struct {
	Phase   Phase
	Elapsed time.Duration // time spent in the current phase
	Fired   bool
}

// Resolver drives one agent's melee attacks: cooldown gate, phased swing
// and a single hit-moment per swing.
//
// Advance must be called once per tick by the session; the resolver never
// starts goroutines or timers of its own.
type Resolver struct {
	owner   *model.Body
	profile model.AttackProfile
	query   SpatialQuery
	clock   clock.Source
	pub     event.Publisher

	seq        *Sequence
	lastStart  time.Duration
	hasStarted bool

	// attackPoint overrides the default origin (position + facing*range/2).
	attackPoint func() model.Location

	// hitObserver — callback для наблюдения за результатами ударов (nil в production).
	hitObserver func(HitResult)
}

// NewResolver creates resolver for owner with profile.
// query and pub may be nil (no hits / no notifications).
func NewResolver(
	owner *model.Body,
	profile model.AttackProfile,
	query SpatialQuery,
	src clock.Source,
	pub event.Publisher,
) *Resolver {
	return &Resolver{
		owner:   owner,
		profile: profile,
		query:   query,
		clock:   src,
		pub:     pub,
	}
}

// SetAttackPoint sets explicit hit-sphere origin provider (nil = default).
func (r *Resolver) SetAttackPoint(fn func() model.Location) {
	r.attackPoint = fn
}

// SetHitObserver sets callback for observing hit-moments (for tests).
func (r *Resolver) SetHitObserver(fn func(HitResult)) {
	r.hitObserver = fn
}

// Profile returns the attack profile.
func (r *Resolver) Profile() model.AttackProfile {
	return r.profile
}

// InProgress reports whether a swing is in flight.
func (r *Resolver) InProgress() bool {
	return r.seq != nil
}

// Phase returns current phase (PhaseIdle when no swing is in flight).
func (r *Resolver) Phase() Phase {
	if r.seq == nil {
		return PhaseIdle
	}
	return r.seq.Phase
}

// CooldownRemaining returns time until TryStart can be accepted again
// (ignoring an in-flight swing).
func (r *Resolver) CooldownRemaining() time.Duration {
	if !r.hasStarted {
		return 0
	}
	return max(0, r.lastStart+r.profile.Cooldown-r.clock.Now())
}

// TryStart begins a swing. Rejected while a swing is in flight, while the
// owner is dead, or while now - lastStart < cooldown.
func (r *Resolver) TryStart() bool {
	if r.seq != nil {
		return false
	}
	if !r.owner.IsAlive() {
		return false
	}

	now := r.clock.Now()
	if r.hasStarted && now-r.lastStart < r.profile.Cooldown {
		return false
	}

	r.seq = &Sequence{Phase: PhaseWindup}
	r.lastStart = now
	r.hasStarted = true

	if r.pub != nil {
		r.pub.Publish(event.Event{
			Type:   event.TypeAttackStarted,
			Source: r.owner.ObjectID(),
		})
	}

	slog.Debug("attack started",
		"attacker", r.owner.Name(),
		"objectID", r.owner.ObjectID(),
		"at", now)
	return true
}

// Cancel drops an in-flight swing without resolving it.
// Cooldown is not reset.
func (r *Resolver) Cancel() {
	if r.seq == nil {
		return
	}
	slog.Debug("attack canceled",
		"attacker", r.owner.Name(),
		"phase", r.seq.Phase,
		"fired", r.seq.Fired)
	r.seq = nil
}

// Advance moves the swing forward by dt, crossing as many phase boundaries
// as dt covers. The hit-moment fires exactly once per swing even when dt
// skips the whole Active phase.
func (r *Resolver) Advance(dt time.Duration) {
	if r.seq == nil {
		return
	}
	// Dead attackers never deal posthumous damage.
	if !r.owner.IsAlive() {
		r.Cancel()
		return
	}

	seq := r.seq
	seq.Elapsed += max(dt, 0)

	for {
		switch seq.Phase {
		case PhaseWindup:
			if seq.Elapsed < r.profile.Windup {
				return
			}
			seq.Elapsed -= r.profile.Windup
			seq.Phase = PhaseActive

		case PhaseActive:
			if !seq.Fired && r.activeProgress(seq.Elapsed) >= r.profile.HitMomentFraction {
				seq.Fired = true
				r.resolveHit()
			}
			if seq.Elapsed < r.profile.Active {
				return
			}
			seq.Elapsed -= r.profile.Active
			seq.Phase = PhaseRecovery

		case PhaseRecovery:
			if seq.Elapsed < r.profile.Recovery {
				return
			}
			r.seq = nil
			return

		default:
			r.seq = nil
			return
		}
	}
}

// activeProgress maps elapsed time in Active to u in [0,1].
func (r *Resolver) activeProgress(elapsed time.Duration) float64 {
	if r.profile.Active <= 0 {
		return 1
	}
	return min(1, float64(elapsed)/float64(r.profile.Active))
}

// Origin returns the hit-sphere center for the current owner pose.
func (r *Resolver) Origin() model.Location {
	if r.attackPoint != nil {
		return r.attackPoint()
	}
	return r.owner.Location().Add(r.owner.Forward().Scale(r.profile.Range * 0.5))
}

// resolveHit runs the single spatial query of a swing and applies damage
// once per owning entity.
func (r *Resolver) resolveHit() {
	origin := r.Origin()
	result := HitResult{
		AttackerID: r.owner.ObjectID(),
		Origin:     origin,
		Damage:     r.profile.Damage,
	}

	var hits []*model.WorldObject
	if r.query != nil {
		hits = r.query.QuerySphere(origin, r.profile.Radius, r.profile.TargetFilter)
	}

	seen := make(map[uint32]struct{}, len(hits))
	for _, hit := range hits {
		owner := hit.Owner()
		if owner.ObjectID() == r.owner.ObjectID() {
			continue
		}
		if _, dup := seen[owner.ObjectID()]; dup {
			continue
		}
		seen[owner.ObjectID()] = struct{}{}

		h := owner.Health()
		if h == nil {
			slog.Debug("hit target has no health",
				"attacker", r.owner.Name(),
				"target", hit.Name())
			continue
		}
		if !h.IsAlive() {
			// Killed earlier this tick, despawn is still pending.
			continue
		}

		before := h.Current()
		h.TakeDamage(r.profile.Damage)
		result.TargetIDs = append(result.TargetIDs, owner.ObjectID())

		slog.Debug("hit",
			"attacker", r.owner.Name(),
			"target", owner.Name(),
			"before", before,
			"after", h.Current(),
			"max", h.Max())
	}

	slog.Debug("hit moment",
		"attacker", r.owner.Name(),
		"origin", origin,
		"radius", r.profile.Radius,
		"candidates", len(hits),
		"damaged", len(result.TargetIDs))

	if r.pub != nil {
		r.pub.Publish(event.Event{
			Type:   event.TypeHitMoment,
			Source: r.owner.ObjectID(),
			Value:  len(result.TargetIDs),
		})
	}
	if r.hitObserver != nil {
		r.hitObserver(result)
	}
}
