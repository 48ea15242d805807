package ai

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/udisondev/arena/internal/clock"
	"github.com/udisondev/arena/internal/event"
	"github.com/udisondev/arena/internal/game/combat"
	"github.com/udisondev/arena/internal/model"
)

// TargetFunc returns the tracked target (nil when there is none).
// Injected by the session to avoid import cycle with spawn/sim.
type TargetFunc func() *model.WorldObject

// Bounds clamps points into the playable area. Implemented by world.Arena.
type Bounds interface {
	Clamp(p model.Location, padding float64) model.Location
}

// wanderArriveTolerance — дистанция, на которой wander-точка считается достигнутой.
const wanderArriveTolerance = 0.15

// Params are the behaviour parameters of one enemy archetype.
// LoseAggroRadius > AggroRadius is enforced by config.Normalize.
type Params struct {
	Speed    float64 // units/s
	TurnRate float64 // exponential smoothing rate, 1/s

	AggroRadius     float64
	LoseAggroRadius float64
	LoseDelay       time.Duration

	WanderRadius  float64
	WanderWaitMin time.Duration
	WanderWaitMax time.Duration

	StopDistance float64

	// WanderPadding keeps wander points away from arena edges.
	WanderPadding float64
}

// DefaultParams returns parameters of the stock melee enemy.
func DefaultParams() Params {
	return Params{
		Speed:           2.5,
		TurnRate:        12,
		AggroRadius:     6,
		LoseAggroRadius: 9,
		LoseDelay:       1250 * time.Millisecond,
		WanderRadius:    4,
		WanderWaitMin:   1500 * time.Millisecond,
		WanderWaitMax:   3 * time.Second,
		StopDistance:    1.1,
		WanderPadding:   0.5,
	}
}

// EnemyAI implements the Wander/Chase state machine of a melee enemy.
//
// Wander → Chase when the target is within AggroRadius.
// Chase → Wander only after the target stayed beyond LoseAggroRadius for
// LoseDelay without interruption. A missing or dead target never starts a
// chase and counts as "beyond lose radius" while chasing.
//
// The agent's own death (Died notification) stops the controller and
// cancels any swing in flight.
type EnemyAI struct {
	body     *model.Body
	params   Params
	resolver *combat.Resolver
	target   TargetFunc
	bounds   Bounds
	clock    clock.Source
	bus      event.Broker
	rng      *rand.Rand

	isRunning atomic.Bool
	state     model.AgentState

	home           model.Location
	wanderTarget   model.Location
	nextWanderTime time.Duration

	// lostTargetAt is valid while losing is true.
	losing       bool
	lostTargetAt time.Duration

	unsubscribe func()
}

// NewEnemyAI creates AI controller for enemy body.
// Home position is the body's position at creation.
// resolver, target, bounds and bus may be nil.
func NewEnemyAI(
	body *model.Body,
	params Params,
	resolver *combat.Resolver,
	target TargetFunc,
	bounds Bounds,
	src clock.Source,
	bus event.Broker,
) *EnemyAI {
	id := uint64(body.ObjectID())
	return &EnemyAI{
		body:     body,
		params:   params,
		resolver: resolver,
		target:   target,
		bounds:   bounds,
		clock:    src,
		bus:      bus,
		rng:      rand.New(rand.NewPCG(id, id^0x9e3779b97f4a7c15)),
		state:    model.StateWander,
		home:     body.Location(),
	}
}

// SetRand replaces the random source used for wander points and waits.
func (ai *EnemyAI) SetRand(rng *rand.Rand) {
	ai.rng = rng
}

// Home returns the wander anchor.
func (ai *EnemyAI) Home() model.Location {
	return ai.home
}

// WanderTarget returns current wander destination.
func (ai *EnemyAI) WanderTarget() model.Location {
	return ai.wanderTarget
}

// NextWanderTime returns the scaled time of the next forced re-pick.
func (ai *EnemyAI) NextWanderTime() time.Duration {
	return ai.nextWanderTime
}

// LostTargetAt returns when the target first went beyond the lose radius
// in the current chase, and whether such a loss is pending.
func (ai *EnemyAI) LostTargetAt() (time.Duration, bool) {
	return ai.lostTargetAt, ai.losing
}

// Body returns controlled body.
func (ai *EnemyAI) Body() *model.Body {
	return ai.body
}

// Resolver returns the enemy's attack resolver (nil for harmless agents).
func (ai *EnemyAI) Resolver() *combat.Resolver {
	return ai.resolver
}

// Start starts the AI controller in Wander and subscribes to own death.
func (ai *EnemyAI) Start() {
	if ai.isRunning.Swap(true) {
		return
	}
	ai.state = model.StateWander
	ai.losing = false
	ai.pickWanderTarget(ai.clock.Now())

	if ai.bus != nil && ai.unsubscribe == nil {
		ai.unsubscribe = ai.bus.Subscribe(event.TypeDied, ai.body.ObjectID(), func(event.Event) {
			ai.onDeath()
		})
	}

	if IsDebugEnabled() {
		slog.Debug("enemy AI started",
			"enemy", ai.body.Name(),
			"objectID", ai.body.ObjectID(),
			"home", ai.home,
			"aggroRadius", ai.params.AggroRadius)
	}
}

// Stop stops the AI controller. State is kept as is.
func (ai *EnemyAI) Stop() {
	ai.isRunning.Store(false)
	if ai.unsubscribe != nil {
		ai.unsubscribe()
		ai.unsubscribe = nil
	}
	if ai.resolver != nil {
		ai.resolver.Cancel()
	}
	ai.body.ZeroVelocity()

	if IsDebugEnabled() {
		slog.Debug("enemy AI stopped",
			"enemy", ai.body.Name(),
			"objectID", ai.body.ObjectID())
	}
}

// IsRunning reports whether the controller is active.
func (ai *EnemyAI) IsRunning() bool {
	return ai.isRunning.Load()
}

// State returns current behaviour state.
func (ai *EnemyAI) State() model.AgentState {
	return ai.state
}

func (ai *EnemyAI) onDeath() {
	if !ai.isRunning.Load() {
		return
	}
	slog.Debug("enemy died, AI disabled",
		"enemy", ai.body.Name(),
		"objectID", ai.body.ObjectID(),
		"state", ai.state)
	ai.Stop()
}

// Tick performs one decision and movement step.
func (ai *EnemyAI) Tick(dt time.Duration) {
	if !ai.isRunning.Load() {
		return
	}
	if !ai.body.IsAlive() {
		// Died may still be queued on a deferred bus; freeze right away.
		if ai.resolver != nil {
			ai.resolver.Cancel()
		}
		ai.body.ZeroVelocity()
		return
	}

	now := ai.clock.Now()
	target, dist := ai.trackTarget()

	switch ai.state {
	case model.StateWander:
		if target != nil && dist <= ai.params.AggroRadius {
			ai.setState(model.StateChase)
			ai.losing = false
			ai.thinkChase(target, dt)
			return
		}
		ai.thinkWander(now, dt)

	case model.StateChase:
		if dist > ai.params.LoseAggroRadius {
			if !ai.losing {
				ai.losing = true
				ai.lostTargetAt = now
			}
			if now-ai.lostTargetAt >= ai.params.LoseDelay {
				ai.losing = false
				ai.setState(model.StateWander)
				ai.pickWanderTarget(now)
				ai.thinkWander(now, dt)
				return
			}
		} else {
			ai.losing = false
		}

		if target != nil {
			ai.thinkChase(target, dt)
		} else {
			ai.body.ZeroVelocity()
		}
	}
}

// trackTarget returns live target and its planar distance.
// Missing or dead target yields (nil, +Inf).
func (ai *EnemyAI) trackTarget() (*model.WorldObject, float64) {
	if ai.target == nil {
		return nil, math.Inf(1)
	}
	target := ai.target()
	if target == nil || !target.IsAlive() {
		return nil, math.Inf(1)
	}
	return target, ai.body.Location().PlanarDistance(target.Location())
}

// thinkChase moves toward target and starts a swing when within engage distance.
func (ai *EnemyAI) thinkChase(target *model.WorldObject, dt time.Duration) {
	// Face the target even when parked at stop distance: the swing
	// origin follows facing.
	toTarget, dist := ai.body.Location().PlanarDirection(target.Location())
	ai.body.MoveToward(target.Location(), ai.params.Speed, ai.params.StopDistance, dt)
	ai.body.TurnToward(toTarget, ai.params.TurnRate, dt)

	if ai.resolver == nil {
		return
	}
	profile := ai.resolver.Profile()
	if !combat.CanTarget(target, profile) || !combat.IsInEngageRange(ai.body.WorldObject, target, profile) {
		return
	}
	if ai.resolver.TryStart() {
		if IsDebugEnabled() {
			slog.Debug("enemy swing",
				"enemy", ai.body.Name(),
				"target", target.Name(),
				"distance", dist)
		}
	}
}

// thinkWander walks to the wander point, re-picking on arrival or timeout.
func (ai *EnemyAI) thinkWander(now, dt time.Duration) {
	if now >= ai.nextWanderTime ||
		ai.body.Location().PlanarDistance(ai.wanderTarget) <= wanderArriveTolerance {
		ai.pickWanderTarget(now)
	}

	dir, dist := ai.body.MoveToward(ai.wanderTarget, ai.params.Speed, 0, dt)
	if dist > 0 {
		ai.body.TurnToward(dir, ai.params.TurnRate, dt)
	}
}

// pickWanderTarget chooses a uniform point in the wander disc around home,
// clamped into the arena, and schedules the next forced re-pick.
func (ai *EnemyAI) pickWanderTarget(now time.Duration) {
	angle := ai.rng.Float64() * 2 * math.Pi
	r := ai.params.WanderRadius * math.Sqrt(ai.rng.Float64())
	p := ai.home.Add(model.HeadingVector(angle).Scale(r))
	if ai.bounds != nil {
		p = ai.bounds.Clamp(p, ai.params.WanderPadding)
	}
	ai.wanderTarget = p

	wait := ai.params.WanderWaitMin
	if span := ai.params.WanderWaitMax - ai.params.WanderWaitMin; span > 0 {
		wait += time.Duration(ai.rng.Int64N(int64(span) + 1))
	}
	ai.nextWanderTime = now + wait

	if IsDebugEnabled() {
		slog.Debug("wander target picked",
			"enemy", ai.body.Name(),
			"target", p,
			"next", ai.nextWanderTime)
	}
}

func (ai *EnemyAI) setState(state model.AgentState) {
	old := ai.state
	if old == state {
		return
	}
	ai.state = state

	if ai.bus != nil {
		ai.bus.Publish(event.Event{
			Type:   event.TypeStateChanged,
			Source: ai.body.ObjectID(),
			State:  state.String(),
		})
	}

	slog.Debug("enemy state changed",
		"enemy", ai.body.Name(),
		"objectID", ai.body.ObjectID(),
		"from", old,
		"to", state)
}
