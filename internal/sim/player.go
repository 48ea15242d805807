package sim

import (
	"math"
	"time"

	"github.com/udisondev/arena/internal/game/combat"
	"github.com/udisondev/arena/internal/model"
)

// MoverParams configure the player's top-down movement.
type MoverParams struct {
	Speed    float64
	TurnRate float64

	// Moving against facing (dot below BackpedalThreshold) uses
	// Speed*BackpedalSpeed and keeps facing unchanged.
	BackpedalSpeed     float64
	BackpedalThreshold float64
}

// Player is the input-driven agent: body, swing resolver and mover.
type Player struct {
	body     *model.Body
	resolver *combat.Resolver
	params   MoverParams
	input    model.Location
}

// NewPlayer creates player around body.
func NewPlayer(body *model.Body, resolver *combat.Resolver, params MoverParams) *Player {
	return &Player{
		body:     body,
		resolver: resolver,
		params:   params,
	}
}

// Body returns player body.
func (p *Player) Body() *model.Body {
	return p.body
}

// Resolver returns player's attack resolver.
func (p *Player) Resolver() *combat.Resolver {
	return p.resolver
}

// Input returns current normalized movement input.
func (p *Player) Input() model.Location {
	return p.input
}

// SetInput sets movement input direction on the plane. Longer vectors are
// normalized; tiny ones stop the player.
func (p *Player) SetInput(dir model.Location) {
	dir = dir.Planar()
	l := dir.PlanarLength()
	switch {
	case l < 1e-3:
		p.input = model.Location{}
	case l > 1:
		p.input = dir.Scale(1 / l)
	default:
		p.input = dir
	}
}

// Tick moves the player along input.
func (p *Player) Tick(dt time.Duration) {
	if !p.body.IsAlive() || dt <= 0 {
		p.body.ZeroVelocity()
		return
	}
	if p.input == (model.Location{}) {
		p.body.ZeroVelocity()
		return
	}

	forward := p.body.Forward()
	dot := forward.X*p.input.X + forward.Y*p.input.Y
	movingBack := p.params.BackpedalSpeed > 0 && dot < p.params.BackpedalThreshold

	speed := p.params.Speed
	if movingBack {
		speed *= p.params.BackpedalSpeed
	}

	v := p.input.Scale(speed)
	p.body.SetVelocity(v)
	p.body.Integrate(dt)

	if !movingBack {
		p.body.TurnToward(p.input, p.params.TurnRate, dt)
	}
}

// Speed returns current planar speed.
func (p *Player) Speed() float64 {
	v := p.body.Velocity()
	return math.Hypot(v.X, v.Y)
}
