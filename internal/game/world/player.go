package world

import (
	gomath "math"
	"time"

	"github.com/Faultbox/project-tails/internal/config"
	"github.com/Faultbox/project-tails/pkg/formats"
	"github.com/Faultbox/project-tails/pkg/math"
	"github.com/Faultbox/project-tails/pkg/terrain"
)

// Player idle animation, relative to the player sprite directory.
const (
	idleSheet  = "Idle"
	idleFrames = 5
	idleDelay  = 200 * time.Millisecond
)

// Event is something that happened during a tick.
type Event int

// Tick events.
const (
	EventJumped Event = iota + 1
	EventLanded
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case EventJumped:
		return "jump"
	case EventLanded:
		return "land"
	default:
		return "none"
	}
}

// GroundFinder locates the ground surface below a point.
type GroundFinder interface {
	FindGround(pos math.Vec2, xRadius float64) (terrain.Ground, bool)
}

// Player is the controllable body. Position is the bottom of the sprite.
type Player struct {
	Position math.Vec2
	Velocity math.Vec2
	OnGround bool
	Angle    uint8 // Surface angle of the last ground contact

	Anim    *Animation
	physics config.PhysicsConfig
}

// NewPlayer creates a player at spawn using sprite as the animation directory.
func NewPlayer(spawn math.Vec2, sprite string, physics config.PhysicsConfig) *Player {
	return &Player{
		Position: spawn,
		Anim: NewAnimation(formats.AnimationDef{
			Sheet:  sprite + "/" + idleSheet,
			Delay:  idleDelay,
			Frames: idleFrames,
		}),
		physics: physics,
	}
}

// Update runs one fixed tick: move, apply gravity and input, then rest on the
// ground found below the player. Only the vertical axis collides.
func (p *Player) Update(dt time.Duration, keys Controls, ground GroundFinder) []Event {
	var events []Event
	ph := &p.physics

	p.Position = p.Position.Add(p.Velocity)

	p.Velocity.Y += ph.Gravity
	if p.Velocity.Y >= ph.MaxFallSpeed {
		p.Velocity.Y = ph.MaxFallSpeed
	}

	switch {
	case keys.Held(KeyRight):
		p.Velocity.X += ph.Acceleration
	case keys.Held(KeyLeft):
		p.Velocity.X -= ph.Acceleration
	case gomath.Abs(p.Velocity.X) >= ph.Friction:
		p.Velocity.X -= gomath.Copysign(ph.Friction, p.Velocity.X)
	default:
		p.Velocity.X = 0
	}

	if keys.Pressed(KeyJump) {
		p.Velocity.Y = ph.JumpVelocity
		events = append(events, EventJumped)
	}

	p.Anim.Update(dt)

	floor := ph.FloorLimit
	if g, ok := ground.FindGround(p.Position, ph.GroundRadius); ok && g.SurfaceY < floor {
		floor = g.SurfaceY
		p.Angle = g.Angle
	}

	wasOnGround := p.OnGround
	p.OnGround = p.Position.Y >= floor
	if p.OnGround {
		p.Position.Y = floor
		if p.Velocity.Y > 0 {
			p.Velocity.Y = 0
		}
		if !wasOnGround {
			events = append(events, EventLanded)
		}
	}

	return events
}

// Physics returns the body constants the player moves with.
func (p *Player) Physics() config.PhysicsConfig {
	return p.physics
}
