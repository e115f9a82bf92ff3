// Package world runs the level simulation: the player, placed entities and
// the camera following the player.
package world

import (
	"time"

	"github.com/Faultbox/project-tails/internal/config"
	"github.com/Faultbox/project-tails/internal/engine/camera"
	"github.com/Faultbox/project-tails/internal/level"
	"github.com/Faultbox/project-tails/pkg/math"
)

// World is the running state of a level.
type World struct {
	Level    *level.Level
	Player   *Player
	Entities []*Entity
	Camera   *camera.Camera

	ticks uint64
}

// Options configure a new world.
type Options struct {
	Physics      config.PhysicsConfig
	PlayerSprite string
	Spawn        math.Vec2
	ViewWidth    int
	ViewHeight   int
}

// New creates the world for a loaded level. Entity animations come from src;
// a nil src spawns entities without animation.
func New(lvl *level.Level, src AnimationSource, opts Options) (*World, error) {
	entities, err := SpawnEntities(lvl.Act.Entities, src)
	if err != nil {
		return nil, err
	}

	cam := camera.New(opts.ViewWidth, opts.ViewHeight)
	cam.SetBounds(lvl.PixelSize())

	w := &World{
		Level:    lvl,
		Player:   NewPlayer(opts.Spawn, opts.PlayerSprite, opts.Physics),
		Entities: entities,
		Camera:   cam,
	}
	cam.Follow(w.Player.Position)
	return w, nil
}

// Tick advances the world by one fixed step and returns what happened.
func (w *World) Tick(dt time.Duration, keys Controls) []Event {
	w.ticks++
	events := w.Player.Update(dt, keys, w.Level.Terrain)
	for _, e := range w.Entities {
		e.Update(dt)
	}
	w.Camera.Follow(w.Player.Position)
	return events
}

// Ticks returns the number of ticks run so far.
func (w *World) Ticks() uint64 {
	return w.ticks
}
