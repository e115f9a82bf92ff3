package world

import (
	"errors"
	"fmt"
	"time"

	"github.com/Faultbox/project-tails/pkg/formats"
)

// ErrUnknownEntityKind is returned when an act places an entity kind with no
// entity data record.
var ErrUnknownEntityKind = errors.New("unknown entity kind")

// AnimationSource resolves the animations of an entity kind.
type AnimationSource interface {
	Animations(kind string) ([]formats.AnimationDef, bool)
}

// Entity is a placed object. Its position is the top-left corner of its sprite.
type Entity struct {
	formats.Entity

	// Anim plays the first animation of the kind; nil for marker entities.
	Anim *Animation
}

// SpawnEntities creates runtime entities for the act placements. A nil source
// spawns every entity without animation.
func SpawnEntities(placed []formats.Entity, src AnimationSource) ([]*Entity, error) {
	entities := make([]*Entity, 0, len(placed))
	for _, p := range placed {
		e := &Entity{Entity: p}
		if src != nil {
			anims, ok := src.Animations(p.Kind)
			if !ok {
				return nil, fmt.Errorf("%w: %q at (%g, %g)", ErrUnknownEntityKind, p.Kind, p.Position.X, p.Position.Y)
			}
			if len(anims) > 0 {
				e.Anim = NewAnimation(anims[0])
			}
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// Update advances the entity animation.
func (e *Entity) Update(dt time.Duration) {
	if e.Anim != nil {
		e.Anim.Update(dt)
	}
}
