package world

import (
	"image"
	"time"

	"github.com/Faultbox/project-tails/pkg/formats"
)

// Animation steps through the frames of a horizontal sprite sheet.
type Animation struct {
	Def     formats.AnimationDef
	frame   int
	elapsed time.Duration
}

// NewAnimation starts an animation at frame 0.
func NewAnimation(def formats.AnimationDef) *Animation {
	if def.Frames < 1 {
		def.Frames = 1
	}
	return &Animation{Def: def}
}

// Update advances one frame once more than the frame delay has passed.
// A zero delay advances every update.
func (a *Animation) Update(dt time.Duration) {
	a.elapsed += dt
	if a.elapsed > a.Def.Delay {
		a.frame = (a.frame + 1) % a.Def.Frames
		a.elapsed = 0
	}
}

// Frame returns the current frame index.
func (a *Animation) Frame() int {
	return a.frame
}

// FrameRect returns the part of the sheet showing the current frame. Frames
// split the sheet width evenly.
func (a *Animation) FrameRect(sheet image.Rectangle) image.Rectangle {
	w := sheet.Dx() / a.Def.Frames
	x := sheet.Min.X + w*a.frame
	return image.Rect(x, sheet.Min.Y, x+w, sheet.Max.Y)
}
