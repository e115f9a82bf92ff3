// Package camera provides the 2D view onto the level.
package camera

import (
	"image"

	"github.com/Faultbox/project-tails/pkg/math"
)

// Camera maps world pixels to screen pixels. Position is the world point drawn
// at the top-left corner of the view.
type Camera struct {
	Position math.Vec2

	viewW, viewH   int
	worldW, worldH int
}

// New creates a camera for a view of the given size with no world bounds.
func New(viewW, viewH int) *Camera {
	return &Camera{viewW: viewW, viewH: viewH}
}

// SetBounds limits the camera to a world of the given size in pixels.
// A zero size removes the limit on that axis.
func (c *Camera) SetBounds(worldW, worldH int) {
	c.worldW, c.worldH = worldW, worldH
	c.clamp()
}

// Resize changes the view size.
func (c *Camera) Resize(viewW, viewH int) {
	c.viewW, c.viewH = viewW, viewH
	c.clamp()
}

// ViewSize returns the view size.
func (c *Camera) ViewSize() (int, int) {
	return c.viewW, c.viewH
}

// Follow centres the view on target, staying inside the world bounds.
func (c *Camera) Follow(target math.Vec2) {
	c.Position = math.Vec2{
		X: target.X - float64(c.viewW)/2,
		Y: target.Y - float64(c.viewH)/2,
	}
	c.clamp()
}

func (c *Camera) clamp() {
	c.Position.X = clampAxis(c.Position.X, c.viewW, c.worldW)
	c.Position.Y = clampAxis(c.Position.Y, c.viewH, c.worldH)
}

// clampAxis keeps [pos, pos+view) inside [0, world). Worlds smaller than the
// view pin to 0.
func clampAxis(pos float64, view, world int) float64 {
	if world <= 0 {
		return pos
	}
	limit := float64(world - view)
	if pos > limit {
		pos = limit
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}

// ToScreen converts a world position to screen pixels.
func (c *Camera) ToScreen(p math.Vec2) (int, int) {
	return p.Sub(c.Position).Point()
}

// View returns the visible world rectangle.
func (c *Camera) View() image.Rectangle {
	x, y := c.Position.Point()
	return image.Rect(x, y, x+c.viewW, y+c.viewH)
}

// Visible reports whether any part of the world rectangle r is on screen.
func (c *Camera) Visible(r image.Rectangle) bool {
	return r.Overlaps(c.View())
}
