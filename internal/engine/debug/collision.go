package debug

import (
	"image"

	"github.com/Faultbox/project-tails/pkg/terrain"
)

// CollisionRects returns the solid parts of the collision layer inside view,
// in world pixels. Neighbouring tile columns of equal height share one
// rectangle. Blocks without the layer are skipped.
func CollisionRects(t *terrain.Terrain, view image.Rectangle, layer int) []image.Rectangle {
	w, h := t.Grid().PixelSize()
	view = view.Intersect(image.Rect(0, 0, w, h))
	if view.Empty() || layer < 0 {
		return nil
	}

	blocks := t.Blocks()
	var rects []image.Rectangle
	for ty := view.Min.Y / terrain.TileSize; ty*terrain.TileSize < view.Max.Y; ty++ {
		for tx := view.Min.X / terrain.TileSize; tx*terrain.TileSize < view.Max.X; tx++ {
			x0, y0 := tx*terrain.TileSize, ty*terrain.TileSize

			cell := t.Grid().Cell(x0/terrain.BlockSize, y0/terrain.BlockSize)
			if !cell.Present || cell.BlockID >= len(blocks) || layer >= len(blocks[cell.BlockID].Collision) {
				continue
			}
			tile, ok := t.TileAt(x0, y0, layer)
			if !ok {
				continue
			}
			rects = appendColumns(rects, tile, x0, y0)
		}
	}
	return rects
}

// appendColumns adds one rectangle per run of equal non-zero column heights.
func appendColumns(rects []image.Rectangle, tile terrain.CollisionTile, x0, y0 int) []image.Rectangle {
	bottom := y0 + terrain.TileSize
	for c := 0; c < terrain.TileSize; {
		height := min(int(tile.Heights[c]), terrain.TileSize)
		end := c + 1
		for end < terrain.TileSize && min(int(tile.Heights[end]), terrain.TileSize) == height {
			end++
		}
		if height > 0 {
			rects = append(rects, image.Rect(x0+c, bottom-height, x0+end, bottom))
		}
		c = end
	}
	return rects
}
