package terrain

import (
	"fmt"

	"go.uber.org/multierr"
)

// Terrain resolves world pixel coordinates to collision data.
// It only reads the catalogs it is built from; they must not change after New.
type Terrain struct {
	blocks BlockCatalog
	tiles  []CollisionTile
	grid   Grid
}

// New creates a terrain over a block catalog, the decoded collision tiles and a placement grid.
func New(blocks BlockCatalog, tiles []CollisionTile, grid Grid) *Terrain {
	return &Terrain{
		blocks: blocks,
		tiles:  tiles,
		grid:   grid,
	}
}

// Grid returns the placement grid.
func (t *Terrain) Grid() *Grid {
	return &t.grid
}

// Blocks returns the block catalog.
func (t *Terrain) Blocks() BlockCatalog {
	return t.blocks
}

// Tiles returns the decoded collision tiles.
func (t *Terrain) Tiles() []CollisionTile {
	return t.tiles
}

// Contains reports whether (x, y) lies inside the level.
func (t *Terrain) Contains(x, y int) bool {
	w, h := t.grid.PixelSize()
	return x >= 0 && y >= 0 && x < w && y < h
}

// Column returns the pixel column inside a tile that holds world x.
func (t *Terrain) Column(x int) int {
	return x % TileSize
}

// TileAt returns the collision tile covering (x, y) on the given collision layer.
//
// The bool is false outside the level and over empty cells. Blocks placed with a
// flip flag address their tile columns mirrored, and the returned heights are
// reversed when exactly one of the block and the tile reference is flipped.
// Tile rotation is not applied.
//
// TileAt panics if the block has no such layer or the tile reference does not
// point into the collision tile sequence; Validate reports both at load time.
func (t *Terrain) TileAt(x, y, layer int) (CollisionTile, bool) {
	if !t.Contains(x, y) {
		return CollisionTile{}, false
	}

	cell := t.grid.Cell(x/BlockSize, y/BlockSize)
	if !cell.Present {
		return CollisionTile{}, false
	}

	tileX := (x % BlockSize) / TileSize
	tileY := (y % BlockSize) / TileSize
	if cell.Flipped() {
		tileX = BlockTiles - 1 - tileX
	}

	block := &t.blocks[cell.BlockID]
	ref := block.CollisionLayer(layer).At(tileX, tileY)

	idx := ref.CollisionIndex()
	if idx < 0 || idx >= len(t.tiles) {
		panic(fmt.Sprintf("terrain: block %d references tile %d, outside collision tiles [%d, %d)",
			cell.BlockID, ref.Index, CollisionTileOffset, CollisionTileOffset+len(t.tiles)))
	}

	tile := t.tiles[idx]
	if cell.Flipped() != ref.FlipX {
		tile = tile.Mirrored()
	}
	return tile, true
}

// IsOccupied reports whether pixel (x, y) is solid on the given collision layer.
// A pixel row counts as solid once the column height measured from the tile
// bottom reaches it.
func (t *Terrain) IsOccupied(x, y, layer int) bool {
	tile, ok := t.TileAt(x, y, layer)
	if !ok {
		return false
	}
	px := x % TileSize
	py := y % TileSize
	return uint32(py)+tile.Heights[px] >= TileSize
}

// Validate checks that every placed block exists and that every collision tile
// reference of a placed block resolves to a decoded tile. All problems found are
// returned together.
func (t *Terrain) Validate() error {
	var err error

	if t.grid.Width < 0 || (t.grid.Width == 0 && len(t.grid.Cells) > 0) {
		return fmt.Errorf("invalid grid width %d for %d cells", t.grid.Width, len(t.grid.Cells))
	}
	if t.grid.Width > 0 && len(t.grid.Cells)%t.grid.Width != 0 {
		err = multierr.Append(err, fmt.Errorf("grid has %d cells, not a multiple of width %d", len(t.grid.Cells), t.grid.Width))
	}

	used := make(map[int]bool)
	for i, cell := range t.grid.Cells {
		if !cell.Present {
			continue
		}
		if cell.BlockID < 0 || cell.BlockID >= len(t.blocks) {
			err = multierr.Append(err, fmt.Errorf("cell (%d, %d) references block %d, catalog has %d",
				i%t.grid.Width, i/t.grid.Width, cell.BlockID, len(t.blocks)))
			continue
		}
		used[cell.BlockID] = true
	}

	for id := range t.blocks {
		if !used[id] {
			continue
		}
		block := &t.blocks[id]
		if len(block.Collision) == 0 {
			err = multierr.Append(err, fmt.Errorf("block %d has no collision layer", id))
		}
		for li := range block.Collision {
			for ti, ref := range block.Collision[li] {
				idx := ref.CollisionIndex()
				if idx < 0 || idx >= len(t.tiles) {
					err = multierr.Append(err, fmt.Errorf("block %d layer %d tile %d: index %d outside [%d, %d)",
						id, li, ti, ref.Index, CollisionTileOffset, CollisionTileOffset+len(t.tiles)))
				}
			}
		}
	}

	return err
}
