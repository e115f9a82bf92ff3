// Package terrain answers solid-surface queries against a block based 2D level.
//
// A level is a grid of 128x128 pixel blocks. Each block is an 8x8 arrangement of
// 16x16 pixel tiles, and every collision tile carries a per-column height map and
// a single surface angle byte decoded from the collision bitmap.
package terrain

import "fmt"

// Geometry constants.
const (
	TileSize   = 16                      // Pixels per tile edge
	BlockTiles = 8                       // Tiles per block edge
	BlockSize  = TileSize * BlockTiles   // Pixels per block edge (128)
	LayerTiles = BlockTiles * BlockTiles // Tile references per block layer (64)
)

// CollisionTileOffset separates graphics tile ids from collision tile ids in the
// shared tile id space. Collision tile n is referenced as n+CollisionTileOffset.
const CollisionTileOffset = 340

// MaxCollisionTiles caps the number of tiles decoded from one collision bitmap.
const MaxCollisionTiles = 256

// CollisionTile is the collision descriptor of one 16x16 tile.
type CollisionTile struct {
	// Heights[c] is the filled pixel count of column c measured from the tile bottom (0-16).
	Heights [TileSize]uint32
	// Angle is the surface slope id taken from the green channel of the bitmap.
	Angle uint8
}

// Mirrored returns the tile with its column order reversed.
func (t CollisionTile) Mirrored() CollisionTile {
	out := t
	for c := 0; c < TileSize; c++ {
		out.Heights[c] = t.Heights[TileSize-1-c]
	}
	return out
}

// TileRef references a tile from within a block layer.
type TileRef struct {
	Index    int
	Rotation uint32
	FlipX    bool
}

// CollisionIndex returns the index into the decoded collision tile sequence.
// The result is negative for graphics tile ids.
func (r TileRef) CollisionIndex() int {
	return r.Index - CollisionTileOffset
}

// Layer is one 8x8 layer of tile references in row-major order.
type Layer [LayerTiles]TileRef

// At returns the reference at tile column tx and row ty.
func (l *Layer) At(tx, ty int) TileRef {
	return l[ty*BlockTiles+tx]
}

// Block is a reusable 8x8 tile structural unit.
// Graphics layers are only used for rendering; collision layers feed queries.
type Block struct {
	Graphics  []Layer
	Collision []Layer
}

// CollisionLayer returns collision layer i. It panics if the layer does not exist.
func (b *Block) CollisionLayer(i int) *Layer {
	if i < 0 || i >= len(b.Collision) {
		panic(fmt.Sprintf("terrain: collision layer %d out of range (block has %d)", i, len(b.Collision)))
	}
	return &b.Collision[i]
}

// BlockCatalog holds every block of a level, indexed by block id.
type BlockCatalog []Block

// Cell is one placement in the level grid.
type Cell struct {
	BlockID int
	Flags   uint32
	Present bool
}

// Flipped reports whether the block is placed horizontally mirrored.
// Only "non-zero" is interpreted; individual bits carry no meaning yet.
func (c Cell) Flipped() bool {
	return c.Flags != 0
}

// Place returns an occupied cell.
func Place(blockID int, flags uint32) Cell {
	return Cell{BlockID: blockID, Flags: flags, Present: true}
}

// Grid is the level placement grid in row-major order.
type Grid struct {
	Width int
	Cells []Cell
}

// NewGrid creates an empty grid of the given size in blocks.
func NewGrid(width, height int) Grid {
	return Grid{
		Width: width,
		Cells: make([]Cell, width*height),
	}
}

// Height returns the number of block rows.
func (g *Grid) Height() int {
	if g.Width == 0 {
		return 0
	}
	return len(g.Cells) / g.Width
}

// Cell returns the cell at block coordinates (bx, by).
// Returns an empty cell if the coordinates are out of bounds.
func (g *Grid) Cell(bx, by int) Cell {
	if bx < 0 || by < 0 || bx >= g.Width || by >= g.Height() {
		return Cell{}
	}
	return g.Cells[by*g.Width+bx]
}

// Set places a cell at block coordinates (bx, by).
func (g *Grid) Set(bx, by int, c Cell) {
	g.Cells[by*g.Width+bx] = c
}

// PixelSize returns the level size in pixels.
func (g *Grid) PixelSize() (w, h int) {
	return g.Width * BlockSize, g.Height() * BlockSize
}
