package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"path"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/Faultbox/project-tails/pkg/terrain"
)

// ErrUnsupportedImage is returned for image files that are neither PNG nor BMP.
var ErrUnsupportedImage = errors.New("unsupported image format")

// IsImageFile reports whether name has an image extension the catalog decodes.
func IsImageFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".png", ".bmp":
		return true
	}
	return false
}

// DecodeImage decodes PNG or BMP data, chosen by the extension of name.
func DecodeImage(name string, data []byte) (image.Image, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return png.Decode(bytes.NewReader(data))
	case ".bmp":
		return bmp.Decode(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, name)
	}
}

// Tileset is a sheet of 16x16 graphics tiles laid out in rows.
type Tileset struct {
	Image       image.Image
	TilesPerRow int
}

// TileRect returns the source rectangle of graphics tile id, relative to the
// sheet bounds. ok is false when the tile lies below the sheet.
func (t Tileset) TileRect(id int) (image.Rectangle, bool) {
	if id < 0 || t.TilesPerRow <= 0 {
		return image.Rectangle{}, false
	}
	b := t.Image.Bounds()
	x := b.Min.X + (id%t.TilesPerRow)*terrain.TileSize
	y := b.Min.Y + (id/t.TilesPerRow)*terrain.TileSize
	if y >= b.Max.Y {
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+terrain.TileSize, y+terrain.TileSize), true
}

// ComposeBlock draws the graphics layers of a block into one 128x128 image,
// later layers on top. Each tile is mirrored when FlipX is set and rotated
// clockwise by Rotation quarter turns. Tiles outside the sheet are skipped.
// Collision layers are never drawn.
func ComposeBlock(block terrain.Block, ts Tileset) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, terrain.BlockSize, terrain.BlockSize))
	tile := image.NewNRGBA(image.Rect(0, 0, terrain.TileSize, terrain.TileSize))

	for li := range block.Graphics {
		layer := &block.Graphics[li]
		for i, ref := range layer {
			src, ok := ts.TileRect(ref.Index)
			if !ok {
				continue
			}

			clear(tile.Pix)
			draw.Copy(tile, image.Point{}, ts.Image, src, draw.Src, nil)
			oriented := orientTile(tile, ref.FlipX, ref.Rotation)

			col, row := i%terrain.BlockTiles, i/terrain.BlockTiles
			at := image.Pt(col*terrain.TileSize, row*terrain.TileSize)
			draw.Draw(dst, oriented.Bounds().Add(at), oriented, image.Point{}, draw.Over)
		}
	}
	return dst
}

// orientTile returns a mirrored and rotated copy of a square tile.
func orientTile(src *image.NRGBA, flipX bool, rotation uint32) *image.NRGBA {
	if !flipX && rotation%4 == 0 {
		return src
	}

	n := terrain.TileSize
	out := image.NewNRGBA(src.Bounds())
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			sx := x
			if flipX {
				sx = n - 1 - x
			}
			dx, dy := rotate(sx, y, n, rotation)
			out.SetNRGBA(dx, dy, src.NRGBAAt(x, y))
		}
	}
	return out
}

// rotate maps (x, y) in an n*n square by quarter clockwise turns.
func rotate(x, y, n int, rotation uint32) (int, int) {
	switch rotation % 4 {
	case 1:
		return n - 1 - y, x
	case 2:
		return n - 1 - x, n - 1 - y
	case 3:
		return y, n - 1 - x
	default:
		return x, y
	}
}
