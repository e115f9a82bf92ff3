package terrain

import (
	"image"
	"image/color"
)

// PixelFormat describes how colour channels are packed into a pixel value.
type PixelFormat struct {
	Rmask  uint32
	Gmask  uint32
	Bmask  uint32
	Gshift uint8
}

// ColorMask returns the union of the red, green and blue channel masks.
func (f PixelFormat) ColorMask() uint32 {
	return f.Rmask | f.Gmask | f.Bmask
}

// RGB888 is the packed 0xRRGGBB layout produced by ImageBitmap.
var RGB888 = PixelFormat{
	Rmask:  0x00FF0000,
	Gmask:  0x0000FF00,
	Bmask:  0x000000FF,
	Gshift: 8,
}

// Bitmap is a readable pixel surface with a packed colour format.
type Bitmap interface {
	Size() (w, h int)
	Format() PixelFormat
	// Pixel returns the packed pixel value at (x, y), origin top-left.
	Pixel(x, y int) uint32
}

// ImageBitmap adapts an image.Image to the RGB888 packed format.
type ImageBitmap struct {
	img image.Image
}

// NewImageBitmap wraps img.
func NewImageBitmap(img image.Image) *ImageBitmap {
	return &ImageBitmap{img: img}
}

// Size returns the image dimensions.
func (b *ImageBitmap) Size() (int, int) {
	r := b.img.Bounds()
	return r.Dx(), r.Dy()
}

// Format returns RGB888.
func (b *ImageBitmap) Format() PixelFormat {
	return RGB888
}

// Pixel returns the non-premultiplied colour at (x, y) packed as 0xRRGGBB.
// Alpha is ignored: a fully transparent pixel with colour bits still counts as ink.
func (b *ImageBitmap) Pixel(x, y int) uint32 {
	origin := b.img.Bounds().Min
	c := color.NRGBAModel.Convert(b.img.At(origin.X+x, origin.Y+y)).(color.NRGBA)
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// DecodeCollisionMap converts a collision bitmap into collision tiles.
//
// The bitmap is cut into 16x16 cells scanned row-major from the top-left corner;
// partial cells at the right and bottom edges are ignored and at most
// MaxCollisionTiles tiles are produced. Within a cell, each pixel column is
// scanned top to bottom for the first pixel with any colour bit set. A hit on
// local row y gives the column a height of 16-y, no hit gives 0.
//
// The tile angle is the green channel of the hit pixel. Every column with a hit
// overwrites it, so the rightmost column with ink decides the stored angle.
func DecodeCollisionMap(b Bitmap) []CollisionTile {
	format := b.Format()
	mask := format.ColorMask()
	if mask == 0 {
		panic("terrain: collision bitmap format has an empty colour mask")
	}

	w, h := b.Size()
	cols, rows := w/TileSize, h/TileSize

	count := cols * rows
	if count > MaxCollisionTiles {
		count = MaxCollisionTiles
	}
	tiles := make([]CollisionTile, 0, count)

	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			if len(tiles) == MaxCollisionTiles {
				return tiles
			}
			tiles = append(tiles, decodeCell(b, format, mask, cx*TileSize, cy*TileSize))
		}
	}

	return tiles
}

// decodeCell derives one tile from the 16x16 cell whose top-left pixel is (ox, oy).
func decodeCell(b Bitmap, format PixelFormat, mask uint32, ox, oy int) CollisionTile {
	var tile CollisionTile

	for col := 0; col < TileSize; col++ {
		for row := 0; row < TileSize; row++ {
			pixel := b.Pixel(ox+col, oy+row)
			if pixel&mask == 0 {
				continue
			}
			tile.Heights[col] = uint32(TileSize - row)
			tile.Angle = uint8((pixel & format.Gmask) >> format.Gshift)
			break
		}
	}

	return tile
}
