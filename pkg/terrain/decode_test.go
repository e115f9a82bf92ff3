package terrain

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ink = color.NRGBA{R: 0xFF, A: 0xFF}

// paintColumn fills pixel column x over rows [y0, y1).
func paintColumn(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	for y := y0; y < y1; y++ {
		img.SetNRGBA(x, y, c)
	}
}

func TestDecodeCollisionMap_TileCount(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		want int
	}{
		{"exact cells", 48, 32, 6},
		{"partial cells ignored", 40, 20, 2},
		{"too small", 15, 64, 0},
		{"exactly the cap", 256, 256, 256},
		{"over the cap", 272, 256, 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewNRGBA(image.Rect(0, 0, tt.w, tt.h))
			tiles := DecodeCollisionMap(NewImageBitmap(img))
			assert.Len(t, tiles, tt.want)
		})
	}
}

func TestDecodeCollisionMap_Heights(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	paintColumn(img, 0, 0, 16, ink)  // full column
	paintColumn(img, 3, 10, 16, ink) // 6 pixels tall
	paintColumn(img, 7, 15, 16, ink) // single bottom pixel
	img.SetNRGBA(9, 4, ink)          // floating pixel, gap below
	paintColumn(img, 9, 12, 16, ink)

	tiles := DecodeCollisionMap(NewImageBitmap(img))
	require.Len(t, tiles, 1)

	want := [16]uint32{}
	want[0] = 16
	want[3] = 6
	want[7] = 1
	want[9] = 12
	assert.Equal(t, want, tiles[0].Heights)
}

func TestDecodeCollisionMap_RowMajorOrder(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	paintColumn(img, 16, 0, 16, ink) // cell (1, 0), column 0
	paintColumn(img, 5, 24, 32, ink) // cell (0, 1), column 5

	tiles := DecodeCollisionMap(NewImageBitmap(img))
	require.Len(t, tiles, 4)

	assert.Equal(t, uint32(0), tiles[0].Heights[0])
	assert.Equal(t, uint32(16), tiles[1].Heights[0])
	assert.Equal(t, uint32(8), tiles[2].Heights[5])
	assert.Equal(t, [16]uint32{}, tiles[3].Heights)
}

func TestDecodeCollisionMap_AngleFromLastColumn(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	paintColumn(img, 2, 8, 16, color.NRGBA{G: 0x10, A: 0xFF})
	paintColumn(img, 9, 12, 16, color.NRGBA{R: 0x80, G: 0x20, A: 0xFF})
	// Lower pixels of the last column never reach the angle: only the first hit counts.
	img.SetNRGBA(9, 15, color.NRGBA{G: 0x30, A: 0xFF})

	tiles := DecodeCollisionMap(NewImageBitmap(img))
	require.Len(t, tiles, 1)
	assert.Equal(t, uint8(0x20), tiles[0].Angle)
}

func TestDecodeCollisionMap_EmptyTileHasNoAngle(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	tiles := DecodeCollisionMap(NewImageBitmap(img))
	require.Len(t, tiles, 1)
	assert.Equal(t, CollisionTile{}, tiles[0])
}

// packedBitmap is a bitmap with an arbitrary pixel format.
type packedBitmap struct {
	w, h   int
	format PixelFormat
	pixels []uint32
}

func newPackedBitmap(w, h int, f PixelFormat) *packedBitmap {
	return &packedBitmap{w: w, h: h, format: f, pixels: make([]uint32, w*h)}
}

func (b *packedBitmap) Size() (int, int)       { return b.w, b.h }
func (b *packedBitmap) Format() PixelFormat    { return b.format }
func (b *packedBitmap) Pixel(x, y int) uint32  { return b.pixels[y*b.w+x] }
func (b *packedBitmap) set(x, y int, v uint32) { b.pixels[y*b.w+x] = v }

func TestDecodeCollisionMap_PixelFormat(t *testing.T) {
	// RGB565
	format := PixelFormat{Rmask: 0xF800, Gmask: 0x07E0, Bmask: 0x001F, Gshift: 5}
	b := newPackedBitmap(16, 16, format)
	b.set(4, 2, 0x2A<<5)
	b.set(6, 0, 0x10000) // outside every channel mask, not ink

	tiles := DecodeCollisionMap(b)
	require.Len(t, tiles, 1)
	assert.Equal(t, uint32(14), tiles[0].Heights[4])
	assert.Equal(t, uint32(0), tiles[0].Heights[6])
	assert.Equal(t, uint8(0x2A), tiles[0].Angle)
}

func TestDecodeCollisionMap_EmptyMaskPanics(t *testing.T) {
	b := newPackedBitmap(16, 16, PixelFormat{})
	assert.Panics(t, func() { DecodeCollisionMap(b) })
}

func TestImageBitmap_SubImageOrigin(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	img.SetNRGBA(20, 20, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	sub := img.SubImage(image.Rect(16, 16, 32, 32))

	b := NewImageBitmap(sub)
	w, h := b.Size()
	assert.Equal(t, 16, w)
	assert.Equal(t, 16, h)
	assert.Equal(t, uint32(0x010203), b.Pixel(4, 4))
}
