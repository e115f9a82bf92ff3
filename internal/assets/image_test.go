package assets

import (
	"image"
	"image/color"
	"testing"

	"github.com/Faultbox/project-tails/pkg/terrain"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// testTileset is a 2x2 sheet: red, green, blue with a white top-left pixel, transparent.
func testTileset() Tileset {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	fill := func(x0, y0 int, c color.NRGBA) {
		for y := y0; y < y0+16; y++ {
			for x := x0; x < x0+16; x++ {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	fill(0, 0, red)
	fill(16, 0, green)
	fill(0, 16, blue)
	img.SetNRGBA(0, 16, white)
	return Tileset{Image: img, TilesPerRow: 2}
}

func TestTileset_TileRect(t *testing.T) {
	ts := testTileset()

	tests := []struct {
		id   int
		want image.Rectangle
		ok   bool
	}{
		{0, image.Rect(0, 0, 16, 16), true},
		{1, image.Rect(16, 0, 32, 16), true},
		{3, image.Rect(16, 16, 32, 32), true},
		{4, image.Rectangle{}, false},
		{-1, image.Rectangle{}, false},
	}
	for _, tt := range tests {
		got, ok := ts.TileRect(tt.id)
		if ok != tt.ok || got != tt.want {
			t.Errorf("TileRect(%d) = %v, %v; expected %v, %v", tt.id, got, ok, tt.want, tt.ok)
		}
	}
}

func TestComposeBlock(t *testing.T) {
	var base, overlay, collision terrain.Layer
	base[1] = terrain.TileRef{Index: 2, FlipX: true}
	base[2] = terrain.TileRef{Index: 2, Rotation: 2}
	base[3] = terrain.TileRef{Index: 2, Rotation: 1}
	base[8] = terrain.TileRef{Index: 99}

	for i := range overlay {
		overlay[i] = terrain.TileRef{Index: 3}
	}
	overlay[8] = terrain.TileRef{Index: 1}

	for i := range collision {
		collision[i] = terrain.TileRef{Index: 1}
	}

	block := terrain.Block{
		Graphics:  []terrain.Layer{base, overlay},
		Collision: []terrain.Layer{collision},
	}

	img := ComposeBlock(block, testTileset())

	if b := img.Bounds(); b.Dx() != terrain.BlockSize || b.Dy() != terrain.BlockSize {
		t.Fatalf("unexpected size %v", b)
	}

	tests := []struct {
		name string
		x, y int
		want color.NRGBA
	}{
		{"base tile under transparent overlay", 5, 5, red},
		{"last tile of base layer", 127, 127, red},
		{"flipped marker", 31, 0, white},
		{"flipped body", 16, 0, blue},
		{"half turn marker", 47, 15, white},
		{"half turn body", 32, 0, blue},
		{"quarter turn marker", 63, 0, white},
		{"quarter turn body", 48, 0, blue},
		{"overlay over skipped tile", 3, 20, green},
	}
	for _, tt := range tests {
		if got := img.NRGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("%s: pixel (%d,%d) = %v, expected %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}
}

func TestComposeBlock_SkippedTileStaysTransparent(t *testing.T) {
	var layer terrain.Layer
	for i := range layer {
		layer[i] = terrain.TileRef{Index: 500}
	}

	img := ComposeBlock(terrain.Block{Graphics: []terrain.Layer{layer}}, testTileset())
	if got := img.NRGBAAt(64, 64); got.A != 0 {
		t.Errorf("expected transparent pixel, got %v", got)
	}
}

func TestOrientTile(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	src.SetNRGBA(2, 0, white)

	tests := []struct {
		flip     bool
		rotation uint32
		x, y     int
	}{
		{false, 0, 2, 0},
		{true, 0, 13, 0},
		{false, 1, 15, 2},
		{false, 2, 13, 15},
		{false, 3, 0, 13},
		{false, 4, 2, 0},
		{true, 2, 2, 15},
	}
	for _, tt := range tests {
		out := orientTile(src, tt.flip, tt.rotation)
		if got := out.NRGBAAt(tt.x, tt.y); got != white {
			t.Errorf("flip=%v rot=%d: expected marker at (%d,%d)", tt.flip, tt.rotation, tt.x, tt.y)
		}
	}
}
