package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/project-tails/pkg/formats"
	"github.com/Faultbox/project-tails/pkg/terrain"
)

const canonicalAct = `0.1
Test Zone Act 1
64 100 RING
E
NORMAL
TestZone.png
TestZone/Block
TestZone/Background/
1
2 2
0 128 0 0
`

// writeAssets creates a one-block level below a temporary asset root.
func writeAssets(t *testing.T, act string) string {
	t.Helper()
	root := t.TempDir()

	write := func(name string, data []byte) {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, data, 0o644))
	}

	// A solid tile with angle 7, then an empty tile.
	img := image.NewNRGBA(image.Rect(0, 0, 32, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 7, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	write("Collision.png", buf.Bytes())

	layer := func(name string, tile uint) formats.BlockLayer {
		l := formats.BlockLayer{Name: name, Tiles: make([]formats.BlockTile, terrain.LayerTiles)}
		for i := range l.Tiles {
			l.Tiles[i].Tile = tile
		}
		return l
	}
	block, err := json.Marshal(formats.BlockFile{Layers: []formats.BlockLayer{
		layer("Graphics", 3),
		layer("Collision", terrain.CollisionTileOffset),
	}})
	require.NoError(t, err)
	write("TestZone/Block1.json", block)

	write("TestZone/Act1.txt", []byte(act))
	write("EntityData.txt", []byte("OBJ RING 0 0 0 0 0 0 0 Ring.png 100 4 EA\n"))
	return root
}

func run(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--assets", root}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestInfo(t *testing.T) {
	root := writeAssets(t, canonicalAct)
	out, err := run(t, root, "info", "TestZone/Act1.txt")
	require.NoError(t, err)

	assert.Contains(t, out, "Test Zone Act 1")
	assert.Contains(t, out, "TestZone.png")
	assert.Contains(t, out, "2x2 blocks (256x256 px)")
	assert.Contains(t, out, "1 of 4 cells")
	assert.Contains(t, out, "RING")
}

func TestInfo_MissingFile(t *testing.T) {
	root := writeAssets(t, canonicalAct)
	_, err := run(t, root, "info", "Nope.txt")
	assert.Error(t, err)
}

func TestFmt(t *testing.T) {
	nonCanonical := "0.1\r\nTest Zone Act 1\r\n64 100 RING\r\nE\r\nNORMAL\r\nTestZone.png\r\nTestZone/Block\r\nTestZone/Background/\r\n1\r\n2 2\r\n0 128 0\r\n"

	t.Run("print", func(t *testing.T) {
		root := writeAssets(t, nonCanonical)
		out, err := run(t, root, "fmt", "TestZone/Act1.txt")
		require.NoError(t, err)
		assert.Equal(t, canonicalAct, out)
	})

	t.Run("check", func(t *testing.T) {
		root := writeAssets(t, nonCanonical)
		_, err := run(t, root, "fmt", "--check", "TestZone/Act1.txt")
		assert.ErrorContains(t, err, "not canonical")

		root = writeAssets(t, canonicalAct)
		out, err := run(t, root, "fmt", "--check", "TestZone/Act1.txt")
		require.NoError(t, err)
		assert.Contains(t, out, "is canonical")
	})

	t.Run("write", func(t *testing.T) {
		root := writeAssets(t, nonCanonical)
		_, err := run(t, root, "fmt", "-w", "TestZone/Act1.txt")
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(root, "TestZone", "Act1.txt"))
		require.NoError(t, err)
		assert.Equal(t, canonicalAct, string(data))
	})

	t.Run("write and check exclusive", func(t *testing.T) {
		root := writeAssets(t, canonicalAct)
		_, err := run(t, root, "fmt", "-w", "--check", "TestZone/Act1.txt")
		assert.Error(t, err)
	})
}

func TestBlocks(t *testing.T) {
	root := writeAssets(t, canonicalAct)
	out, err := run(t, root, "blocks", "TestZone")
	require.NoError(t, err)
	assert.Contains(t, out, "1 blocks in TestZone")
	assert.Contains(t, out, "Block1.json")
}

func TestDecode(t *testing.T) {
	root := writeAssets(t, canonicalAct)

	out, err := run(t, root, "decode")
	require.NoError(t, err)
	assert.Contains(t, out, "340..341")

	out, err = run(t, root, "decode", "--tile", "0", "Collision.png")
	require.NoError(t, err)
	assert.Contains(t, out, "[16 16 16 16 16 16 16 16 16 16 16 16 16 16 16 16]")

	_, err = run(t, root, "decode", "--tile", "5")
	assert.ErrorContains(t, err, "out of range")
}

func TestProbe(t *testing.T) {
	root := writeAssets(t, canonicalAct)

	out, err := run(t, root, "probe", "TestZone/Act1.txt", "10", "130")
	require.NoError(t, err)
	assert.Contains(t, out, "occupied")
	assert.Contains(t, out, "true")
	assert.Contains(t, out, "angle")

	out, err = run(t, root, "probe", "TestZone/Act1.txt", "10", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "empty")
	assert.NotContains(t, out, "angle")

	out, err = run(t, root, "probe", "TestZone/Act1.txt", "1000", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "false")

	_, err = run(t, root, "probe", "TestZone/Act1.txt", "10", "130", "--layer", "3")
	assert.ErrorContains(t, err, "no collision layer 3")

	_, err = run(t, root, "probe", "TestZone/Act1.txt", "ten", "130")
	assert.ErrorContains(t, err, "invalid x")
}

func TestGround(t *testing.T) {
	root := writeAssets(t, canonicalAct)

	out, err := run(t, root, "ground", "TestZone/Act1.txt", "64", "120")
	require.NoError(t, err)
	assert.Contains(t, out, "128")
	assert.Contains(t, out, "7")

	out, err = run(t, root, "ground", "TestZone/Act1.txt", "200", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "false")
}

func TestValidate(t *testing.T) {
	root := writeAssets(t, canonicalAct)
	out, err := run(t, root, "validate", "TestZone/Act1.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "1 blocks, 2 collision tiles, 1 entities")
}

func TestValidate_Problems(t *testing.T) {
	act := `0.1
Broken
1 1 BADNIK
E
NORMAL
TestZone.png
TestZone/Block
TestZone/Background/
2
2 2
0 128 0 0
128 128 9 0
`
	root := writeAssets(t, act)
	out, err := run(t, root, "validate", "TestZone/Act1.txt")
	assert.ErrorContains(t, err, "2 problems")
	assert.Contains(t, out, "block 9")
	assert.Contains(t, out, "BADNIK")
}
