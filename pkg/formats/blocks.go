package formats

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/project-tails/pkg/terrain"
)

// Layer name prefixes used to split block layers into graphics and collision sets.
const (
	GraphicsLayerPrefix  = "Graphics"
	CollisionLayerPrefix = "Collision"
)

// Block file errors.
var (
	ErrInvalidBlock   = errors.New("invalid block")
	ErrLayerTileCount = errors.New("layer does not hold 64 tiles")
	ErrLayerCount     = errors.New("unsupported layer count")
)

// BlockTile is one tile entry of a block layer.
type BlockTile struct {
	Rotation uint32 `json:"rot"`
	FlipX    bool   `json:"flipX"`
	Tile     uint   `json:"tile"`
}

// BlockLayer is a named layer of a block file.
type BlockLayer struct {
	Name  string      `json:"name"`
	Tiles []BlockTile `json:"tiles"`
}

// BlockFile is a parsed block definition.
type BlockFile struct {
	Layers []BlockLayer `json:"layers"`
}

// LayerKind tells whether a layer is drawn or collided with.
type LayerKind int

// Layer kinds.
const (
	LayerGraphics LayerKind = iota
	LayerCollision
)

// String returns the kind name.
func (k LayerKind) String() string {
	switch k {
	case LayerGraphics:
		return "graphics"
	case LayerCollision:
		return "collision"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Classify returns the kind of the layer and whether it had to be inferred.
// Layers without a known name prefix are collision layers when any tile id
// reaches the collision tile range, graphics layers otherwise.
func (l *BlockLayer) Classify() (kind LayerKind, inferred bool) {
	switch {
	case strings.HasPrefix(l.Name, GraphicsLayerPrefix):
		return LayerGraphics, false
	case strings.HasPrefix(l.Name, CollisionLayerPrefix):
		return LayerCollision, false
	}
	for _, t := range l.Tiles {
		if t.Tile >= terrain.CollisionTileOffset {
			return LayerCollision, true
		}
	}
	return LayerGraphics, true
}

// toLayer converts the tile list to a fixed 8x8 layer.
func (l *BlockLayer) toLayer() (terrain.Layer, error) {
	var out terrain.Layer
	if len(l.Tiles) != terrain.LayerTiles {
		return out, fmt.Errorf("%w: layer %q has %d", ErrLayerTileCount, l.Name, len(l.Tiles))
	}
	for i, t := range l.Tiles {
		out[i] = terrain.TileRef{
			Index:    int(t.Tile),
			Rotation: t.Rotation,
			FlipX:    t.FlipX,
		}
	}
	return out, nil
}

// Block splits the file's layers into graphics and collision layers.
// Each set must hold one or two layers. Layers whose kind had to be inferred
// from their tile ids are reported to log.
func (f *BlockFile) Block(log *zap.Logger) (terrain.Block, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var block terrain.Block
	for i := range f.Layers {
		layer := &f.Layers[i]
		converted, err := layer.toLayer()
		if err != nil {
			return terrain.Block{}, err
		}

		kind, inferred := layer.Classify()
		if inferred {
			log.Warn("block layer kind inferred from tile ids",
				zap.String("layer", layer.Name),
				zap.Stringer("kind", kind),
			)
		}

		switch kind {
		case LayerCollision:
			block.Collision = append(block.Collision, converted)
		default:
			block.Graphics = append(block.Graphics, converted)
		}
	}

	if n := len(block.Graphics); n < 1 || n > 2 {
		return terrain.Block{}, fmt.Errorf("%w: %d graphics layers", ErrLayerCount, n)
	}
	if n := len(block.Collision); n < 1 || n > 2 {
		return terrain.Block{}, fmt.Errorf("%w: %d collision layers", ErrLayerCount, n)
	}

	return block, nil
}

// ParseBlock parses a block definition from JSON.
func ParseBlock(data []byte) (*BlockFile, error) {
	var f BlockFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBlock, err)
	}
	return &f, nil
}

// BlockFileName returns the file name of block n (1-based) for a prefix.
func BlockFileName(prefix string, n int) string {
	return fmt.Sprintf("%s%d.json", prefix, n)
}

// LoadBlocks reads dir/<prefix>1.json, dir/<prefix>2.json, ... from fsys until
// the first missing index. Block id 0 is <prefix>1.json.
// Any unreadable or invalid block fails the whole load.
func LoadBlocks(fsys fs.FS, dir, prefix string, log *zap.Logger) (terrain.BlockCatalog, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var catalog terrain.BlockCatalog
	for n := 1; ; n++ {
		name := path.Join(dir, BlockFileName(prefix, n))
		data, err := fs.ReadFile(fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading block %s: %w", name, err)
		}

		file, err := ParseBlock(data)
		if err != nil {
			return nil, fmt.Errorf("parsing block %s: %w", name, err)
		}
		block, err := file.Block(log.With(zap.String("block", name)))
		if err != nil {
			return nil, fmt.Errorf("loading block %s: %w", name, err)
		}
		catalog = append(catalog, block)
	}

	log.Debug("blocks loaded", zap.Int("count", len(catalog)), zap.String("dir", dir))
	return catalog, nil
}
