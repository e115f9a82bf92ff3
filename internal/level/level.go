// Package level assembles a playable level from its act file, block
// definitions and collision bitmap.
package level

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/project-tails/internal/assets"
	"github.com/Faultbox/project-tails/internal/config"
	"github.com/Faultbox/project-tails/pkg/formats"
	"github.com/Faultbox/project-tails/pkg/terrain"
)

// ErrInvalidLevel wraps every cross-reference problem found while assembling a level.
var ErrInvalidLevel = errors.New("invalid level")

// ValidationError carries every problem found in one act. It matches
// ErrInvalidLevel with errors.Is.
type ValidationError struct {
	Act string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v %s: %v", ErrInvalidLevel, e.Act, e.Err)
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrInvalidLevel, e.Err}
}

// Problems returns the individual problems.
func (e *ValidationError) Problems() []error {
	return multierr.Errors(e.Err)
}

// Level is a fully loaded act with its collision data.
type Level struct {
	Act     *formats.Act
	Blocks  terrain.BlockCatalog
	Tiles   []terrain.CollisionTile
	Terrain *terrain.Terrain
}

// BlockLocation splits an act block path such as "EmeraldHillZone/Block" into
// the block directory and the file name prefix.
func BlockLocation(blockPath string) (dir, prefix string) {
	dir, prefix = path.Split(strings.TrimSpace(blockPath))
	if dir == "" {
		return ".", prefix
	}
	return path.Clean(dir), prefix
}

// Load reads the act named by cfg, its blocks and the collision bitmap from the
// catalog file system and checks that they fit together.
func Load(catalog *assets.Catalog, cfg config.AssetsConfig, log *zap.Logger) (*Level, error) {
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()

	actData, err := catalog.ReadFile(cfg.ActFile)
	if err != nil {
		return nil, err
	}
	act, err := formats.ParseAct(actData)
	if err != nil {
		return nil, fmt.Errorf("parsing act %s: %w", cfg.ActFile, err)
	}
	log.Info("act loaded",
		zap.String("name", act.Name),
		zap.Int("entities", len(act.Entities)),
		zap.Int("width", act.Width),
		zap.Int("height", act.Height()),
		zap.Int("placed", act.PlacedCount()),
	)

	tiles, err := LoadCollisionMap(catalog, cfg.CollisionMap)
	if err != nil {
		return nil, err
	}
	log.Info("collision tiles decoded", zap.Int("count", len(tiles)), zap.String("file", cfg.CollisionMap))

	dir, prefix := BlockLocation(act.BlockPath)
	if cfg.BlockDir != "" {
		dir = cfg.BlockDir
	}
	if cfg.BlockPrefix != "" {
		prefix = cfg.BlockPrefix
	}
	blocks, err := formats.LoadBlocks(catalog.FS(), dir, prefix, log)
	if err != nil {
		return nil, err
	}
	log.Info("blocks loaded", zap.Int("count", len(blocks)), zap.String("dir", dir), zap.String("prefix", prefix))

	lvl := &Level{
		Act:     act,
		Blocks:  blocks,
		Tiles:   tiles,
		Terrain: terrain.New(blocks, tiles, act.Grid()),
	}

	if err := lvl.Validate(catalog); err != nil {
		for _, e := range multierr.Errors(err) {
			log.Warn("level check failed", zap.Error(e))
		}
		return nil, &ValidationError{Act: cfg.ActFile, Err: err}
	}

	log.Info("level ready", zap.String("act", cfg.ActFile), zap.Duration("took", time.Since(start)))
	return lvl, nil
}

// LoadCollisionMap decodes a PNG or BMP collision bitmap into collision tiles.
func LoadCollisionMap(catalog *assets.Catalog, name string) ([]terrain.CollisionTile, error) {
	img, err := catalog.LoadImage(name)
	if err != nil {
		return nil, fmt.Errorf("loading collision map: %w", err)
	}
	return terrain.DecodeCollisionMap(terrain.NewImageBitmap(img)), nil
}

// Validate checks the terrain cross references and, when the catalog holds
// entity data, that every placed entity kind is known.
func (l *Level) Validate(catalog *assets.Catalog) error {
	err := l.Terrain.Validate()

	if catalog == nil || len(catalog.Kinds()) == 0 {
		return err
	}
	for i, e := range l.Act.Entities {
		if !catalog.HasKind(e.Kind) {
			err = multierr.Append(err, fmt.Errorf("entity %d at (%v, %v): unknown kind %q",
				i, e.Position.X, e.Position.Y, e.Kind))
		}
	}
	return err
}

// PixelSize returns the level size in pixels.
func (l *Level) PixelSize() (w, h int) {
	grid := l.Terrain.Grid()
	return grid.PixelSize()
}
