// actool inspects and checks Project Tails level data.
//
// Usage:
//
//	actool info <act>                 - Show act header, size and entities
//	actool fmt <act>                  - Print the act in canonical form
//	actool blocks <dir>               - List the blocks of a zone
//	actool decode <collision>         - Summarize a collision bitmap
//	actool probe <act> <x> <y>        - Query the collision tile at a pixel
//	actool ground <act> <x> <y>       - Find the ground below a point
//	actool validate <act>             - Check every cross reference of a level
//
// Paths are relative to the asset root set with --assets.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/project-tails/internal/assets"
	"github.com/Faultbox/project-tails/internal/config"
	"github.com/Faultbox/project-tails/internal/level"
	"github.com/Faultbox/project-tails/internal/logger"
)

// options are the persistent flags shared by every command.
type options struct {
	root         string
	collisionMap string
	entityData   string
	tilesPerRow  int
	verbose      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	defaults := config.Default().Assets

	root := &cobra.Command{
		Use:   "actool",
		Short: "Inspect and check Project Tails level data",
		Long: `actool reads act files, block definitions and collision bitmaps
the same way the game does and reports what it finds.

Examples:
  actool info EmeraldHillZone/Act1.txt
  actool fmt -w EmeraldHillZone/Act1.txt
  actool ground EmeraldHillZone/Act1.txt 100 0
  actool validate EmeraldHillZone/Act1.txt`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl := "warn"
			if opts.verbose {
				lvl = "debug"
			}
			return logger.InitWithFileConfig(lvl, logger.FileConfig{}, true)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.root, "assets", defaults.Root, "Asset root directory")
	flags.StringVar(&opts.collisionMap, "collision", defaults.CollisionMap, "Collision bitmap, relative to the asset root")
	flags.StringVar(&opts.entityData, "entity-data", defaults.EntityData, "Entity data table, relative to the asset root")
	flags.IntVar(&opts.tilesPerRow, "tiles-per-row", defaults.TilesPerRow, "Tileset tiles per row")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log loader details")

	root.AddCommand(
		newInfoCmd(opts),
		newFmtCmd(opts),
		newBlocksCmd(opts),
		newDecodeCmd(opts),
		newProbeCmd(opts),
		newGroundCmd(opts),
		newValidateCmd(opts),
	)
	return root
}

// catalog opens the asset root. Entity data is loaded when present.
func (o *options) catalog() (*assets.Catalog, error) {
	c := assets.NewCatalog(os.DirFS(o.root), logger.Named("assets"))
	if o.entityData == "" {
		return c, nil
	}
	if _, err := c.ReadFile(o.entityData); err != nil {
		logger.Debug("no entity data", zap.String("file", o.entityData), zap.Error(err))
		return c, nil
	}
	if err := c.LoadEntityData(o.entityData); err != nil {
		return nil, err
	}
	return c, nil
}

// assetsConfig returns the asset settings for an act.
func (o *options) assetsConfig(act string) config.AssetsConfig {
	cfg := config.Default().Assets
	cfg.Root = o.root
	cfg.ActFile = act
	cfg.CollisionMap = o.collisionMap
	cfg.EntityData = o.entityData
	cfg.TilesPerRow = o.tilesPerRow
	return cfg
}

// loadLevel loads and validates an act with its blocks and collision map.
func (o *options) loadLevel(act string) (*level.Level, error) {
	c, err := o.catalog()
	if err != nil {
		return nil, err
	}
	return level.Load(c, o.assetsConfig(act), logger.Named("level"))
}
