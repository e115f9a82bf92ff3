package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Faultbox/project-tails/internal/level"
	"github.com/Faultbox/project-tails/internal/logger"
	"github.com/Faultbox/project-tails/pkg/formats"
	"github.com/Faultbox/project-tails/pkg/math"
	"github.com/Faultbox/project-tails/pkg/terrain"
)

func newBlocksCmd(opts *options) *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "blocks <dir>",
		Short: "List the blocks of a zone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			blocks, err := formats.LoadBlocks(os.DirFS(opts.root), args[0], prefix, logger.Named("blocks"))
			if err != nil {
				return err
			}

			rows := make([][]string, len(blocks))
			for id, b := range blocks {
				rows[id] = []string{
					strconv.Itoa(id),
					formats.BlockFileName(prefix, id+1),
					strconv.Itoa(len(b.Graphics)),
					strconv.Itoa(len(b.Collision)),
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d blocks in %s", len(blocks), args[0])))
			if len(rows) > 0 {
				fmt.Fprint(out, table([]string{"ID", "FILE", "GRAPHICS", "COLLISION"}, rows))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "Block", "Block file name prefix")
	return cmd
}

func newDecodeCmd(opts *options) *cobra.Command {
	var tile int

	cmd := &cobra.Command{
		Use:   "decode [collision]",
		Short: "Summarize a collision bitmap",
		Long: `Decodes a collision bitmap into collision tiles. Without an argument the
--collision bitmap is decoded. With --tile the height map of one tile is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := opts.collisionMap
			if len(args) == 1 {
				name = args[0]
			}
			c, err := opts.catalog()
			if err != nil {
				return err
			}
			tiles, err := level.LoadCollisionMap(c, name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if tile < 0 {
				solid := 0
				for _, t := range tiles {
					if t.Heights != ([terrain.TileSize]uint32{}) {
						solid++
					}
				}
				fmt.Fprintln(out, report(name,
					field{"tiles", len(tiles)},
					field{"non-empty", solid},
					field{"tile ids", fmt.Sprintf("%d..%d", terrain.CollisionTileOffset, terrain.CollisionTileOffset+len(tiles)-1)},
				))
				return nil
			}

			if tile >= len(tiles) {
				return fmt.Errorf("tile %d out of range, bitmap has %d tiles", tile, len(tiles))
			}
			t := tiles[tile]
			fmt.Fprintln(out, report(fmt.Sprintf("%s tile %d (id %d)", name, tile, tile+terrain.CollisionTileOffset),
				field{"angle", t.Angle},
				field{"heights", fmt.Sprint(t.Heights)},
			))
			return nil
		},
	}
	cmd.Flags().IntVar(&tile, "tile", -1, "Show the height map of one tile (0-based)")
	return cmd
}

// parsePoint parses pixel coordinates from two arguments.
func parsePoint(xs, ys string) (float64, float64, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid x %q: %w", xs, err)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid y %q: %w", ys, err)
	}
	return x, y, nil
}

func newProbeCmd(opts *options) *cobra.Command {
	var layer int

	cmd := &cobra.Command{
		Use:   "probe <act> <x> <y>",
		Short: "Query the collision tile at a pixel",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, y, err := parsePoint(args[1], args[2])
			if err != nil {
				return err
			}
			lvl, err := opts.loadLevel(args[0])
			if err != nil {
				return err
			}

			px, py := int(x), int(y)
			t := lvl.Terrain
			title := fmt.Sprintf("(%d, %d) layer %d", px, py, layer)
			if !t.Contains(px, py) {
				fmt.Fprintln(cmd.OutOrStdout(), report(title, field{"inside", false}))
				return nil
			}
			cell := t.Grid().Cell(px/terrain.BlockSize, py/terrain.BlockSize)
			if cell.Present && layer >= len(lvl.Blocks[cell.BlockID].Collision) {
				return fmt.Errorf("block %d has no collision layer %d", cell.BlockID, layer)
			}

			fields := []field{
				{"inside", true},
				{"block", blockLabel(cell)},
				{"occupied", t.IsOccupied(px, py, layer)},
			}
			if tile, ok := t.TileAt(px, py, layer); ok {
				col := t.Column(px)
				fields = append(fields,
					field{"angle", tile.Angle},
					field{"column", col},
					field{"height", tile.Heights[col]},
				)
			}
			fmt.Fprintln(cmd.OutOrStdout(), report(title, fields...))
			return nil
		},
	}
	cmd.Flags().IntVar(&layer, "layer", 0, "Collision layer")
	return cmd
}

func blockLabel(c terrain.Cell) string {
	if !c.Present {
		return "empty"
	}
	if c.Flipped() {
		return fmt.Sprintf("%d (flipped)", c.BlockID)
	}
	return strconv.Itoa(c.BlockID)
}

func newGroundCmd(opts *options) *cobra.Command {
	var radius float64

	cmd := &cobra.Command{
		Use:   "ground <act> <x> <y>",
		Short: "Find the ground below a point",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, y, err := parsePoint(args[1], args[2])
			if err != nil {
				return err
			}
			lvl, err := opts.loadLevel(args[0])
			if err != nil {
				return err
			}

			title := fmt.Sprintf("ground below (%g, %g) ±%g", x, y, radius)
			g, ok := lvl.Terrain.FindGround(math.Vec2{X: x, Y: y}, radius)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), report(title, field{"found", false}))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), report(title,
				field{"found", true},
				field{"surface y", g.SurfaceY},
				field{"angle", g.Angle},
			))
			return nil
		},
	}
	cmd.Flags().Float64Var(&radius, "radius", 5, "Horizontal probe radius in pixels")
	return cmd
}

func newValidateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <act>",
		Short: "Check every cross reference of a level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := opts.loadLevel(args[0])
			var invalid *level.ValidationError
			if errors.As(err, &invalid) {
				problems := invalid.Problems()
				for _, e := range problems {
					fmt.Fprintln(cmd.OutOrStdout(), errorStyle.Render("✗ "+e.Error()))
				}
				return fmt.Errorf("%s: %d problems", args[0], len(problems))
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(fmt.Sprintf("✓ %s: %d blocks, %d collision tiles, %d entities",
				lvl.Act.Name, len(lvl.Blocks), len(lvl.Tiles), len(lvl.Act.Entities))))
			return nil
		},
	}
}
