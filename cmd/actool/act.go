package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Faultbox/project-tails/pkg/formats"
	"github.com/Faultbox/project-tails/pkg/terrain"
)

// readAct parses an act file below the asset root.
func (o *options) readAct(name string) (*formats.Act, []byte, error) {
	data, err := fs.ReadFile(os.DirFS(o.root), name)
	if err != nil {
		return nil, nil, err
	}
	act, err := formats.ParseAct(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", name, err)
	}
	return act, data, nil
}

func newInfoCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "info <act>",
		Short: "Show act header, size and entities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			act, _, err := opts.readAct(args[0])
			if err != nil {
				return err
			}

			w, h := act.Width, act.Height()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report(act.Name,
				field{"version", act.Version},
				field{"type", act.Type},
				field{"tileset", act.Tileset},
				field{"blocks", act.BlockPath},
				field{"background", act.BackgroundPath},
				field{"size", fmt.Sprintf("%dx%d blocks (%dx%d px)", w, h, w*terrain.BlockSize, h*terrain.BlockSize)},
				field{"placed", fmt.Sprintf("%d of %d cells", act.PlacedCount(), len(act.Tiles))},
				field{"entities", len(act.Entities)},
			))

			if len(act.Entities) == 0 {
				return nil
			}
			counts := make(map[string]int)
			for _, e := range act.Entities {
				counts[e.Kind]++
			}
			kinds := make([]string, 0, len(counts))
			for k := range counts {
				kinds = append(kinds, k)
			}
			sort.Strings(kinds)
			rows := make([][]string, len(kinds))
			for i, k := range kinds {
				rows[i] = []string{k, strconv.Itoa(counts[k])}
			}
			fmt.Fprint(out, table([]string{"KIND", "COUNT"}, rows))
			return nil
		},
	}
}

func newFmtCmd(opts *options) *cobra.Command {
	var write, check bool

	cmd := &cobra.Command{
		Use:   "fmt <act>",
		Short: "Print the act in canonical form",
		Long: `Rewrites an act file with one line per grid cell in row-major order,
explicit flags and the tile count matching the grid.

With -w the file is rewritten in place. With --check nothing is written and
the command fails when the file is not canonical.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			act, data, err := opts.readAct(args[0])
			if err != nil {
				return err
			}
			canonical, err := act.MarshalText()
			if err != nil {
				return err
			}

			switch {
			case check:
				if !bytes.Equal(data, canonical) {
					return fmt.Errorf("%s is not canonical", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(args[0]+" is canonical"))
			case write:
				path := filepath.Join(opts.root, filepath.FromSlash(args[0]))
				if err := formats.WriteActFile(path, act); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("wrote "+path))
			default:
				_, err = cmd.OutOrStdout().Write(canonical)
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Rewrite the file in place")
	cmd.Flags().BoolVar(&check, "check", false, "Fail if the file is not canonical")
	cmd.MarkFlagsMutuallyExclusive("write", "check")
	return cmd
}
