package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"koneko/internal/layout"
)

func newLayoutCommand(ctx *commandContext) *cobra.Command {
	var (
		width, height int
		items         int
		users         bool
	)
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the grid geometry for the current terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if width <= 0 || height <= 0 {
				w, h := terminalSize(cmd.OutOrStdout())()
				if width <= 0 {
					width = w
				}
				if height <= 0 {
					height = h
				}
			}

			settings := cfg.LayoutSettings()
			xOffset := 0
			if users {
				settings.PageSpacing = cfg.UsersPageSpacing()
				xOffset = cfg.Lscat.UsersPrintNameXCoord
			}
			grid, err := layout.NewGrid(width, height, settings, xOffset)
			if err != nil {
				return err
			}
			if users {
				grid = grid.WithColumns(settings.GroupSize)
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Terminal", fmt.Sprintf("%dx%d", width, height)},
				{"Columns", strconv.Itoa(grid.Cols)},
				{"Rows", strconv.Itoa(grid.Rows)},
				{"Tiles per screen", strconv.Itoa(grid.TileCount())},
				{"Thumbnail size", strconv.Itoa(grid.Size)},
				{"Page spacing", strconv.Itoa(grid.PageSpacing)},
				{"X coordinates", joinInts(grid.Xs)},
				{"Y coordinates", joinInts(grid.Ys)},
				{"Header width", strconv.Itoa(layout.LineWidth(cfg.Lscat.GalleryPrintSpacing, grid.Cols))},
			}
			fmt.Fprintln(out, renderTable([]column{left("Setting"), right("Value")}, rows))

			if users {
				fmt.Fprintf(out, "Interleave order (%d items, group %d):\n", items, settings.GroupSize)
				fmt.Fprintln(out, joinInts(layout.InterleaveOrder(items, settings.GroupSize)))
			} else {
				fmt.Fprintln(out, "Column header:")
				fmt.Fprintln(out, layout.ColumnHeader(cfg.Lscat.GalleryPrintSpacing, grid.Cols))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "Terminal width in cells (default: detect)")
	cmd.Flags().IntVar(&height, "height", 0, "Terminal height in cells (default: detect)")
	cmd.Flags().BoolVar(&users, "users", false, "Show the followed-artist layout")
	cmd.Flags().IntVar(&items, "items", 120, "Item count for the interleave order")
	return cmd
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}
