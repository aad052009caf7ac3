package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"koneko/internal/cachedir"
	"koneko/internal/collection"
	"koneko/internal/staleness"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the download cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheInfoCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func (c *commandContext) cacheRoot() (*cachedir.Root, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return cachedir.New(cfg.Paths.CacheDir), nil
}

// forgetDownloads drops manifest records under a removed directory. A cache
// that never used the manifest has nothing to forget.
func forgetDownloads(ctx context.Context, root *cachedir.Root, dir string) error {
	if _, err := os.Stat(filepath.Join(root.Path(), staleness.ManifestFile)); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	manifest, err := staleness.OpenManifest(ctx, root.Path())
	if err != nil {
		return err
	}
	defer manifest.Close()
	return manifest.Forget(ctx, dir)
}

func parseKinds(values []string) ([]collection.Kind, error) {
	kinds := make([]collection.Kind, 0, len(values))
	for _, v := range values {
		switch kind := collection.Kind(v); kind {
		case collection.KindGallery, collection.KindFeed, collection.KindUsers, collection.KindPost:
			kinds = append(kinds, kind)
		default:
			return nil, fmt.Errorf("unknown kind %q (want gallery, feed, following or post)", v)
		}
	}
	return kinds, nil
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var kindFlags []string
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List cached collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := ctx.cacheRoot()
			if err != nil {
				return err
			}
			kinds, err := parseKinds(kindFlags)
			if err != nil {
				return err
			}
			entries, err := root.Entries(kinds...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Cache is empty")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				updated := "unknown"
				if !entry.ModifiedAt.IsZero() {
					updated = humanize.Time(entry.ModifiedAt)
				}
				rows = append(rows, []string{
					entry.Name,
					entry.Kind.String(),
					strconv.Itoa(entry.Files),
					humanize.Bytes(uint64(entry.SizeBytes)),
					updated,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]column{left("Directory"), left("Kind"), right("Files"), right("Size"), left("Updated")},
				rows,
			))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&kindFlags, "kind", nil, "Only list these kinds (gallery, feed, following, post)")
	return cmd
}

func newCacheInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache location and usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := ctx.cacheRoot()
			if err != nil {
				return err
			}
			size, files, err := root.Size()
			if err != nil {
				return err
			}
			names, err := root.Collections()
			if err != nil {
				return err
			}
			owners, err := root.IndividualOwners()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Path:        %s\n", root.Path())
			fmt.Fprintf(out, "Size:        %s (%s files)\n", humanize.Bytes(uint64(size)), humanize.Comma(int64(files)))
			fmt.Fprintf(out, "Collections: %d\n", len(names))
			fmt.Fprintf(out, "Posts from:  %d artists\n", len(owners))
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear [directory...]",
		Short: "Remove cached downloads (all, or the named top-level directories)",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := ctx.cacheRoot()
			if err != nil {
				return err
			}
			if err := root.Lock(); err != nil {
				return err
			}
			defer root.Unlock()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				if err := root.Clear(); err != nil {
					return err
				}
				fmt.Fprintf(out, "Cleared %s\n", root.Path())
				return nil
			}
			for _, name := range args {
				dir := filepath.Join(root.Path(), name)
				if err := root.Remove(dir); err != nil {
					return err
				}
				if err := forgetDownloads(cmd.Context(), root, dir); err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %s\n", name)
			}
			return nil
		},
	}
}
