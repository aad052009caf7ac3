package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"koneko/internal/collection"
	"koneko/internal/fileutil"
	"koneko/internal/logging"
	"koneko/internal/pixiv"
)

func newBrowseCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newGalleryCommand(ctx),
		newFeedCommand(ctx),
		newFollowingCommand(ctx),
		newPostCommand(ctx),
	}
}

func newGalleryCommand(ctx *commandContext) *cobra.Command {
	var flags browseFlags
	cmd := &cobra.Command{
		Use:   "gallery <artist id|url>",
		Short: "Show an artist's illustrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			artistID, err := pixiv.ParseUserID(args[0])
			if err != nil {
				return err
			}
			b, err := ctx.newBrowser(cmd, flags)
			if err != nil {
				return err
			}
			_, err = b.browse(cmd.Context(), collection.NewGallery(b.cfg.Paths.CacheDir, artistID))
			return quietCancel(err)
		},
	}
	flags.bind(cmd)
	return cmd
}

func newFeedCommand(ctx *commandContext) *cobra.Command {
	var flags browseFlags
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show new illustrations from followed artists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := ctx.newBrowser(cmd, flags)
			if err != nil {
				return err
			}
			_, err = b.browse(cmd.Context(), collection.NewFeed(b.cfg.Paths.CacheDir))
			return quietCancel(err)
		},
	}
	flags.bind(cmd)
	return cmd
}

func newFollowingCommand(ctx *commandContext) *cobra.Command {
	var flags browseFlags
	cmd := &cobra.Command{
		Use:   "following <user id|url>",
		Short: "Show the artists a user follows, with their recent works",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := pixiv.ParseUserID(args[0])
			if err != nil {
				return err
			}
			b, err := ctx.newBrowser(cmd, flags)
			if err != nil {
				return err
			}
			_, err = b.browse(cmd.Context(), collection.NewUsers(b.cfg.Paths.CacheDir, userID))
			return quietCancel(err)
		},
	}
	flags.bind(cmd)
	return cmd
}

func newPostCommand(ctx *commandContext) *cobra.Command {
	var flags browseFlags
	var save bool
	cmd := &cobra.Command{
		Use:   "post <illust id|url>",
		Short: "Show every page of a single illustration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := pixiv.ParseArtworkID(args[0])
			if err != nil {
				return err
			}
			b, err := ctx.newBrowser(cmd, flags)
			if err != nil {
				return err
			}
			post, err := collection.LoadPost(cmd.Context(), b.src, b.cfg.Paths.CacheDir, itemID)
			if err != nil {
				return err
			}
			if _, err := b.browse(cmd.Context(), post); err != nil {
				return quietCancel(err)
			}
			if !save {
				return nil
			}
			return b.saveOriginal(cmd, post)
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&save, "save", false, "Download the current page at full resolution into the downloads directory")
	return cmd
}

// saveOriginal fetches the original-resolution file for the post's current
// page into its cache directory, then copies it to the downloads directory.
func (b *browser) saveOriginal(cmd *cobra.Command, post *collection.Post) error {
	cached, err := b.downloader().FetchOriginal(cmd.Context(), post.CurrentURL(), post.DownloadPath)
	if err != nil {
		return err
	}
	target := filepath.Join(b.cfg.Paths.DownloadsDir, filepath.Base(cached))
	if err := fileutil.CopyFileVerified(cached, target); err != nil {
		return fmt.Errorf("save %s: %w", target, err)
	}
	b.logger.Info("original saved", logging.String("path", target))
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", target)
	return nil
}

func quietCancel(err error) error {
	if isCancelled(err) {
		return nil
	}
	return err
}
