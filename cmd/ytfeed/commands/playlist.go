package commands

import (
	"context"
	"fmt"

	"ytfeed/lib/platforms/youtube/account"
	"ytfeed/lib/platforms/youtube/core"

	"github.com/spf13/cobra"
)

var clearPlaylistCmd = &cobra.Command{
	Use:   "clear-playlist PLAYLIST_ID",
	Short: "Removes every video of a playlist.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return client.ClearPlaylist(cmd.Context(), args[0])
	},
}

var clearWatchLaterCmd = &cobra.Command{
	Use:   "clear-watch-later",
	Short: "Removes every video of the watch later playlist.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return client.ClearWatchLater(cmd.Context())
	},
}

var printPlaylistOutput outputFlags

var printPlaylistCmd = &cobra.Command{
	Use:   "print-playlist PLAYLIST_ID [--json|--table]",
	Short: "Prints the videos of a playlist.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return printPlaylist(cmd.Context(), client, args[0], printPlaylistOutput)
	},
}

var printWatchLaterOutput outputFlags

var printWatchLaterCmd = &cobra.Command{
	Use:   "print-watch-later [--json|--table]",
	Short: "Prints the videos of the watch later playlist.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return printPlaylist(cmd.Context(), client, core.WatchLaterPlaylistID, printWatchLaterOutput)
	},
}

// removeVideos removes each video from the playlist, sharing one page fetch
// across the calls.
func removeVideos(ctx context.Context, client *account.Client, playlistID string, videoIDs []string) error {
	cache := &account.MutationCache{}
	failed := 0
	for _, videoID := range videoIDs {
		ok, err := client.RemovePlaylistVideo(ctx, playlistID, videoID, cache)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("Failed to remove %s from %s.\n", videoID, playlistID)
			failed++
		}
	}
	return notDone(failed == 0, fmt.Sprintf("%d of %d removals failed.", failed, len(videoIDs)))
}

var removeVideoIDCmd = &cobra.Command{
	Use:   "remove-video-id PLAYLIST_ID VIDEO_ID...",
	Short: "Removes videos from a playlist.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return removeVideos(cmd.Context(), client, args[0], args[1:])
	},
}

var removeWatchLaterVideoIDCmd = &cobra.Command{
	Use:   "remove-watch-later-video-id VIDEO_ID...",
	Short: "Removes videos from the watch later playlist.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return removeVideos(cmd.Context(), client, core.WatchLaterPlaylistID, args)
	},
}

func init() {
	printPlaylistOutput.register(printPlaylistCmd)
	printWatchLaterOutput.register(printWatchLaterCmd)

	rootCmd.AddCommand(clearPlaylistCmd)
	rootCmd.AddCommand(clearWatchLaterCmd)
	rootCmd.AddCommand(printPlaylistCmd)
	rootCmd.AddCommand(printWatchLaterCmd)
	rootCmd.AddCommand(removeVideoIDCmd)
	rootCmd.AddCommand(removeWatchLaterVideoIDCmd)
}
