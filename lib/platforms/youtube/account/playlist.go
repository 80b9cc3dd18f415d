package account

import (
	"context"
	"fmt"

	"ytfeed/lib/platforms/youtube/core"
	"ytfeed/lib/platforms/youtube/feed"
	"ytfeed/lib/platforms/youtube/innertube"
	"ytfeed/lib/platforms/youtube/page"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	actionRemoveVideoByID = "ACTION_REMOVE_VIDEO_BY_VIDEO_ID"
	actionRemoveSetVideo  = "ACTION_REMOVE_VIDEO"
	editPlaylistParams    = "CAFAAQ%3D%3D"
	statusSucceeded       = "STATUS_SUCCEEDED"
)

func playlistVideo(entry feed.Entry) (page.Node, string, bool) {
	renderer := entry.Node.Get("playlistVideoRenderer")
	videoID, err := renderer.Get("videoId").Str()
	if err != nil || videoID == "" {
		return page.Node{}, "", false
	}
	return renderer, videoID, true
}

// PlaylistEntries lists the video renderers of a playlist.
func (c *Client) PlaylistEntries(ctx context.Context, playlistID string) (*feed.Seq[page.Node], error) {
	traversal, err := c.open(ctx, feed.Playlist(playlistID))
	if err != nil {
		return nil, err
	}
	return feed.Map(traversal, func(entry feed.Entry) (page.Node, bool, error) {
		renderer, _, ok := playlistVideo(entry)
		return renderer, ok, nil
	}), nil
}

func (c *Client) PlaylistVideoIDs(ctx context.Context, playlistID string) (*feed.Seq[string], error) {
	traversal, err := c.open(ctx, feed.Playlist(playlistID))
	if err != nil {
		return nil, err
	}
	return feed.Map(traversal, func(entry feed.Entry) (string, bool, error) {
		_, videoID, ok := playlistVideo(entry)
		return videoID, ok, nil
	}), nil
}

func (c *Client) PlaylistRecords(ctx context.Context, playlistID string) (*feed.Seq[PlaylistRecord], error) {
	traversal, err := c.open(ctx, feed.Playlist(playlistID))
	if err != nil {
		return nil, err
	}
	return feed.Map(traversal, func(entry feed.Entry) (PlaylistRecord, bool, error) {
		renderer, videoID, ok := playlistVideo(entry)
		if !ok {
			return PlaylistRecord{}, false, nil
		}
		return playlistRecord(renderer, videoID, core.WatchURL(c.origin(), videoID)), true, nil
	}), nil
}

func (c *Client) editPlaylist(ctx context.Context, cfg page.Config, playlistID string, action map[string]any) (bool, error) {
	root, err := c.deps.Client.Post(ctx, cfg, innertube.Call{
		Endpoint: innertube.EditPlaylistEndpoint,
		Merge: map[string]any{
			"actions":    []any{action},
			"playlistId": playlistID,
			"params":     editPlaylistParams,
		},
		Referer: core.PlaylistPath(playlistID),
	})
	if err != nil {
		return false, err
	}
	status := root.Get("status").StrOr("")
	if status != statusSucceeded {
		c.tel.ReportWarning(report_remove_playlist, playlistID, action["action"], status)
		return false, nil
	}
	return true, nil
}

func removeByVideoID(videoID string) map[string]any {
	return map[string]any{
		"action":         actionRemoveVideoByID,
		"removedVideoId": videoID,
	}
}

func removeBySetVideoID(setVideoID string) map[string]any {
	return map[string]any{
		"action":     actionRemoveSetVideo,
		"setVideoId": setVideoID,
	}
}

// RemovePlaylistVideo removes a video from a playlist by its video id. A nil
// cache fetches the playlist page on every call.
func (c *Client) RemovePlaylistVideo(ctx context.Context, playlistID, videoID string, cache *MutationCache) (bool, error) {
	ctx, span := tracer.Start(ctx, "client:RemovePlaylistVideo")
	defer span.End()
	span.SetAttributes(attribute.String("playlist_id", playlistID))

	p, err := c.pageFor(ctx, core.PlaylistPath(playlistID), cache)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	return c.editPlaylist(ctx, p.Config, playlistID, removeByVideoID(videoID))
}

// RemovePlaylistSetVideo removes one membership of a video in a playlist by
// its setVideoId.
func (c *Client) RemovePlaylistSetVideo(ctx context.Context, playlistID, setVideoID string, cache *MutationCache) (bool, error) {
	ctx, span := tracer.Start(ctx, "client:RemovePlaylistSetVideo")
	defer span.End()
	span.SetAttributes(attribute.String("playlist_id", playlistID))

	p, err := c.pageFor(ctx, core.PlaylistPath(playlistID), cache)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	return c.editPlaylist(ctx, p.Config, playlistID, removeBySetVideoID(setVideoID))
}

type playlistTarget struct {
	videoID    string
	setVideoID string
}

// ClearPlaylist removes every video of a playlist. The whole playlist is
// listed before the first removal. An empty playlist is not an error.
func (c *Client) ClearPlaylist(ctx context.Context, playlistID string) error {
	ctx, span := tracer.Start(ctx, "client:ClearPlaylist")
	defer span.End()
	span.SetAttributes(attribute.String("playlist_id", playlistID))

	traversal, err := c.open(ctx, feed.Playlist(playlistID))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if traversal == nil {
		c.tel.ReportDebug(report_clear_playlist, playlistID, "playlist is empty")
		return nil
	}

	var targets []playlistTarget
	for traversal.Next(ctx) {
		renderer, videoID, ok := playlistVideo(traversal.Entry())
		if !ok {
			continue
		}
		targets = append(targets, playlistTarget{
			videoID:    videoID,
			setVideoID: renderer.Get("setVideoId").StrOr(""),
		})
	}
	if err := traversal.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	var failed int
	for _, target := range targets {
		action := removeByVideoID(target.videoID)
		if target.setVideoID != "" {
			action = removeBySetVideoID(target.setVideoID)
		}
		ok, err := c.editPlaylist(ctx, traversal.Config(), playlistID, action)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		if !ok {
			failed++
		}
	}
	c.tel.ReportDebug(report_clear_playlist, playlistID, len(targets), failed)
	if failed > 0 {
		return fmt.Errorf("clear playlist %s: %d of %d removals failed", playlistID, failed, len(targets))
	}
	return nil
}

// ClearWatchLater removes every video of the watch later playlist.
func (c *Client) ClearWatchLater(ctx context.Context) error {
	return c.ClearPlaylist(ctx, core.WatchLaterPlaylistID)
}
