package account

import (
	"strings"

	"ytfeed/lib/platforms/youtube/page"
)

type Thumbnail struct {
	Width  int64  `json:"width"`
	Height int64  `json:"height"`
	URL    string `json:"url"`
}

// HistoryRecord is a watch history entry in a flat form.
type HistoryRecord struct {
	VideoID            string      `json:"video_id"`
	Title              string      `json:"title,omitempty"`
	Description        string      `json:"description,omitempty"`
	OwnerText          string      `json:"owner_text,omitempty"`
	LongBylineText     string      `json:"long_byline_text,omitempty"`
	ShortBylineText    string      `json:"short_byline_text,omitempty"`
	ShortViewCountText string      `json:"short_view_count_text,omitempty"`
	ViewCountText      string      `json:"view_count_text,omitempty"`
	Length             string      `json:"length,omitempty"`
	LengthAccessible   string      `json:"length_accessible,omitempty"`
	Verified           bool        `json:"verified"`
	VideoThumbnails    []Thumbnail `json:"video_thumbnails,omitempty"`
	MovingThumbnails   []Thumbnail `json:"moving_thumbnails,omitempty"`
	WatchURL           string      `json:"watch_url"`
}

// PlaylistRecord is a playlist entry in a flat form.
type PlaylistRecord struct {
	Owner    string `json:"owner,omitempty"`
	Title    string `json:"title,omitempty"`
	VideoID  string `json:"video_id"`
	WatchURL string `json:"watch_url"`
}

// runsText concatenates a text object's runs, line breaks become " - ".
func runsText(text page.Node) string {
	if simple, err := text.Get("simpleText").Str(); err == nil {
		return simple
	}
	var out strings.Builder
	for _, run := range text.Get("runs").ListOr() {
		out.WriteString(run.Get("text").StrOr(""))
	}
	return strings.ReplaceAll(strings.TrimSpace(out.String()), "\n", " - ")
}

// joinedRuns joins a text object's runs with " - ".
func joinedRuns(text page.Node) string {
	if simple, err := text.Get("simpleText").Str(); err == nil {
		return simple
	}
	if plain, err := text.Get("text").Str(); err == nil {
		return plain
	}
	var parts []string
	for _, run := range text.Get("runs").ListOr() {
		parts = append(parts, run.Get("text").StrOr(""))
	}
	return strings.Join(parts, " - ")
}

func thumbnails(list page.Node) []Thumbnail {
	var out []Thumbnail
	for _, t := range list.ListOr() {
		width, _ := t.Get("width").Int()
		height, _ := t.Get("height").Int()
		out = append(out, Thumbnail{
			Width:  width,
			Height: height,
			URL:    t.Get("url").StrOr(""),
		})
	}
	return out
}

func isVerified(badges page.Node) bool {
	for _, badge := range badges.ListOr() {
		if badge.Lookup("metadataBadgeRenderer", "style").StrOr("") == "BADGE_STYLE_TYPE_VERIFIED" {
			return true
		}
	}
	return false
}

func historyRecord(renderer page.Node, videoID, watchURL string) HistoryRecord {
	record := HistoryRecord{
		VideoID:            videoID,
		Title:              runsText(renderer.Get("title")),
		Description:        runsText(renderer.Get("descriptionSnippet")),
		OwnerText:          runsText(renderer.Get("ownerText")),
		LongBylineText:     runsText(renderer.Get("longBylineText")),
		ShortBylineText:    runsText(renderer.Get("shortBylineText")),
		ShortViewCountText: renderer.Lookup("shortViewCountText", "simpleText").StrOr(""),
		ViewCountText:      renderer.Lookup("viewCountText", "simpleText").StrOr(""),
		Length:             renderer.Lookup("lengthText", "simpleText").StrOr(""),
		LengthAccessible: renderer.Lookup(
			"lengthText", "accessibility", "accessibilityData", "label",
		).StrOr(""),
		Verified: isVerified(renderer.Get("ownerBadges")),
		MovingThumbnails: thumbnails(renderer.Lookup(
			"richThumbnail", "movingThumbnailRenderer",
			"movingThumbnailDetails", "thumbnails",
		)),
		WatchURL: watchURL,
	}
	record.VideoThumbnails = append(
		thumbnails(renderer.Lookup("thumbnail", "thumbnails")),
		thumbnails(renderer.Lookup(
			"channelThumbnailSupportedRenderers", "channelThumbnailWithLinkRenderer",
			"thumbnail", "thumbnails",
		))...,
	)
	return record
}

func playlistRecord(renderer page.Node, videoID, watchURL string) PlaylistRecord {
	return PlaylistRecord{
		Owner:    joinedRuns(renderer.Get("shortBylineText")),
		Title:    joinedRuns(renderer.Get("title")),
		VideoID:  videoID,
		WatchURL: watchURL,
	}
}
