package feed

import (
	"ytfeed/lib/platforms/youtube/core"
	"ytfeed/lib/platforms/youtube/page"
)

// Source describes where a feed lives and how its lists are read.
type Source struct {
	// Name is used in telemetry and errors.
	Name string
	// Path is the page the feed starts on.
	Path string
	// Container locates the node holding the first page's list and its
	// sibling continuations. A missing node means the feed is empty.
	Container func(state page.Node) page.Node
	// Expand turns one list element into the entries it carries.
	Expand func(element page.Node) []page.Node
}

func sectionList(state page.Node) page.Node {
	return state.Lookup(
		"contents", "twoColumnBrowseResultsRenderer", "tabs", 0,
		"tabRenderer", "content", "sectionListRenderer",
	)
}

// History is the signed-in user's watch history. Its list holds item
// sections which are flattened into their entries.
func History() Source {
	return Source{
		Name:      "history",
		Path:      core.WatchHistoryPath,
		Container: sectionList,
		Expand: func(element page.Node) []page.Node {
			return element.Lookup("itemSectionRenderer", "contents").ListOr()
		},
	}
}

// Playlist is the playlist with the given id, core.WatchLaterPlaylistID for
// watch later.
func Playlist(playlistID string) Source {
	return Source{
		Name: "playlist",
		Path: core.PlaylistPath(playlistID),
		Container: func(state page.Node) page.Node {
			return sectionList(state).Lookup(
				"contents", 0,
				"itemSectionRenderer", "contents", 0,
				"playlistVideoListRenderer",
			)
		},
		Expand: func(element page.Node) []page.Node {
			if !element.Has("playlistVideoRenderer") {
				return nil
			}
			return []page.Node{element}
		},
	}
}
