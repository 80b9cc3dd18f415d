package feed

import (
	"ytfeed/internal/components/telemetry"
	"ytfeed/lib/platforms/youtube/innertube"
	"ytfeed/lib/platforms/youtube/page"
)

// Cursor is an opaque position in a feed, consumed by exactly one
// continuation call.
type Cursor struct {
	Token          string
	Endpoint       string
	TrackingParams string
}

const markerKey = "continuationItemRenderer"

func isMarker(element page.Node) bool {
	return element.Has(markerKey)
}

func markerCursor(element page.Node) (Cursor, bool) {
	endpoint := element.Lookup(markerKey, "continuationEndpoint")
	token, err := endpoint.Lookup("continuationCommand", "token").Str()
	if err != nil || token == "" {
		return Cursor{}, false
	}
	return Cursor{
		Token: token,
		Endpoint: endpoint.Lookup(
			"commandMetadata", "webCommandMetadata", "apiUrl",
		).StrOr(innertube.BrowseEndpoint),
		TrackingParams: endpoint.Get("clickTrackingParams").StrOr(""),
	}, true
}

func siblingCursor(continuations page.Node) (Cursor, bool) {
	data := continuations.Lookup(0, "nextContinuationData")
	token, err := data.Get("continuation").Str()
	if err != nil || token == "" {
		return Cursor{}, false
	}
	return Cursor{
		Token:          token,
		Endpoint:       innertube.BrowseEndpoint,
		TrackingParams: data.Get("clickTrackingParams").StrOr(""),
	}, true
}

// readList splits a list into entries and the next cursor. Reading stops at
// the first marker, elements after it are dropped. The marker is preferred
// over the sibling continuations when both are present.
func readList(source Source, elements []page.Node, continuations page.Node, tel telemetry.API) ([]page.Node, *Cursor) {
	var entries []page.Node
	var marker *Cursor
	for i, element := range elements {
		if !isMarker(element) {
			entries = append(entries, source.Expand(element)...)
			continue
		}
		if i != len(elements)-1 {
			tel.ReportWarning(report_read_list_marker_position, source.Name, i, len(elements))
		}
		cursor, ok := markerCursor(element)
		if ok {
			marker = &cursor
		}
		break
	}

	sibling, hasSibling := siblingCursor(continuations)
	switch {
	case marker != nil && hasSibling:
		tel.ReportWarning(report_read_list_ambiguous_cursor, source.Name)
		return entries, marker
	case marker != nil:
		return entries, marker
	case hasSibling:
		return entries, &sibling
	}
	return entries, nil
}
