package testutil

import (
	"encoding/json"
	"fmt"
	"html"
)

type Obj = map[string]any
type List = []any

const (
	TestAPIKey        = "test-api-key"
	TestClientVersion = "2.20250101.00.00"
	TestSessionID     = "1234567890"
	TestSecret        = "test-sapisid"
)

// Ytcfg returns a config map that passes validation, overrides replace or
// add keys.
func Ytcfg(overrides Obj) Obj {
	cfg := Obj{
		"INNERTUBE_API_KEY":                TestAPIKey,
		"VISITOR_DATA":                     "visitor-data",
		"USER_SESSION_ID":                  TestSessionID,
		"SESSION_INDEX":                    0,
		"INNERTUBE_CONTEXT_CLIENT_VERSION": TestClientVersion,
		"INNERTUBE_CONTEXT_CLIENT_NAME":    1,
	}
	for k, v := range overrides {
		if v == nil {
			delete(cfg, k)
			continue
		}
		cfg[k] = v
	}
	return cfg
}

func mustMarshal(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// PageHTML renders a page embedding state as ytInitialData and cfg through
// ytcfg.set, the way the site does.
func PageHTML(state Obj, cfg Obj) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<title>%s</title>
<script src="/s/desktop/base.js"></script>
<script nonce="n1">(function() {window.ytplayer={};
ytcfg.set({"CLIENT_CANARY_STATE":"none"});
ytcfg.set(%s); window.ytcfg.obfuscatedData_ = [];})();</script>
</head>
<body>
<script nonce="n2">var ytInitialData = %s;</script>
</body>
</html>`,
		html.EscapeString("YouTube"),
		mustMarshal(cfg),
		mustMarshal(state),
	)
}

// HistoryState wraps sections in the history page's container.
func HistoryState(sections ...any) Obj {
	return Obj{
		"contents": Obj{
			"twoColumnBrowseResultsRenderer": Obj{
				"tabs": List{
					Obj{
						"tabRenderer": Obj{
							"content": Obj{
								"sectionListRenderer": Obj{
									"contents": List(sections),
								},
							},
						},
					},
				},
				"secondaryContents": Obj{
					"browseFeedActionsRenderer": Obj{
						"contents": List{
							SearchButton(false),
							ClearAllButton("clear-all-token"),
							ToggleButton("toggle-token", "/youtubei/v1/feedback"),
						},
					},
				},
			},
		},
	}
}

// HistorySection is an item section of history entries.
func HistorySection(items ...any) Obj {
	return Obj{"itemSectionRenderer": Obj{"contents": List(items)}}
}

// HistoryVideo is a history entry, an empty token leaves the remove button
// out.
func HistoryVideo(videoID, feedbackToken string) Obj {
	renderer := Obj{
		"videoId": videoID,
		"title": Obj{
			"runs": List{Obj{"text": "Title of " + videoID}},
		},
		"ownerText": Obj{
			"runs": List{Obj{"text": "Channel"}, Obj{"text": "Name"}},
		},
		"lengthText": Obj{
			"simpleText": "4:20",
			"accessibility": Obj{
				"accessibilityData": Obj{"label": "4 minutes, 20 seconds"},
			},
		},
		"shortViewCountText": Obj{"simpleText": "1.2K views"},
		"viewCountText":      Obj{"simpleText": "1,234 views"},
		"ownerBadges": List{
			Obj{"metadataBadgeRenderer": Obj{"style": "BADGE_STYLE_TYPE_VERIFIED"}},
		},
		"thumbnail": Obj{
			"thumbnails": List{
				Obj{"url": "https://i.ytimg.com/vi/" + videoID + "/default.jpg", "width": 120, "height": 90},
			},
		},
	}
	if feedbackToken != "" {
		renderer["menu"] = Obj{
			"menuRenderer": Obj{
				"topLevelButtons": List{
					Obj{
						"buttonRenderer": Obj{
							"serviceEndpoint": Obj{
								"feedbackEndpoint": Obj{"feedbackToken": feedbackToken},
							},
						},
					},
				},
			},
		}
	}
	return Obj{"videoRenderer": renderer}
}

// ContinuationMarker is the list element carrying the next cursor.
func ContinuationMarker(token, apiUrl string) Obj {
	endpoint := Obj{
		"clickTrackingParams": "tracking-" + token,
		"continuationCommand": Obj{"token": token},
	}
	if apiUrl != "" {
		endpoint["commandMetadata"] = Obj{
			"webCommandMetadata": Obj{"apiUrl": apiUrl},
		}
	}
	return Obj{
		"continuationItemRenderer": Obj{
			"continuationEndpoint": endpoint,
		},
	}
}

// NextContinuation is a sibling continuations list.
func NextContinuation(token string) List {
	return List{
		Obj{
			"nextContinuationData": Obj{
				"continuation":        token,
				"clickTrackingParams": "tracking-" + token,
			},
		},
	}
}

// SearchButton is the first feed action, the page disables it when the
// history is empty.
func SearchButton(disabled bool) Obj {
	return Obj{"buttonRenderer": Obj{"isDisabled": disabled}}
}

func ClearAllButton(token string) Obj {
	return Obj{
		"buttonRenderer": Obj{
			"navigationEndpoint": Obj{
				"confirmDialogEndpoint": Obj{
					"content": Obj{
						"confirmDialogRenderer": Obj{
							"confirmEndpoint": Obj{
								"feedbackEndpoint": Obj{"feedbackToken": token},
							},
						},
					},
				},
			},
		},
	}
}

func ToggleButton(token, apiUrl string) Obj {
	return Obj{
		"buttonRenderer": Obj{
			"navigationEndpoint": Obj{
				"confirmDialogEndpoint": Obj{
					"content": Obj{
						"confirmDialogRenderer": Obj{
							"confirmEndpoint": Obj{
								"commandMetadata": Obj{
									"webCommandMetadata": Obj{"apiUrl": apiUrl},
								},
								"feedbackEndpoint": Obj{"feedbackToken": token},
							},
						},
					},
				},
			},
		},
	}
}

// PlaylistState wraps items in the playlist page's container.
func PlaylistState(playlistID string, items ...any) Obj {
	return PlaylistStateWith(Obj{
		"playlistId": playlistID,
		"contents":   List(items),
	})
}

// PlaylistStateWith uses renderer as the playlistVideoListRenderer, nil
// leaves the container out.
func PlaylistStateWith(renderer Obj) Obj {
	section := Obj{"itemSectionRenderer": Obj{"contents": List{}}}
	if renderer != nil {
		section = Obj{
			"itemSectionRenderer": Obj{
				"contents": List{Obj{"playlistVideoListRenderer": renderer}},
			},
		}
	}
	return Obj{
		"contents": Obj{
			"twoColumnBrowseResultsRenderer": Obj{
				"tabs": List{
					Obj{
						"tabRenderer": Obj{
							"content": Obj{
								"sectionListRenderer": Obj{
									"contents": List{section},
								},
							},
						},
					},
				},
			},
		},
	}
}

// PlaylistVideo is a playlist entry, an empty setVideoID leaves it out.
func PlaylistVideo(videoID, setVideoID string) Obj {
	renderer := Obj{
		"videoId": videoID,
		"title": Obj{
			"runs": List{Obj{"text": "Title of " + videoID}},
		},
		"shortBylineText": Obj{
			"runs": List{Obj{"text": "Owner"}},
		},
	}
	if setVideoID != "" {
		renderer["setVideoId"] = setVideoID
	}
	return Obj{"playlistVideoRenderer": renderer}
}

// AppendEnvelope is a continuation response in the append-action shape.
func AppendEnvelope(items ...any) Obj {
	return Obj{
		"onResponseReceivedActions": List{
			Obj{
				"appendContinuationItemsAction": Obj{
					"continuationItems": List(items),
				},
			},
		},
	}
}

// ContinuationContentsEnvelope is a continuation response in the older
// continuationContents shape, continuations may be nil.
func ContinuationContentsEnvelope(renderer string, continuations List, items ...any) Obj {
	inner := Obj{"contents": List(items)}
	if continuations != nil {
		inner["continuations"] = continuations
	}
	return Obj{
		"continuationContents": Obj{
			renderer: inner,
		},
	}
}

// Processed is a feedback response.
func Processed(ok bool) Obj {
	return Obj{
		"feedbackResponses": List{Obj{"isProcessed": ok}},
	}
}

// LoggedOut is a response flagging the session as signed out.
func LoggedOut() Obj {
	return Obj{
		"responseContext": Obj{
			"mainAppWebResponseContext": Obj{"loggedOut": true},
		},
	}
}
