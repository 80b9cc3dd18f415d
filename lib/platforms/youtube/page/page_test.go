package page

import (
	"bytes"
	"errors"
	"testing"

	"ytfeed/lib/testutil"

	_ "embed"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

//go:embed history_page_test.html
var historyPageTest []byte

func parseDoc(t testing.TB, html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBufferString(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestParseFixture(t *testing.T) {
	p, err := Parse(historyPageTest)
	require.NoError(t, err)

	expected := Config{
		APIKey:             "AIzaSyFixtureKey",
		VisitorData:        "CgtWaXNpdG9y",
		DelegatedSessionID: "delegated-7",
		SessionIndex:       "1",
		ClientVersion:      "2.20250101.00.00",
		ClientNameCode:     "1",
	}
	if diff := cmp.Diff(expected, p.Config); diff != "" {
		t.Fatal(diff)
	}
	require.NoError(t, p.Config.Validate())

	videoID, err := p.State.Lookup(
		"contents", "twoColumnBrowseResultsRenderer", "tabs", 0,
		"tabRenderer", "content", "sectionListRenderer", "contents", 0,
		"itemSectionRenderer", "contents", 0, "videoRenderer", "videoId",
	).Str()
	require.NoError(t, err)
	require.Equal(t, "dQw4w9WgXcQ", videoID)
}

func TestExtractStateVariants(t *testing.T) {
	expected := map[string]any{"a": []any{map[string]any{"b": true}}}

	testCases := []struct {
		name   string
		script string
	}{
		{
			name:   "var assignment",
			script: `var ytInitialData = {"a":[{"b":true}]};`,
		},
		{
			name:   "var assignment without spaces",
			script: `var ytInitialData={"a":[{"b":true}]};`,
		},
		{
			name:   "window assignment",
			script: `window["ytInitialData"] = {"a":[{"b":true}]};`,
		},
		{
			name:   "json parse",
			script: `window["ytInitialData"] = JSON.parse("{\"a\":[{\"b\":true}]}");`,
		},
		{
			name: "trailing statements on later lines",
			script: `
				var ytInitialData = {"a":[{"b":true}]};
				if (window.ytcsi) {window.ytcsi.tick('pdr', null, '');}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := parseDoc(t, "<html><body><script>var other = 1;</script><script>"+tc.script+"</script></body></html>")
			node, err := ExtractState(doc)
			require.NoError(t, err)
			if diff := cmp.Diff(expected, node.Value()); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestExtractStateErrors(t *testing.T) {
	testCases := []struct {
		name string
		html string
	}{
		{name: "no script", html: "<html><script>var x = 1;</script></html>"},
		{name: "broken json", html: `<html><script>var ytInitialData = {"a":;</script></html>`},
		{name: "not an object", html: `<html><script>var ytInitialData = [1, 2];</script></html>`},
		{name: "broken json parse", html: `<html><script>var ytInitialData = JSON.parse({});</script></html>`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExtractState(parseDoc(t, tc.html))
			var extractErr *ExtractionError
			require.ErrorAs(t, err, &extractErr)
			require.Equal(t, KindState, extractErr.Kind)
		})
	}
}

func TestExtractConfig(t *testing.T) {
	html := testutil.PageHTML(testutil.Obj{}, testutil.Ytcfg(testutil.Obj{
		"SESSION_INDEX": 2,
	}))
	cfg, err := ExtractConfig(parseDoc(t, html))
	require.NoError(t, err)
	require.Equal(t, testutil.TestAPIKey, cfg.APIKey)
	require.Equal(t, testutil.TestSessionID, cfg.UserSessionID)
	require.Equal(t, "2", cfg.SessionIndex)
	require.Equal(t, map[string]any{
		"clientName":    "WEB",
		"clientVersion": testutil.TestClientVersion,
	}, cfg.ClientContext())

	html = testutil.PageHTML(testutil.Obj{}, testutil.Ytcfg(testutil.Obj{
		"SESSION_INDEX": nil,
	}))
	cfg, err = ExtractConfig(parseDoc(t, html))
	require.NoError(t, err)
	require.Equal(t, "0", cfg.SessionIndex)
}

func TestExtractConfigMissing(t *testing.T) {
	_, err := ExtractConfig(parseDoc(t, `<html><script>ytcfg.set({"A": 1});</script></html>`))
	var extractErr *ExtractionError
	require.ErrorAs(t, err, &extractErr)
	require.Equal(t, KindConfig, extractErr.Kind)

	_, err = Parse([]byte(`<html><script>var ytInitialData = {};</script></html>`))
	require.ErrorAs(t, err, &extractErr)
	require.Equal(t, KindConfig, extractErr.Kind)
}

func TestConfigValidate(t *testing.T) {
	err := Config{}.Validate()
	var missing *MissingConfigFieldError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, []string{
		"INNERTUBE_API_KEY",
		"INNERTUBE_CONTEXT_CLIENT_VERSION",
		"DELEGATED_SESSION_ID or USER_SESSION_ID",
	}, missing.Fields)

	require.NoError(t, Config{
		APIKey:             "k",
		ClientVersion:      "v",
		DelegatedSessionID: "d",
	}.Validate())
}

func TestNode(t *testing.T) {
	node, err := DecodeNode([]byte(`{"a": {"b": [{"c": "x"}, {"n": 12}]}, "t": true}`))
	require.NoError(t, err)

	s, err := node.Lookup("a", "b", 0, "c").Str()
	require.NoError(t, err)
	require.Equal(t, "x", s)

	n, err := node.Lookup("a", "b", 1, "n").Int()
	require.NoError(t, err)
	require.Equal(t, int64(12), n)
	require.Equal(t, "12", node.Lookup("a", "b", 1, "n").StrOr(""))

	require.True(t, node.Get("t").BoolOr(false))
	require.True(t, node.Has("a"))
	require.False(t, node.Has("z"))

	missing := node.Lookup("a", "b", 5, "c")
	require.False(t, missing.Exists())
	var fieldErr *MissingFieldError
	require.True(t, errors.As(missing.Err(), &fieldErr))
	require.Equal(t, "a.b[5]", fieldErr.Path)

	_, err = node.Lookup("a", "b").Str()
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "a.b", fieldErr.Path)
	require.NotEmpty(t, fieldErr.Reason)

	list, err := node.Lookup("a", "b").List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "a.b[1]", list[1].Path())

	var decoded struct {
		C string `json:"c"`
	}
	require.NoError(t, list[0].Decode(&decoded))
	require.Equal(t, "x", decoded.C)
}
