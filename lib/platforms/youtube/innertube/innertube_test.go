package innertube

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"ytfeed/internal/components/telemetry"
	"ytfeed/lib/platforms/youtube/core"
	"ytfeed/lib/platforms/youtube/page"
	"ytfeed/lib/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func testConfig() page.Config {
	return page.Config{
		APIKey:        testutil.TestAPIKey,
		VisitorData:   "visitor-data",
		UserSessionID: testutil.TestSessionID,
		SessionIndex:  "0",
		ClientVersion: testutil.TestClientVersion,
	}
}

func newTestClient(t *testing.T) (*Client, *testutil.Site, *telemetry.Recorder) {
	site := testutil.NewSite(t)
	tel := &telemetry.Recorder{}
	session := testutil.NewSession(t, site, tel)
	return NewClient(session, testutil.NewClock(), tel), site, tel
}

func TestMutateRequest(t *testing.T) {
	client, site, _ := newTestClient(t)
	site.Queue(FeedbackEndpoint, testutil.Reply{Body: testutil.Processed(true)})

	ok, err := client.Mutate(context.Background(), testConfig(), Call{
		FeedbackToken:       "token-1",
		ClickTrackingParams: "tracking",
		Merge:               map[string]any{"extra": "value"},
		Referer:             core.WatchHistoryPath,
	})
	require.NoError(t, err)
	require.True(t, ok)

	calls := site.Calls(FeedbackEndpoint)
	require.Len(t, calls, 1)
	call := calls[0]

	require.Equal(t, map[string]string{
		"key":         testutil.TestAPIKey,
		"prettyPrint": "false",
	}, call.Query)

	expectedAuth := core.Sign(testutil.Epoch.Unix(), testutil.TestSecret, core.DefaultOrigin, testutil.TestSessionID)
	require.Equal(t, expectedAuth, call.Header.Get("Authorization"))
	require.Equal(t, "0", call.Header.Get("X-Goog-AuthUser"))
	require.Equal(t, core.DefaultOrigin, call.Header.Get("X-Origin"))
	require.Equal(t, "true", call.Header.Get("X-Youtube-Bootstrap-Logged-In"))
	require.Equal(t, "visitor-data", call.Header.Get("X-Goog-Visitor-Id"))
	require.Equal(t, "", call.Header.Get("X-Goog-PageId"))
	require.Equal(t, core.DefaultOrigin+core.WatchHistoryPath, call.Header.Get("Referer"))

	expectedBody := map[string]any{
		"context": map[string]any{
			"client": map[string]any{
				"clientName":    "WEB",
				"clientVersion": testutil.TestClientVersion,
			},
			"clickTracking": map[string]any{
				"clickTrackingParams": "tracking",
			},
		},
		"feedbackTokens":             []any{"token-1"},
		"isFeedbackTokenUnencrypted": false,
		"shouldMerge":                false,
		"extra":                      "value",
	}
	if diff := cmp.Diff(expectedBody, call.Body); diff != "" {
		t.Fatal(diff)
	}
}

func TestMutateDelegatedSession(t *testing.T) {
	client, site, _ := newTestClient(t)
	site.Queue(FeedbackEndpoint, testutil.Reply{Body: testutil.Processed(true)})

	cfg := testConfig()
	cfg.UserSessionID = ""
	cfg.DelegatedSessionID = "delegated"
	cfg.SessionIndex = "3"
	_, err := client.Mutate(context.Background(), cfg, Call{FeedbackToken: "t"})
	require.NoError(t, err)

	call := site.Calls(FeedbackEndpoint)[0]
	require.Equal(t, "delegated", call.Header.Get("X-Goog-PageId"))
	require.Equal(t, "3", call.Header.Get("X-Goog-AuthUser"))
	require.Equal(t,
		core.Sign(testutil.Epoch.Unix(), testutil.TestSecret, core.DefaultOrigin, ""),
		call.Header.Get("Authorization"),
	)
}

func TestMutateResults(t *testing.T) {
	testCases := []struct {
		name     string
		body     any
		expected bool
	}{
		{name: "processed", body: testutil.Processed(true), expected: true},
		{name: "not processed", body: testutil.Processed(false), expected: false},
		{name: "no feedback responses", body: testutil.Obj{}, expected: false},
		{name: "empty feedback responses", body: testutil.Obj{"feedbackResponses": testutil.List{}}, expected: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client, site, _ := newTestClient(t)
			site.Queue(FeedbackEndpoint, testutil.Reply{Body: tc.body})
			ok, err := client.Mutate(context.Background(), testConfig(), Call{FeedbackToken: "t"})
			require.NoError(t, err)
			require.Equal(t, tc.expected, ok)
		})
	}
}

func TestCallBodyWithoutToken(t *testing.T) {
	body := Call{Merge: map[string]any{"continuation": "abc"}}.Body(testConfig())
	require.NotContains(t, body, "feedbackTokens")
	require.NotContains(t, body, "shouldMerge")
	require.Equal(t, "abc", body["continuation"])
	require.NotContains(t, body["context"], "clickTracking")
}

func TestLoggedOut(t *testing.T) {
	client, site, tel := newTestClient(t)
	site.Queue(BrowseEndpoint, testutil.Reply{Body: testutil.LoggedOut()})

	_, err := client.Query(context.Background(), testConfig(), Call{Endpoint: BrowseEndpoint})
	var authErr *AuthenticationExpiredError
	require.ErrorAs(t, err, &authErr)
	require.Len(t, tel.Find(telemetry.REPORT_BROKEN, report_client_logged_out), 1)
}

func TestStatusClassification(t *testing.T) {
	testCases := []struct {
		status    int
		transient bool
	}{
		{status: http.StatusTooManyRequests, transient: true},
		{status: http.StatusInternalServerError, transient: true},
		{status: http.StatusBadGateway, transient: true},
		{status: http.StatusServiceUnavailable, transient: true},
		{status: http.StatusGatewayTimeout, transient: true},
		{status: http.StatusBadRequest, transient: false},
		{status: http.StatusForbidden, transient: false},
		{status: http.StatusNotFound, transient: false},
	}
	for _, tc := range testCases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			client, site, _ := newTestClient(t)
			site.Queue(BrowseEndpoint, testutil.Reply{Status: tc.status, Body: testutil.Obj{}})

			_, err := client.Query(context.Background(), testConfig(), Call{Endpoint: BrowseEndpoint})
			var transient *TransientError
			var status *StatusError
			if tc.transient {
				require.ErrorAs(t, err, &transient)
				require.Equal(t, tc.status, transient.Status)
				return
			}
			require.ErrorAs(t, err, &status)
			require.Equal(t, tc.status, status.Status)
			require.False(t, errors.As(err, &transient))
		})
	}
}

func TestConnectionErrorIsTransient(t *testing.T) {
	client, site, _ := newTestClient(t)
	site.Server.Close()

	_, err := client.Query(context.Background(), testConfig(), Call{Endpoint: BrowseEndpoint})
	var transient *TransientError
	require.ErrorAs(t, err, &transient)
	require.Equal(t, 0, transient.Status)
}

func TestCancelledContext(t *testing.T) {
	client, site, _ := newTestClient(t)
	site.Queue(BrowseEndpoint, testutil.Reply{Body: testutil.Obj{}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Query(ctx, testConfig(), Call{Endpoint: BrowseEndpoint})
	require.ErrorIs(t, err, context.Canceled)
	var transient *TransientError
	require.False(t, errors.As(err, &transient))
}

func TestMalformedBody(t *testing.T) {
	client, site, _ := newTestClient(t)
	site.Queue(BrowseEndpoint, testutil.Reply{Raw: "<html>not json"})

	_, err := client.Query(context.Background(), testConfig(), Call{Endpoint: BrowseEndpoint})
	var decodeErr *BodyDecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestPreconditions(t *testing.T) {
	client, site, _ := newTestClient(t)

	_, err := client.Mutate(context.Background(), page.Config{}, Call{FeedbackToken: "t"})
	var missing *page.MissingConfigFieldError
	require.ErrorAs(t, err, &missing)

	session, err := core.NewSession(core.SessionOptions{BaseUrl: site.URL(), RequestsPerSecond: -1}, &telemetry.Recorder{})
	require.NoError(t, err)
	unsigned := NewClient(session, testutil.NewClock(), &telemetry.Recorder{})
	_, err = unsigned.Mutate(context.Background(), testConfig(), Call{FeedbackToken: "t"})
	require.ErrorIs(t, err, core.ErrMissingSecretCookie)

	require.Empty(t, site.AllCalls())
}

func TestEnvelopeShapes(t *testing.T) {
	decode := func(v any) *Envelope {
		node, err := page.DecodeNode([]byte(mustJSON(t, v)))
		require.NoError(t, err)
		return &Envelope{Root: node}
	}

	appendEnv := decode(testutil.AppendEnvelope(testutil.Obj{"a": 1}, testutil.Obj{"b": 2}))
	require.Equal(t, ShapeAppend, appendEnv.Shape())
	items, err := appendEnv.Items()
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.False(t, appendEnv.Continuations().Exists())

	contentsEnv := decode(testutil.ContinuationContentsEnvelope(
		"playlistVideoListContinuation",
		testutil.NextContinuation("next"),
		testutil.Obj{"a": 1},
	))
	require.Equal(t, ShapeContinuationContents, contentsEnv.Shape())
	items, err = contentsEnv.Items()
	require.NoError(t, err)
	require.Len(t, items, 1)
	token, err := contentsEnv.Continuations().Lookup(0, "nextContinuationData", "continuation").Str()
	require.NoError(t, err)
	require.Equal(t, "next", token)

	unknown := decode(testutil.Obj{"somethingNew": testutil.Obj{}})
	require.Equal(t, ShapeUnrecognized, unknown.Shape())
	_, err = unknown.Items()
	require.Error(t, err)
}
