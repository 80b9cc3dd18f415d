package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ytfeed/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func TestSessionCookies(t *testing.T) {
	var gotCookie, gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("SAPISID")
		if err == nil {
			gotCookie = c.Value
		}
		gotUserAgent = r.UserAgent()
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	tel := &telemetry.Recorder{}
	session, err := NewSession(SessionOptions{
		BaseUrl:           server.URL,
		RequestsPerSecond: -1,
	}, tel)
	require.NoError(t, err)
	require.Equal(t, DefaultOrigin, session.Origin)

	session.AddCookies([]*http.Cookie{
		{Domain: ".youtube.com", Name: "SAPISID", Value: "secret", Secure: true},
		{Name: ""},
		nil,
	})

	value, ok := session.Cookie("SAPISID")
	require.True(t, ok)
	require.Equal(t, "secret", value)
	_, ok = session.Cookie("SID")
	require.False(t, ok)

	secret, err := SecretCookie(session)
	require.NoError(t, err)
	require.Equal(t, "secret", secret)

	body, err := session.Fetch(context.Background(), WatchHistoryPath)
	require.NoError(t, err)
	require.Equal(t, "<html></html>", string(body))
	require.Equal(t, "secret", gotCookie)
	require.Equal(t, DefaultUserAgent, gotUserAgent)

	require.NotEmpty(t, tel.Find(telemetry.REPORT_DEBUG, "resty.request"))
}

func TestSessionFetchStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	session, err := NewSession(SessionOptions{BaseUrl: server.URL}, &telemetry.Recorder{})
	require.NoError(t, err)

	_, err = session.Fetch(context.Background(), "/playlist?list=nope")
	var statusErr *FetchStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusNotFound, statusErr.Status)
}

func TestSessionRejectsRelativeBaseUrl(t *testing.T) {
	_, err := NewSession(SessionOptions{BaseUrl: "/relative"}, &telemetry.Recorder{})
	require.Error(t, err)
}

func TestPlaylistPath(t *testing.T) {
	require.Equal(t, "/playlist?list=WL", PlaylistPath(WatchLaterPlaylistID))
	require.Equal(t, "/playlist?list=PL+a%26b", PlaylistPath("PL a&b"))
}
