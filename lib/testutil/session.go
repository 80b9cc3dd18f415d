package testutil

import (
	"net/http"
	"testing"
	"time"

	"ytfeed/internal/components/chrono"
	"ytfeed/internal/components/telemetry"
	"ytfeed/lib/platforms/youtube/core"
)

// Epoch is the frozen time tests sign calls at.
var Epoch = time.Unix(1700000000, 0).UTC()

// NewSession returns an unthrottled session pointed at site, signed in with
// TestSecret.
func NewSession(t testing.TB, site *Site, tel telemetry.API) *core.Session {
	session, err := core.NewSession(core.SessionOptions{
		BaseUrl:           site.URL(),
		RequestsPerSecond: -1,
	}, tel)
	if err != nil {
		t.Fatal(err)
	}
	session.AddCookies([]*http.Cookie{
		{Name: "SAPISID", Value: TestSecret},
	})
	return session
}

func NewClock() *chrono.Frozen {
	return chrono.NewFrozen(Epoch)
}
