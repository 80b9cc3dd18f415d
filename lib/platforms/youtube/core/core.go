package core

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"ytfeed/internal/components/assert"
	"ytfeed/internal/components/telemetry"
	"ytfeed/lib/restyutil"
	libtelemetry "ytfeed/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	DefaultOrigin    = "https://www.youtube.com"
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36"

	WatchHistoryPath     = "/feed/history"
	WatchLaterPlaylistID = "WL"
)

// PlaylistPath is the page path of the playlist with the given id.
func PlaylistPath(playlistID string) string {
	return "/playlist?list=" + url.QueryEscape(playlistID)
}

// WatchURL is the watch page of a video on origin.
func WatchURL(origin, videoID string) string {
	return origin + "/watch?v=" + url.QueryEscape(videoID)
}

type SessionOptions struct {
	// Origin is used to sign calls and for the origin headers,
	// defaults to DefaultOrigin.
	Origin string
	// BaseUrl is where requests are sent, defaults to Origin.
	BaseUrl   string
	UserAgent string
	// RequestsPerSecond defaults to 2, a negative value disables pacing.
	RequestsPerSecond float64
	Burst             int
	// Timeout defaults to 30 seconds.
	Timeout time.Duration
	// Dump receives every request/response pair when set.
	Dump restyutil.InstrumentOutput
}

// Session holds the cookies and default headers shared by every call in a
// run. It is not safe for concurrent use.
type Session struct {
	BaseUrl *url.URL
	Origin  string
	Http    *resty.Client

	jar http.CookieJar
	tel telemetry.API
}

func NewSession(opts SessionOptions, tel telemetry.API) (*Session, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("youtube_session", tel)

	if opts.Origin == "" {
		opts.Origin = DefaultOrigin
	}
	if opts.BaseUrl == "" {
		opts.BaseUrl = opts.Origin
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.RequestsPerSecond == 0 {
		opts.RequestsPerSecond = 2
	}
	if opts.Burst <= 0 {
		opts.Burst = 2
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second * 30
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if baseUrl.Scheme == "" || baseUrl.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseUrl)
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeader("user-agent", opts.UserAgent)
	client.SetHeader("accept-language", "en-US,en;q=0.9")
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	client.SetTimeout(opts.Timeout)

	if opts.RequestsPerSecond > 0 {
		// max burst >= 2 just means that no requests will be dropped
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(client, tel)
	libtelemetry.InstrumentResty(client, "platforms/youtube/http")
	restyutil.InstrumentClient(client, opts.Dump)

	return &Session{
		BaseUrl: baseUrl,
		Origin:  opts.Origin,
		Http:    client,
		jar:     jar,
		tel:     tel,
	}, nil
}

// AddCookies stores cookies as host-only cookies of the base url, whatever
// domain they were exported from.
func (s *Session) AddCookies(cookies []*http.Cookie) {
	secure := s.BaseUrl.Scheme == "https"
	scoped := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		scoped = append(scoped, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     "/",
			Expires:  c.Expires,
			Secure:   c.Secure && secure,
			HttpOnly: c.HttpOnly,
		})
	}
	s.jar.SetCookies(s.BaseUrl, scoped)
	s.tel.ReportDebug("cookies added", len(scoped))
}

// Cookie returns the value of the named cookie currently in the jar.
func (s *Session) Cookie(name string) (string, bool) {
	for _, c := range s.jar.Cookies(s.BaseUrl) {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// Fetch gets the page at path and returns its body.
func (s *Session) Fetch(ctx context.Context, path string) ([]byte, error) {
	res, err := s.Http.R().
		SetContext(ctx).
		SetHeader("accept", "text/html,application/xhtml+xml").
		Get(path)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, &FetchStatusError{Path: path, Status: res.StatusCode()}
	}
	return res.Body(), nil
}

// FetchStatusError is returned when a page responds with a non-2xx status.
type FetchStatusError struct {
	Path   string
	Status int
}

func (e *FetchStatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.Path, e.Status)
}
