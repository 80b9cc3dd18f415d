package account

import (
	"context"
	"errors"
	"fmt"

	"ytfeed/internal/components/assert"
	"ytfeed/internal/components/chrono"
	"ytfeed/internal/components/telemetry"
	"ytfeed/lib/platforms/youtube/core"
	"ytfeed/lib/platforms/youtube/feed"
	"ytfeed/lib/platforms/youtube/innertube"
	"ytfeed/lib/platforms/youtube/page"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("platforms/youtube/account")

const (
	report_clear_history       = "client.clear-history"
	report_clear_history_all   = "client.clear-history-all"
	report_clear_playlist      = "client.clear-playlist"
	report_toggle_history      = "client.toggle-history"
	report_remove_history      = "client.remove-history-entries"
	report_remove_playlist     = "client.remove-playlist-video"
	report_mutation_cache_fill = "mutation_cache.fill"
)

// NoFeedbackTokenError is returned when the control a mutation needs has no
// feedback token on the page.
type NoFeedbackTokenError struct {
	What string
	Err  error
}

func (e *NoFeedbackTokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no feedback token found for %s: %s", e.What, e.Err)
	}
	return fmt.Sprintf("no feedback token found for %s", e.What)
}

func (e *NoFeedbackTokenError) Unwrap() error {
	return e.Err
}

// Client runs the user-facing operations on a signed-in session.
type Client struct {
	deps feed.Deps
	tel  telemetry.API
}

func NewClient(session *core.Session, clock chrono.API, tel telemetry.API) *Client {
	assert.NotNil(session)
	assert.NotNil(clock)
	assert.NotNil(tel)
	return &Client{
		deps: feed.Deps{
			Session: session,
			Client:  innertube.NewClient(session, clock, tel),
			Clock:   clock,
			Tel:     tel,
		},
		tel: telemetry.NewScopedAPI("account", tel),
	}
}

func (c *Client) origin() string {
	return c.deps.Session.Origin
}

// open opens source, an empty feed is returned as a nil traversal.
func (c *Client) open(ctx context.Context, source feed.Source) (*feed.Traversal, error) {
	traversal, err := feed.Open(ctx, c.deps, source)
	if errors.Is(err, feed.ErrEmptyFeed) {
		return nil, nil
	}
	return traversal, err
}

// fetchPage fetches and parses a page outside of a traversal.
func (c *Client) fetchPage(ctx context.Context, path string) (page.Page, error) {
	body, err := c.deps.Session.Fetch(ctx, path)
	if err != nil {
		return page.Page{}, err
	}
	return page.Parse(body)
}

func (c *Client) mutate(ctx context.Context, cfg page.Config, call innertube.Call) (bool, error) {
	return c.deps.Client.Mutate(ctx, cfg, call)
}
