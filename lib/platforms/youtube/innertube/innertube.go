package innertube

import (
	"context"
	"fmt"

	"ytfeed/internal/components/assert"
	"ytfeed/internal/components/chrono"
	"ytfeed/internal/components/telemetry"
	"ytfeed/lib/platforms/youtube/core"
	"ytfeed/lib/platforms/youtube/page"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("platforms/youtube/innertube")

const (
	FeedbackEndpoint     = "/youtubei/v1/feedback"
	BrowseEndpoint       = "/youtubei/v1/browse"
	EditPlaylistEndpoint = "/youtubei/v1/browse/edit_playlist"
)

const (
	report_client_call       = "client.call"
	report_client_logged_out = "client.logged-out"
	report_client_calls      = "client.calls"
)

// Call describes one innertube request.
type Call struct {
	// Endpoint defaults to FeedbackEndpoint.
	Endpoint string
	// FeedbackToken adds the feedbackTokens fields to the body when set.
	FeedbackToken       string
	ClickTrackingParams string
	// Merge is merged into the top level of the body, replacing keys.
	Merge map[string]any
	// Referer is a path on the site's origin.
	Referer string
}

func (c Call) endpoint() string {
	if c.Endpoint == "" {
		return FeedbackEndpoint
	}
	return c.Endpoint
}

// Body builds the JSON body of the call.
func (c Call) Body(cfg page.Config) map[string]any {
	clientContext := map[string]any{
		"client": cfg.ClientContext(),
	}
	if c.ClickTrackingParams != "" {
		clientContext["clickTracking"] = map[string]any{
			"clickTrackingParams": c.ClickTrackingParams,
		}
	}
	body := map[string]any{
		"context": clientContext,
	}
	if c.FeedbackToken != "" {
		body["feedbackTokens"] = []string{c.FeedbackToken}
		body["isFeedbackTokenUnencrypted"] = false
		body["shouldMerge"] = false
	}
	for k, v := range c.Merge {
		body[k] = v
	}
	return body
}

type Client struct {
	session *core.Session
	signer  core.Signer
	tel     telemetry.API
	calls   int64
}

func NewClient(session *core.Session, clock chrono.API, tel telemetry.API) *Client {
	assert.NotNil(session)
	assert.NotNil(tel)
	return &Client{
		session: session,
		signer:  core.NewSigner(clock, session.Origin),
		tel:     telemetry.NewScopedAPI("innertube", tel),
	}
}

func (c *Client) headers(cfg page.Config, call Call) (map[string]string, error) {
	authorization, err := c.signer.Authorization(c.session, cfg.UserSessionID)
	if err != nil {
		return nil, err
	}
	headers := map[string]string{
		"Authorization":                 authorization,
		"X-Goog-AuthUser":               cfg.SessionIndex,
		"X-Origin":                      c.session.Origin,
		"Origin":                        c.session.Origin,
		"X-Youtube-Bootstrap-Logged-In": "true",
		"Content-Type":                  "application/json",
	}
	if headers["X-Goog-AuthUser"] == "" {
		headers["X-Goog-AuthUser"] = "0"
	}
	if cfg.DelegatedSessionID != "" {
		headers["X-Goog-PageId"] = cfg.DelegatedSessionID
	}
	if cfg.VisitorData != "" {
		headers["X-Goog-Visitor-Id"] = cfg.VisitorData
	}
	if cfg.ClientNameCode != "" {
		headers["X-Youtube-Client-Name"] = cfg.ClientNameCode
	}
	if cfg.ClientVersion != "" {
		headers["X-Youtube-Client-Version"] = cfg.ClientVersion
	}
	if call.Referer != "" {
		headers["Referer"] = c.session.Origin + call.Referer
	}
	return headers, nil
}

func (c *Client) do(ctx context.Context, cfg page.Config, call Call) (page.Node, error) {
	endpoint := call.endpoint()

	ctx, span := tracer.Start(ctx, "client:call")
	defer span.End()
	span.SetAttributes(attribute.String("endpoint", endpoint))

	err := cfg.Validate()
	if err != nil {
		span.SetStatus(codes.Error, "invalid config")
		return page.Node{}, err
	}
	headers, err := c.headers(cfg, call)
	if err != nil {
		span.SetStatus(codes.Error, "failed to sign call")
		return page.Node{}, err
	}

	c.calls++
	c.tel.ReportCount(report_client_calls, c.calls)

	res, err := c.session.Http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetQueryParam("key", cfg.APIKey).
		SetQueryParam("prettyPrint", "false").
		SetBody(call.Body(cfg)).
		Post(endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		if ctx.Err() != nil {
			return page.Node{}, fmt.Errorf("%s: %w", endpoint, ctx.Err())
		}
		c.tel.ReportDebug(report_client_call, endpoint, err)
		return page.Node{}, &TransientError{Endpoint: endpoint, Err: err}
	}

	status := res.StatusCode()
	span.SetAttributes(attribute.Int("status", status))
	if status < 200 || status >= 300 {
		span.SetStatus(codes.Error, res.Status())
		if isTransientStatus(status) {
			return page.Node{}, &TransientError{Endpoint: endpoint, Status: status}
		}
		return page.Node{}, &StatusError{Endpoint: endpoint, Status: status, Body: res.String()}
	}

	root, err := page.DecodeNode(res.Body())
	if err == nil {
		if _, ok := root.Value().(map[string]any); !ok {
			err = fmt.Errorf("expected an object, got %T", root.Value())
		}
	}
	if err != nil {
		span.SetStatus(codes.Error, "failed to decode response")
		return page.Node{}, &BodyDecodeError{Endpoint: endpoint, Err: err}
	}

	loggedOut := root.Lookup(
		"responseContext",
		"mainAppWebResponseContext",
		"loggedOut",
	).BoolOr(false)
	if loggedOut {
		c.tel.ReportBroken(report_client_logged_out, endpoint)
		span.SetStatus(codes.Error, "logged out")
		return page.Node{}, &AuthenticationExpiredError{Endpoint: endpoint}
	}

	return root, nil
}

// Mutate sends a call whose result is the processed flag of its first
// feedback response, false when the response carries none.
func (c *Client) Mutate(ctx context.Context, cfg page.Config, call Call) (bool, error) {
	root, err := c.do(ctx, cfg, call)
	if err != nil {
		return false, err
	}
	return root.Lookup("feedbackResponses", 0, "isProcessed").BoolOr(false), nil
}

// Query sends a call and returns the decoded response.
func (c *Client) Query(ctx context.Context, cfg page.Config, call Call) (*Envelope, error) {
	root, err := c.do(ctx, cfg, call)
	if err != nil {
		return nil, err
	}
	return &Envelope{Root: root}, nil
}

// Post sends a call and returns the decoded response without interpreting it,
// for endpoints that answer with something other than feedback responses.
func (c *Client) Post(ctx context.Context, cfg page.Config, call Call) (page.Node, error) {
	return c.do(ctx, cfg, call)
}
