package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ytfeed/internal/components/assert"
	"ytfeed/internal/components/chrono"
	"ytfeed/internal/components/telemetry"
	"ytfeed/lib/platforms/youtube/core"
	"ytfeed/lib/platforms/youtube/innertube"
	"ytfeed/lib/platforms/youtube/page"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("platforms/youtube/feed")

const (
	report_open                       = "traversal.open"
	report_continue                   = "traversal.continue"
	report_continue_retry             = "traversal.continue-retry"
	report_continue_exhausted         = "traversal.continue-exhausted"
	report_continue_shape             = "traversal.continue-shape"
	report_items_yielded              = "traversal.items"
	report_continue_retries           = "traversal.retries"
	report_read_list_marker_position  = "read_list.marker-position"
	report_read_list_ambiguous_cursor = "read_list.ambiguous-cursor"
)

// MaxCallsPerCursor bounds the continuation calls made for one cursor,
// including the first.
const MaxCallsPerCursor = 5

// ErrEmptyFeed is wrapped by EmptyFeedError.
var ErrEmptyFeed = errors.New("feed is empty")

// EmptyFeedError is returned by Open when the page has no list container.
type EmptyFeedError struct {
	Source string
}

func (e *EmptyFeedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, ErrEmptyFeed)
}

func (e *EmptyFeedError) Unwrap() error {
	return ErrEmptyFeed
}

// UnexpectedResponseShapeError describes a continuation response the engine
// does not recognize. It ends the traversal without being surfaced.
type UnexpectedResponseShapeError struct {
	Source   string
	Endpoint string
	Err      error
}

func (e *UnexpectedResponseShapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: unexpected response from %s: %s", e.Source, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("%s: unexpected response from %s", e.Source, e.Endpoint)
}

func (e *UnexpectedResponseShapeError) Unwrap() error {
	return e.Err
}

type State int

const (
	// StateSeeded holds the entries of the first page.
	StateSeeded State = iota
	// StateContinuing holds the entries of a continuation page.
	StateContinuing
	// StateTerminated is reached when the feed ends, including the soft
	// failures that end it early.
	StateTerminated
	// StateFailed is reached on an error returned by Err.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSeeded:
		return "seeded"
	case StateContinuing:
		return "continuing"
	case StateTerminated:
		return "terminated"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

type Deps struct {
	Session *core.Session
	Client  *innertube.Client
	Clock   chrono.API
	Tel     telemetry.API
}

// Entry is one content item of a feed.
type Entry struct {
	Node page.Node
	// Page is 0 for the first page and counts continuation pages after it.
	Page int
}

// Traversal walks a feed lazily: a continuation is only fetched once every
// entry before it has been consumed. It is not restartable.
type Traversal struct {
	deps   Deps
	tel    telemetry.API
	source Source
	cfg    page.Config

	state   State
	page    int
	pending []page.Node
	cursor  *Cursor
	entry   Entry
	yielded int64
	retries int64
	err     error
}

// Open fetches the first page of source and reads its list.
func Open(ctx context.Context, deps Deps, source Source) (*Traversal, error) {
	assert.NotNil(deps.Session)
	assert.NotNil(deps.Client)
	assert.NotNil(deps.Clock)
	assert.NotNil(deps.Tel)
	assert.True(source.Container != nil && source.Expand != nil, "feed source needs Container and Expand")

	ctx, span := tracer.Start(ctx, "Open")
	defer span.End()
	span.SetAttributes(
		attribute.String("source", source.Name),
		attribute.String("path", source.Path),
	)

	tel := telemetry.NewScopedAPI("feed", deps.Tel)

	body, err := deps.Session.Fetch(ctx, source.Path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch page")
		return nil, fmt.Errorf("fetch %s: %w", source.Name, err)
	}
	p, err := page.Parse(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse page")
		return nil, fmt.Errorf("%s: %w", source.Name, err)
	}

	container := source.Container(p.State)
	if !container.Exists() {
		tel.ReportDebug(report_open, source.Name, "no container", container.Path())
		return nil, &EmptyFeedError{Source: source.Name}
	}

	entries, cursor := readList(
		source,
		container.Get("contents").ListOr(),
		container.Get("continuations"),
		tel,
	)
	tel.ReportDebug(report_open, source.Name, len(entries), cursor != nil)

	return &Traversal{
		deps:    deps,
		tel:     tel,
		source:  source,
		cfg:     p.Config,
		state:   StateSeeded,
		pending: entries,
		cursor:  cursor,
	}, nil
}

// Config is the page config the feed was opened with, reusable for calls
// on the same page.
func (t *Traversal) Config() page.Config {
	return t.cfg
}

func (t *Traversal) State() State {
	return t.state
}

// Entry is the entry made current by the last successful Next.
func (t *Traversal) Entry() Entry {
	return t.entry
}

// Err returns the error that failed the traversal, soft terminations leave
// it nil.
func (t *Traversal) Err() error {
	return t.err
}

// Next advances to the next entry, fetching continuations as needed.
func (t *Traversal) Next(ctx context.Context) bool {
	for {
		if len(t.pending) > 0 {
			t.entry = Entry{Node: t.pending[0], Page: t.page}
			t.pending = t.pending[1:]
			t.yielded++
			t.tel.ReportCount(report_items_yielded, t.yielded)
			return true
		}
		if t.state == StateTerminated || t.state == StateFailed {
			return false
		}
		if t.cursor == nil {
			t.state = StateTerminated
			return false
		}
		if !t.advance(ctx) {
			return false
		}
	}
}

func (t *Traversal) terminate() bool {
	t.state = StateTerminated
	t.cursor = nil
	return false
}

func (t *Traversal) fail(err error) bool {
	t.state = StateFailed
	t.cursor = nil
	t.err = err
	return false
}

// advance consumes the cursor and loads the page it points at.
func (t *Traversal) advance(ctx context.Context) bool {
	cursor := *t.cursor
	t.cursor = nil

	ctx, span := tracer.Start(ctx, "Traversal:advance")
	defer span.End()
	span.SetAttributes(
		attribute.String("source", t.source.Name),
		attribute.String("endpoint", cursor.Endpoint),
		attribute.Int("page", t.page+1),
	)

	env, err := t.query(ctx, cursor)
	if err != nil {
		span.RecordError(err)
		var transient *innertube.TransientError
		var decode *innertube.BodyDecodeError
		switch {
		case ctx.Err() != nil:
			t.tel.ReportDebug(report_continue, t.source.Name, "cancelled", ctx.Err())
			return t.terminate()
		case errors.As(err, &transient):
			t.tel.ReportWarning(report_continue_exhausted, t.source.Name, MaxCallsPerCursor, err)
			return t.terminate()
		case errors.As(err, &decode):
			t.tel.ReportWarning(report_continue_shape, &UnexpectedResponseShapeError{
				Source:   t.source.Name,
				Endpoint: cursor.Endpoint,
				Err:      err,
			})
			return t.terminate()
		}
		span.SetStatus(codes.Error, "continuation failed")
		return t.fail(fmt.Errorf("%s: continue: %w", t.source.Name, err))
	}

	items, err := env.Items()
	if err != nil {
		t.tel.ReportWarning(report_continue_shape, &UnexpectedResponseShapeError{
			Source:   t.source.Name,
			Endpoint: cursor.Endpoint,
			Err:      err,
		})
		return t.terminate()
	}

	entries, next := readList(t.source, items, env.Continuations(), t.tel)
	t.page++
	t.state = StateContinuing
	t.pending = entries
	t.cursor = next
	t.tel.ReportDebug(report_continue, t.source.Name, env.Shape().String(), len(entries), next != nil)
	return true
}

// query calls the continuation endpoint, retrying transient failures with
// 2, 4, 8 and 16 second pauses.
func (t *Traversal) query(ctx context.Context, cursor Cursor) (*innertube.Envelope, error) {
	call := innertube.Call{
		Endpoint:            cursor.Endpoint,
		ClickTrackingParams: cursor.TrackingParams,
		Merge:               map[string]any{"continuation": cursor.Token},
		Referer:             t.source.Path,
	}

	var lastErr error
	for attempt := 0; attempt < MaxCallsPerCursor; attempt++ {
		if attempt > 0 {
			delay := time.Duration(1<<attempt) * time.Second
			t.tel.ReportDebug(report_continue_retry, t.source.Name, attempt, delay.String(), lastErr)
			t.retries++
			t.tel.ReportCount(report_continue_retries, t.retries)
			err := t.deps.Clock.Sleep(ctx, delay)
			if err != nil {
				return nil, err
			}
		}

		env, err := t.deps.Client.Query(ctx, t.cfg, call)
		if err == nil {
			return env, nil
		}
		var transient *innertube.TransientError
		if !errors.As(err, &transient) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}
