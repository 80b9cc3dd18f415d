package account

import (
	"context"

	"ytfeed/lib/platforms/youtube/core"
	"ytfeed/lib/platforms/youtube/feed"
	"ytfeed/lib/platforms/youtube/innertube"
	"ytfeed/lib/platforms/youtube/page"

	"go.opentelemetry.io/otel/codes"
)

func historyVideo(entry feed.Entry) (page.Node, string, bool) {
	renderer := entry.Node.Get("videoRenderer")
	videoID, err := renderer.Get("videoId").Str()
	if err != nil || videoID == "" {
		return page.Node{}, "", false
	}
	return renderer, videoID, true
}

func historyFeedbackToken(renderer page.Node, videoID string) (string, error) {
	token := renderer.Lookup(
		"menu", "menuRenderer", "topLevelButtons", 0,
		"buttonRenderer", "serviceEndpoint", "feedbackEndpoint", "feedbackToken",
	)
	value, err := token.Str()
	if err != nil || value == "" {
		return "", &NoFeedbackTokenError{What: "history entry " + videoID, Err: token.Err()}
	}
	return value, nil
}

// HistoryEntries lists the video renderers of the watch history.
func (c *Client) HistoryEntries(ctx context.Context) (*feed.Seq[page.Node], error) {
	traversal, err := c.open(ctx, feed.History())
	if err != nil {
		return nil, err
	}
	return feed.Map(traversal, func(entry feed.Entry) (page.Node, bool, error) {
		renderer, _, ok := historyVideo(entry)
		return renderer, ok, nil
	}), nil
}

// HistoryVideoIDs lists the video ids of the watch history, most recent
// first.
func (c *Client) HistoryVideoIDs(ctx context.Context) (*feed.Seq[string], error) {
	traversal, err := c.open(ctx, feed.History())
	if err != nil {
		return nil, err
	}
	return feed.Map(traversal, func(entry feed.Entry) (string, bool, error) {
		_, videoID, ok := historyVideo(entry)
		return videoID, ok, nil
	}), nil
}

func (c *Client) HistoryRecords(ctx context.Context) (*feed.Seq[HistoryRecord], error) {
	traversal, err := c.open(ctx, feed.History())
	if err != nil {
		return nil, err
	}
	return feed.Map(traversal, func(entry feed.Entry) (HistoryRecord, bool, error) {
		renderer, videoID, ok := historyVideo(entry)
		if !ok {
			return HistoryRecord{}, false, nil
		}
		return historyRecord(renderer, videoID, core.WatchURL(c.origin(), videoID)), true, nil
	}), nil
}

type historyTarget struct {
	videoID string
	token   string
}

// historyTargets walks the whole history collecting the feedback tokens of
// the entries keep accepts, before anything is removed.
func (c *Client) historyTargets(ctx context.Context, keep func(videoID string) bool) ([]historyTarget, page.Config, error) {
	traversal, err := c.open(ctx, feed.History())
	if err != nil || traversal == nil {
		return nil, page.Config{}, err
	}

	var targets []historyTarget
	for traversal.Next(ctx) {
		renderer, videoID, ok := historyVideo(traversal.Entry())
		if !ok || !keep(videoID) {
			continue
		}
		token, err := historyFeedbackToken(renderer, videoID)
		if err != nil {
			return nil, page.Config{}, err
		}
		targets = append(targets, historyTarget{videoID: videoID, token: token})
	}
	if err := traversal.Err(); err != nil {
		return nil, page.Config{}, err
	}
	return targets, traversal.Config(), nil
}

// ClearHistory removes every watch history entry one by one. It returns true
// when every removal was processed, an empty history counts as cleared.
func (c *Client) ClearHistory(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "client:ClearHistory")
	defer span.End()

	targets, cfg, err := c.historyTargets(ctx, func(string) bool { return true })
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	c.tel.ReportDebug(report_clear_history, len(targets))

	allProcessed := true
	for _, target := range targets {
		ok, err := c.mutate(ctx, cfg, innertube.Call{
			FeedbackToken: target.token,
			Referer:       core.WatchHistoryPath,
		})
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return false, err
		}
		if !ok {
			c.tel.ReportWarning(report_clear_history, "not processed", target.videoID)
			allProcessed = false
		}
	}
	return allProcessed, nil
}

func browseFeedActions(state page.Node) page.Node {
	return state.Lookup(
		"contents", "twoColumnBrowseResultsRenderer",
		"secondaryContents", "browseFeedActionsRenderer", "contents",
	)
}

func confirmEndpoint(button page.Node) page.Node {
	return button.Lookup(
		"buttonRenderer", "navigationEndpoint", "confirmDialogEndpoint",
		"content", "confirmDialogRenderer", "confirmEndpoint",
	)
}

// ClearHistoryAll clears the whole watch history with the page's clear all
// button. It returns false without a call when the button is disabled.
func (c *Client) ClearHistoryAll(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "client:ClearHistoryAll")
	defer span.End()

	p, err := c.fetchPage(ctx, core.WatchHistoryPath)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	actions := browseFeedActions(p.State)
	if actions.At(0).Lookup("buttonRenderer", "isDisabled").BoolOr(false) {
		c.tel.ReportDebug(report_clear_history_all, "clear history button is disabled")
		return false, nil
	}

	tokenNode := confirmEndpoint(actions.At(1)).Lookup("feedbackEndpoint", "feedbackToken")
	token, err := tokenNode.Str()
	if err != nil || token == "" {
		return false, &NoFeedbackTokenError{What: "clear history button", Err: tokenNode.Err()}
	}
	return c.mutate(ctx, p.Config, innertube.Call{
		FeedbackToken: token,
		Referer:       core.WatchHistoryPath,
	})
}

// ToggleHistory pauses or resumes watch history, whichever the page offers.
func (c *Client) ToggleHistory(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "client:ToggleHistory")
	defer span.End()

	p, err := c.fetchPage(ctx, core.WatchHistoryPath)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	endpoint := confirmEndpoint(browseFeedActions(p.State).At(2))
	tokenNode := endpoint.Lookup("feedbackEndpoint", "feedbackToken")
	token, err := tokenNode.Str()
	if err != nil || token == "" {
		return false, &NoFeedbackTokenError{What: "pause history button", Err: tokenNode.Err()}
	}
	apiUrl := endpoint.Lookup("commandMetadata", "webCommandMetadata", "apiUrl").StrOr(innertube.FeedbackEndpoint)
	c.tel.ReportDebug(report_toggle_history, apiUrl)

	return c.mutate(ctx, p.Config, innertube.Call{
		Endpoint:      apiUrl,
		FeedbackToken: token,
		Referer:       core.WatchHistoryPath,
	})
}

// RemoveHistoryEntries removes the history entries of the given videos. It
// returns false when ids is empty, when no entry matches, or at the first
// removal that was not processed.
func (c *Client) RemoveHistoryEntries(ctx context.Context, videoIDs []string) (bool, error) {
	if len(videoIDs) == 0 {
		return false, nil
	}

	ctx, span := tracer.Start(ctx, "client:RemoveHistoryEntries")
	defer span.End()

	wanted := make(map[string]bool, len(videoIDs))
	for _, id := range videoIDs {
		wanted[id] = true
	}
	targets, cfg, err := c.historyTargets(ctx, func(videoID string) bool {
		return wanted[videoID]
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}
	if len(targets) == 0 {
		c.tel.ReportDebug(report_remove_history, "no matching entries", len(videoIDs))
		return false, nil
	}

	for _, target := range targets {
		ok, err := c.mutate(ctx, cfg, innertube.Call{
			FeedbackToken: target.token,
			Referer:       core.WatchHistoryPath,
		})
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return false, err
		}
		if !ok {
			c.tel.ReportWarning(report_remove_history, "not processed", target.videoID)
			return false, nil
		}
	}
	return true, nil
}
