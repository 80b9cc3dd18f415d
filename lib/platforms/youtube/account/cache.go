package account

import (
	"context"

	"ytfeed/lib/platforms/youtube/page"
)

// MutationCache holds the page fetched for a removal so that later removals
// can skip the fetch. It has a single slot and is owned by the caller, a
// zero value is an empty cache.
type MutationCache struct {
	filled bool
	page   page.Page
}

func (m *MutationCache) Filled() bool {
	return m != nil && m.filled
}

// Reset empties the cache.
func (m *MutationCache) Reset() {
	m.filled = false
	m.page = page.Page{}
}

// pageFor returns the cached page when cache is filled, otherwise fetches
// path and fills a non-nil cache with it.
func (c *Client) pageFor(ctx context.Context, path string, cache *MutationCache) (page.Page, error) {
	if cache.Filled() {
		return cache.page, nil
	}
	p, err := c.fetchPage(ctx, path)
	if err != nil {
		return page.Page{}, err
	}
	if cache != nil {
		cache.filled = true
		cache.page = p
		c.tel.ReportDebug(report_mutation_cache_fill, path)
	}
	return p, nil
}
