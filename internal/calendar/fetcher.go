package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/openquants/tradelens/internal/infra"
)

// Fetcher downloads the raw calendar page for a given day. Fetching is
// deliberately thin: retry policy and cancellation belong to the caller,
// and the markup goes to Extract untouched.
type Fetcher struct {
	baseURL string
	cache   *infra.Cache
	limiter *infra.RateLimiter
}

// NewFetcher creates a fetcher for the configured calendar source.
func NewFetcher(baseURL string) *Fetcher {
	return &Fetcher{
		baseURL: baseURL,
		cache:   infra.NewCache(15 * time.Minute),
		limiter: infra.NewRateLimiter(1, time.Second),
	}
}

// FetchPage returns the markup of the calendar page for day (UTC). The
// page for a day already fetched recently comes from cache.
func (f *Fetcher) FetchPage(ctx context.Context, day time.Time) (string, error) {
	key := "page:" + day.UTC().Format("2006-01-02")
	if cached, ok := f.cache.Get(key); ok {
		return cached.(string), nil
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?day=%s", f.baseURL, day.UTC().Format("2006-01-02"))
	body, err := infra.Get(ctx, url, map[string]string{"Accept": "text/html"})
	if err != nil {
		return "", fmt.Errorf("fetch calendar page: %w", err)
	}

	markup := string(body)
	f.cache.Set(key, markup)
	return markup, nil
}
