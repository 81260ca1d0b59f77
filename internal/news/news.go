// Package news fetches macro-news headlines from RSS feeds. It is
// supplementary display data for the dashboard; calendar correlation
// never depends on it. A failing feed is skipped, not fatal.
package news

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/phuslu/log"

	"github.com/openquants/tradelens/internal/infra"
	"github.com/openquants/tradelens/pkg/models"
)

// FeedSource is one configured RSS feed.
type FeedSource struct {
	Name string
	URL  string
}

// DefaultFeeds lists the macro/forex news feeds used when the config
// names none.
var DefaultFeeds = []FeedSource{
	{Name: "ForexLive", URL: "https://www.forexlive.com/feed/news"},
	{Name: "FXStreet", URL: "https://www.fxstreet.com/rss/news"},
	{Name: "Investing.com Economy", URL: "https://www.investing.com/rss/news_14.rss"},
}

// Service fetches and caches headlines from a set of feeds.
type Service struct {
	feeds   []FeedSource
	cache   *infra.Cache
	limiter *infra.RateLimiter
	parser  *gofeed.Parser
}

// NewService creates a news service. Empty feeds falls back to
// DefaultFeeds.
func NewService(feeds []FeedSource) *Service {
	if len(feeds) == 0 {
		feeds = DefaultFeeds
	}
	return &Service{
		feeds:   feeds,
		cache:   infra.NewCache(10 * time.Minute),
		limiter: infra.NewRateLimiter(2, time.Second),
		parser:  gofeed.NewParser(),
	}
}

// Headlines returns recent headlines across all feeds, newest first,
// capped at limit (0 means no cap).
func (s *Service) Headlines(ctx context.Context, limit int) ([]models.NewsHeadline, error) {
	cacheKey := fmt.Sprintf("news:%d", limit)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.([]models.NewsHeadline), nil
	}

	var all []models.NewsHeadline
	for _, feed := range s.feeds {
		items, err := s.fetchFeed(ctx, feed)
		if err != nil {
			log.Warn().Err(err).Str("feed", feed.Name).Msg("feed fetch failed, skipped")
			continue
		}
		all = append(all, items...)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].PublishedAt.After(all[j].PublishedAt)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	s.cache.Set(cacheKey, all)
	return all, nil
}

// fetchFeed pulls and converts one RSS feed.
func (s *Service) fetchFeed(ctx context.Context, src FeedSource) ([]models.NewsHeadline, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := s.parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.Name, err)
	}

	headlines := make([]models.NewsHeadline, 0, len(feed.Items))
	for _, item := range feed.Items {
		published := time.Time{}
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC()
		}
		headlines = append(headlines, models.NewsHeadline{
			Title:       item.Title,
			Summary:     item.Description,
			URL:         item.Link,
			Source:      src.Name,
			PublishedAt: published,
		})
	}
	return headlines, nil
}
