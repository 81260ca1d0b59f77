package models

import "time"

// NewsHeadline is one macro-news item pulled from the configured RSS
// feeds, shown alongside calendar events for context. Headlines are
// display data only; they never enter correlation.
type NewsHeadline struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}
