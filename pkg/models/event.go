// Package models defines the shared data types for tradelens: economic
// calendar events, trade session contexts, and the projections attached
// to trades after correlation.
package models

import "time"

// Impact levels for economic calendar events.
const (
	ImpactHigh   = "High"
	ImpactMedium = "Medium"
	ImpactLow    = "Low"
	ImpactNone   = ""
)

// Currencies is the recognized set of 3-letter currency codes. Events
// quoting any other currency are treated as noise during extraction.
var Currencies = []string{"USD", "EUR", "GBP", "JPY", "AUD", "CAD", "CHF", "NZD"}

// IsCurrency reports whether code is one of the recognized currency codes.
func IsCurrency(code string) bool {
	for _, c := range Currencies {
		if c == code {
			return true
		}
	}
	return false
}

// Event is one canonical economic-calendar entry after extraction and
// cleaning. ID is computed once at extraction time and never changes;
// the store uses it as the upsert key so re-ingesting the same calendar
// day is idempotent.
type Event struct {
	ID       string    `json:"id"`
	Currency string    `json:"currency"`
	Event    string    `json:"event"`
	Impact   string    `json:"impact,omitempty"`
	TimeUTC  time.Time `json:"time_utc"`
	Actual   string    `json:"actual,omitempty"`
	Forecast string    `json:"forecast,omitempty"`
	Previous string    `json:"previous,omitempty"`
	Country  string    `json:"country,omitempty"`
	FlagCode string    `json:"flag_code,omitempty"`
}

// Valid reports whether the event carries the minimum fields required
// for storage. An event with an empty title, currency, or timestamp
// must not be emitted by the extractor.
func (e Event) Valid() bool {
	return e.Event != "" && e.Currency != "" && !e.TimeUTC.IsZero()
}

// Day returns the UTC calendar day of the event in YYYY-MM-DD form.
func (e Event) Day() string {
	return e.TimeUTC.UTC().Format("2006-01-02")
}

// TradeEconomicEvent is the simplified projection of an Event attached
// to a trade at correlation time. It is a copy: later edits to the
// source Event do not propagate to trades already enriched.
type TradeEconomicEvent struct {
	Name     string    `json:"name"`
	FlagCode string    `json:"flag_code,omitempty"`
	Impact   string    `json:"impact,omitempty"`
	Currency string    `json:"currency"`
	TimeUTC  time.Time `json:"time_utc"`
}

// Project returns the trade-facing projection of the event.
func (e Event) Project() TradeEconomicEvent {
	return TradeEconomicEvent{
		Name:     e.Event,
		FlagCode: e.FlagCode,
		Impact:   e.Impact,
		Currency: e.Currency,
		TimeUTC:  e.TimeUTC,
	}
}
