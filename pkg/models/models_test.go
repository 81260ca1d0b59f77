package models

import (
	"testing"
	"time"
)

func TestIsCurrency(t *testing.T) {
	for _, code := range Currencies {
		if !IsCurrency(code) {
			t.Errorf("IsCurrency(%q) = false", code)
		}
	}
	for _, code := range []string{"", "usd", "SEK", "BTC", "US"} {
		if IsCurrency(code) {
			t.Errorf("IsCurrency(%q) = true", code)
		}
	}
}

func TestEventValid(t *testing.T) {
	at := time.Date(2025, time.June, 17, 13, 30, 0, 0, time.UTC)
	ok := Event{Currency: "USD", Event: "CPI YoY", TimeUTC: at}
	if !ok.Valid() {
		t.Error("complete event should be valid")
	}

	bad := []Event{
		{Event: "CPI YoY", TimeUTC: at},
		{Currency: "USD", TimeUTC: at},
		{Currency: "USD", Event: "CPI YoY"},
	}
	for i, ev := range bad {
		if ev.Valid() {
			t.Errorf("event %d missing a required field should be invalid", i)
		}
	}
}

func TestEventDay(t *testing.T) {
	ev := Event{TimeUTC: time.Date(2025, time.June, 17, 23, 59, 0, 0, time.UTC)}
	if got := ev.Day(); got != "2025-06-17" {
		t.Errorf("Day() = %q, want 2025-06-17", got)
	}

	// A non-UTC timestamp is normalized to the UTC calendar day.
	loc := time.FixedZone("minus5", -5*3600)
	ev = Event{TimeUTC: time.Date(2025, time.June, 17, 22, 0, 0, 0, loc)}
	if got := ev.Day(); got != "2025-06-18" {
		t.Errorf("Day() = %q, want 2025-06-18", got)
	}
}

func TestEventProject(t *testing.T) {
	at := time.Date(2025, time.June, 17, 13, 30, 0, 0, time.UTC)
	ev := Event{
		ID:       "abc",
		Currency: "EUR",
		Event:    "Inflation Rate MoM",
		Impact:   ImpactHigh,
		TimeUTC:  at,
		Actual:   "0.3%",
		FlagCode: "eu",
	}

	p := ev.Project()
	if p.Name != ev.Event || p.Currency != ev.Currency || p.Impact != ev.Impact {
		t.Errorf("projection = %+v", p)
	}
	if !p.TimeUTC.Equal(at) || p.FlagCode != "eu" {
		t.Errorf("projection = %+v", p)
	}

	ev.Event = "mutated"
	if p.Name != "Inflation Rate MoM" {
		t.Error("projection must be a copy")
	}
}

func TestSessionWindowContains(t *testing.T) {
	start := time.Date(2025, time.June, 17, 7, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.June, 17, 12, 0, 0, 0, time.UTC)
	w := SessionWindow{Start: start, End: end}

	if !w.Contains(start) || !w.Contains(end) {
		t.Error("both endpoints are inside the closed interval")
	}
	if !w.Contains(start.Add(time.Hour)) {
		t.Error("interior instant should be contained")
	}
	if w.Contains(start.Add(-time.Nanosecond)) || w.Contains(end.Add(time.Nanosecond)) {
		t.Error("instants outside the interval should be excluded")
	}
}
