package models

import "time"

// Recognized trading session names. An unrecognized session falls back
// to a full-day window rather than failing the trade.
const (
	SessionLondon = "London"
	SessionNYAM   = "NY AM"
	SessionNYPM   = "NY PM"
	SessionAsia   = "Asia"
)

// Sessions lists the recognized session names.
var Sessions = []string{SessionLondon, SessionNYAM, SessionNYPM, SessionAsia}

// TradeSessionContext is the slice of a trade record the correlator
// needs: the calendar day the trade was taken (not an instant) and the
// session label the trader recorded. Supplied by the trade store and
// consumed read-only.
type TradeSessionContext struct {
	TradeID string    `json:"trade_id,omitempty"`
	Date    time.Time `json:"date"`
	Session string    `json:"session,omitempty"`
}

// SessionWindow is a closed UTC interval [Start, End]. Computed fresh
// per (date, session) query and never cached across DST boundaries.
type SessionWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, inclusive of both
// endpoints.
func (w SessionWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
