// Package correlate matches stored economic events against a trade's
// session window. A trade's "relevant news" is defined purely by
// temporal overlap with its session, so correlation is a pure,
// replayable function of (date, session, event pool): fixed inputs give
// a fixed output set in a fixed order, which is what makes historical
// re-migration idempotent.
package correlate

import (
	"sort"
	"time"

	"github.com/openquants/tradelens/internal/session"
	"github.com/openquants/tradelens/pkg/models"
)

// Correlate selects the candidate events whose UTC timestamp falls
// inside the trade's session window (inclusive at both ends) and
// projects each match to its trade-facing form. Candidates are expected
// to be pre-filtered upstream to relevant currencies and High/Medium
// impact; Low and no-impact events are market-irrelevant noise by
// policy. An empty sessionName widens the window to the whole calendar
// day. Output order is ascending time, ties broken by ID, so repeated
// runs over the same inputs are byte-identical.
func Correlate(tradeDate time.Time, sessionName string, candidates []models.Event) []models.TradeEconomicEvent {
	var window models.SessionWindow
	if sessionName == "" {
		window = session.FullDay(tradeDate)
	} else {
		window = session.Window(sessionName, tradeDate)
	}

	matched := make([]models.Event, 0, len(candidates))
	for _, ev := range candidates {
		if window.Contains(ev.TimeUTC) {
			matched = append(matched, ev)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].TimeUTC.Equal(matched[j].TimeUTC) {
			return matched[i].TimeUTC.Before(matched[j].TimeUTC)
		}
		return matched[i].ID < matched[j].ID
	})

	out := make([]models.TradeEconomicEvent, 0, len(matched))
	for _, ev := range matched {
		out = append(out, ev.Project())
	}
	return out
}

// RelevantCandidate reports whether an event qualifies for the candidate
// pool at all: recognized currency, High or Medium impact. Callers that
// build pools from storage apply this before Correlate.
func RelevantCandidate(ev models.Event, currencies []string) bool {
	if ev.Impact != models.ImpactHigh && ev.Impact != models.ImpactMedium {
		return false
	}
	for _, c := range currencies {
		if ev.Currency == c {
			return true
		}
	}
	return false
}
