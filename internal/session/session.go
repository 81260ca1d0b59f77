// Package session computes the UTC window of a named trading session on
// a given calendar day. Session boundaries follow market-open wall-clock
// conventions, so they shift an hour twice a year with daylight-saving
// time; windows are computed fresh per query and never cached across a
// DST boundary.
package session

import (
	"time"

	"github.com/openquants/tradelens/pkg/models"
)

// sessionHours holds the UTC start/end hours of a session for both
// halves of the year. prevDay anchors the start to the day before the
// calendar date; only Asia spans midnight that way.
type sessionHours struct {
	dstStart, dstEnd int
	stdStart, stdEnd int
	prevDay          bool
}

var sessions = map[string]sessionHours{
	models.SessionLondon: {dstStart: 7, dstEnd: 12, stdStart: 8, stdEnd: 13},
	models.SessionNYAM:   {dstStart: 12, dstEnd: 17, stdStart: 13, stdEnd: 18},
	models.SessionNYPM:   {dstStart: 17, dstEnd: 21, stdStart: 18, stdEnd: 22},
	models.SessionAsia:   {dstStart: 22, dstEnd: 7, stdStart: 23, stdEnd: 8, prevDay: true},
}

// Window returns the closed UTC interval of the named session on the
// given calendar date. An unrecognized session name falls back to the
// full calendar day rather than failing: best-effort window beats
// rejecting the trade.
func Window(name string, date time.Time) models.SessionWindow {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	hours, ok := sessions[name]
	if !ok {
		return FullDay(day)
	}

	start, end := hours.stdStart, hours.stdEnd
	if IsDST(day) {
		start, end = hours.dstStart, hours.dstEnd
	}

	startDay := day
	if hours.prevDay {
		startDay = day.AddDate(0, 0, -1)
	}

	return models.SessionWindow{
		Start: startDay.Add(time.Duration(start) * time.Hour),
		End:   day.Add(time.Duration(end) * time.Hour),
	}
}

// FullDay returns the 00:00:00–23:59:59 UTC window of the given date,
// used when a trade has no session label or an unrecognized one.
func FullDay(date time.Time) models.SessionWindow {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return models.SessionWindow{
		Start: day,
		End:   day.Add(24*time.Hour - time.Second),
	}
}

// IsDST reports whether the date falls in the daylight-saving half of
// the year: from the last Sunday of March (inclusive) to the last Sunday
// of October (exclusive). The actual transition rule, not a fixed-month
// approximation; fixed months would misclassify boundary weeks.
func IsDST(date time.Time) bool {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	start := lastSunday(date.Year(), time.March)
	end := lastSunday(date.Year(), time.October)
	return !day.Before(start) && day.Before(end)
}

// lastSunday returns the last Sunday of the given month at 00:00 UTC.
func lastSunday(year int, month time.Month) time.Time {
	// Day 0 of the next month is the last day of this one.
	d := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
