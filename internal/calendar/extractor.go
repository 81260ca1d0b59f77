// Package calendar extracts structured economic-calendar events from the
// noisy, non-semantic table markup of the source page. Field recovery is
// heuristic: a small set of independent extractor/validator functions per
// field, each returning "no match" instead of failing, composed by a
// row-level extractor that requires a minimum viable subset before
// accepting a row. Row-level failures skip the row and never abort the
// pass; a page with no qualifying rows degrades to an empty result.
package calendar

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/openquants/tradelens/pkg/models"
)

const (
	// defaultTitleColumn is the observed position of the description
	// cell in the standard row layout. Configurable because the layout
	// assumption is the extractor's known fragility.
	defaultTitleColumn = 4

	// Bounds for re-joining descriptions that the layout split across
	// cells mid-parenthesis.
	maxJoinCells   = 3
	maxJoinCellLen = 10
	maxTitleLen    = 160
	minViableCells = 4
)

var (
	monthDayRe  = regexp.MustCompile(`(?i)\b(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+(\d{1,2})\b`)
	dayMonthRe  = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\b`)
	slashedRe   = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2,4})\b`)
	isoDateRe   = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	clockRe     = regexp.MustCompile(`\b(\d{1,2}:\d{2}(?:\s*[AaPp]\.?[Mm]\.?)?)\b`)
	flagClassRe = regexp.MustCompile(`(?i)\bflag[-_]([a-z]{2,3})\b`)
)

var monthIndex = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// Report summarizes one extraction pass. A pass that accepted zero rows
// is a "no data extracted" outcome, not an error: the caller decides
// whether to retry ingestion with different source parameters.
type Report struct {
	RowsScanned      int     `json:"rows_scanned"`
	RowsAccepted     int     `json:"rows_accepted"`
	RowsSkipped      int     `json:"rows_skipped"`
	TimezoneDetected bool    `json:"timezone_detected"`
	OffsetHours      float64 `json:"offset_hours"`
}

// NoData reports whether the pass produced nothing usable.
func (r *Report) NoData() bool { return r.RowsAccepted == 0 }

// Extractor turns raw calendar-page markup into canonical events. It is
// stateless across calls; independent pages can be extracted in
// parallel, each pass resolving its own timezone offset exactly once.
type Extractor struct {
	titleColumn int
	refYear     int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTitleColumn overrides the description-cell index for layouts that
// differ from the standard one.
func WithTitleColumn(i int) Option {
	return func(x *Extractor) { x.titleColumn = i }
}

// WithReferenceYear fixes the year assumed for date tokens that carry
// none (e.g. "Jun 17"). Defaults to the current year; tests pin it.
func WithReferenceYear(y int) Option {
	return func(x *Extractor) { x.refYear = y }
}

// NewExtractor creates an extractor with the standard layout assumptions.
func NewExtractor(opts ...Option) *Extractor {
	x := &Extractor{
		titleColumn: defaultTitleColumn,
		refYear:     time.Now().UTC().Year(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract scans the markup for rows that look like calendar entries and
// recovers one Event per acceptable row. The timezone offset is resolved
// once and held fixed for the whole pass, so a single page never mixes
// two offset interpretations. The error is non-nil only when the markup
// cannot be parsed at all.
func (x *Extractor) Extract(markup string) ([]models.Event, *Report, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, nil, fmt.Errorf("parse calendar markup: %w", err)
	}

	report := &Report{}
	report.OffsetHours, report.TimezoneDetected = DetectOffset(doc)

	var events []models.Event
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		report.RowsScanned++
		ev, ok := x.extractRow(row, report.OffsetHours)
		if !ok {
			report.RowsSkipped++
			return
		}
		report.RowsAccepted++
		events = append(events, ev)
	})

	return events, report, nil
}

// extractRow applies the per-field heuristics to one table row. Any
// missing required field makes the row unusable; false is the only
// failure mode.
func (x *Extractor) extractRow(row *goquery.Selection, offset float64) (models.Event, bool) {
	cells := row.Find("td")
	if cells.Length() < minViableCells {
		return models.Event{}, false
	}

	texts := make([]string, cells.Length())
	cells.Each(func(i int, c *goquery.Selection) {
		texts[i] = strings.TrimSpace(c.Text())
	})
	rowText := strings.Join(texts, " ")

	// Primary noise filter: navigation, header, and ad rows carry no
	// date token or no recognized currency.
	date, ok := x.findDate(rowText)
	if !ok {
		return models.Event{}, false
	}
	currency := findCurrency(texts)
	if currency == "" {
		return models.Event{}, false
	}

	localTime, ok := findClock(texts[0])
	if !ok {
		// Some layouts put the clock in its own cell next to the date.
		for _, t := range texts[1:] {
			if localTime, ok = findClock(t); ok {
				break
			}
		}
		if !ok {
			return models.Event{}, false
		}
	}

	utcClock, dayOff, ok := ToUTC(localTime, offset)
	if !ok {
		return models.Event{}, false
	}
	ts, ok := composeUTC(date, utcClock)
	if !ok {
		return models.Event{}, false
	}
	ts = ts.AddDate(0, 0, dayOff)

	impact := findImpact(texts)
	title := CleanEventName(x.recoverTitle(texts))
	if !UsableTitle(title) {
		return models.Event{}, false
	}

	actual, forecast, previous := x.findIndicators(cells, texts)

	// Acceptance policy: an entry with neither an impact level nor any
	// indicator value is low-value noise (stray holiday markers).
	if impact == "" && actual == "" && forecast == "" && previous == "" {
		return models.Event{}, false
	}

	country, flagCode := findFlag(row)
	timeUTC := ts.Format(time.RFC3339)

	ev := models.Event{
		ID:       EventID(currency, title, timeUTC, impact),
		Currency: currency,
		Event:    title,
		Impact:   impact,
		TimeUTC:  ts,
		Actual:   actual,
		Forecast: forecast,
		Previous: previous,
		Country:  country,
		FlagCode: flagCode,
	}
	if !ev.Valid() {
		return models.Event{}, false
	}
	return ev, true
}

// findDate recognizes "Mon D", "D Mon", "D/M/Y" and "Y-M-D" date tokens.
func (x *Extractor) findDate(s string) (time.Time, bool) {
	if m := monthDayRe.FindStringSubmatch(s); m != nil {
		return x.makeDate(x.refYear, monthIndex[strings.ToLower(m[1])], atoi(m[2]))
	}
	if m := dayMonthRe.FindStringSubmatch(s); m != nil {
		return x.makeDate(x.refYear, monthIndex[strings.ToLower(m[2])], atoi(m[1]))
	}
	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		return x.makeDate(atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3]))
	}
	if m := slashedRe.FindStringSubmatch(s); m != nil {
		year := atoi(m[3])
		if year < 100 {
			year += 2000
		}
		return x.makeDate(year, time.Month(atoi(m[2])), atoi(m[1]))
	}
	return time.Time{}, false
}

func (x *Extractor) makeDate(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day {
		// Normalized away: the token named a day the month doesn't have.
		return time.Time{}, false
	}
	return d, true
}

// findCurrency returns the first cell whose entire trimmed text is a
// recognized currency code. Matching the full cell, not a substring,
// keeps titles that mention a currency from being misread.
func findCurrency(texts []string) string {
	for _, t := range texts {
		if models.IsCurrency(t) {
			return t
		}
	}
	return ""
}

// findImpact returns the impact level when it sits in its own cell.
func findImpact(texts []string) string {
	for _, t := range texts {
		switch t {
		case models.ImpactHigh, models.ImpactMedium, models.ImpactLow:
			return t
		}
	}
	return ""
}

func findClock(s string) (string, bool) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// recoverTitle reads the designated description cell and, when its text
// has an unmatched "(", concatenates adjacent short cells until a ")"
// appears or a bound is hit. Month parentheticals routinely get split
// across cells by the layout ("Inflation Rate MoM (Jun" | "e)").
func (x *Extractor) recoverTitle(texts []string) string {
	idx := x.titleColumn
	if idx >= len(texts) {
		idx = longestCell(texts)
	}
	title := texts[idx]

	if strings.Count(title, "(") > strings.Count(title, ")") {
		joined := 0
		for i := idx + 1; i < len(texts) && joined < maxJoinCells && len(title) < maxTitleLen; i++ {
			next := texts[i]
			if len(next) == 0 || len(next) >= maxJoinCellLen {
				break
			}
			title += next
			joined++
			if strings.Contains(next, ")") {
				break
			}
		}
	}
	return title
}

// longestCell is the fallback when the standard title position does not
// exist in this row's layout: the description is almost always the
// longest text in the row.
func longestCell(texts []string) int {
	best := 0
	for i, t := range texts {
		if len(t) > len(texts[best]) {
			best = i
		}
	}
	return best
}

// findIndicators locates the actual/forecast/previous cells, preferring
// explicit markup attributes and falling back to the fixed positions
// after the description column. Every candidate passes the numeric-shape
// classifier before it is trusted.
func (x *Extractor) findIndicators(cells *goquery.Selection, texts []string) (actual, forecast, previous string) {
	cells.Each(func(i int, c *goquery.Selection) {
		field := indicatorAttr(c)
		if field == "" {
			return
		}
		v := NormalizeNumeric(texts[i])
		if v == "" {
			return
		}
		switch field {
		case "actual":
			actual = v
		case "forecast":
			forecast = v
		case "previous":
			previous = v
		}
	})

	if actual == "" && forecast == "" && previous == "" {
		positions := []int{x.titleColumn + 1, x.titleColumn + 2, x.titleColumn + 3}
		out := []*string{&actual, &forecast, &previous}
		for i, pos := range positions {
			if pos < len(texts) {
				*out[i] = NormalizeNumeric(texts[pos])
			}
		}
	}
	return actual, forecast, previous
}

// indicatorAttr inspects a cell's attributes for an explicit
// actual/forecast/previous marker.
func indicatorAttr(c *goquery.Selection) string {
	for _, attr := range []string{"class", "id", "data-field"} {
		v := strings.ToLower(c.AttrOr(attr, ""))
		for _, field := range []string{"actual", "forecast", "previous"} {
			if strings.Contains(v, field) {
				return field
			}
		}
	}
	return ""
}

// findFlag pulls optional provenance metadata from a flag image when the
// row carries one.
func findFlag(row *goquery.Selection) (country, flagCode string) {
	img := row.Find("img").First()
	if img.Length() == 0 {
		return "", ""
	}
	country = strings.TrimSpace(img.AttrOr("alt", ""))
	if m := flagClassRe.FindStringSubmatch(img.AttrOr("class", "")); m != nil {
		flagCode = strings.ToLower(m[1])
	}
	return country, flagCode
}

// composeUTC joins a calendar date with an HH:MM clock into a UTC instant.
func composeUTC(date time.Time, clock string) (time.Time, bool) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), true
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
