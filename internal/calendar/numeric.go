package calendar

import (
	"regexp"
	"strings"
)

// Indicator cells (actual/forecast/previous) have no reliable markup, so
// candidate text is validated by shape before being trusted. Accepted
// shapes: plain and thousands-separated numbers, percentages, K/M/B/T
// magnitude suffixes, and basis-point suffixes. Time-shaped and
// pure-alphabetic strings are rejected so clock cells and labels never
// masquerade as indicator values.

var (
	numericShapeRe = regexp.MustCompile(`^[+-]?(?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?\s*(?:%|[KMBT]|bp|bps)?$`)
	timeShapeRe    = regexp.MustCompile(`^\d{1,2}:\d{2}(?:\s*[AaPp]\.?[Mm]\.?)?$`)
)

// LooksNumeric reports whether s has the shape of an indicator value.
func LooksNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || timeShapeRe.MatchString(s) {
		return false
	}
	return numericShapeRe.MatchString(s)
}

// NormalizeNumeric canonicalizes an indicator value: thousands
// separators removed, surrounding space trimmed, sign and unit suffix
// preserved. Returns "" when s is not numeric-shaped.
func NormalizeNumeric(s string) string {
	s = strings.TrimSpace(s)
	if !LooksNumeric(s) {
		return ""
	}
	s = strings.ReplaceAll(s, ",", "")
	// "1.2 %" -> "1.2%"
	return strings.ReplaceAll(s, " ", "")
}
