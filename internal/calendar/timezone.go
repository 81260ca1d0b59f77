package calendar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// The source page renders event times in whatever timezone the viewer
// selected, exposed through a selector control in the markup. Without
// resolving that offset every downstream session correlation is wrong by
// the offset, so it is detected once per extraction pass and threaded
// through every row conversion.

var (
	timeTokenRe  = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?:\s*([AaPp])\.?[Mm]\.?)?$`)
	gmtOffsetRe  = regexp.MustCompile(`(?i)(?:GMT|UTC)\s*([+-])\s*(\d{1,2})(?::(\d{2}))?`)
	plainFloatRe = regexp.MustCompile(`^[+-]?\d+(?:\.\d+)?$`)
)

// DetectOffset reads the timezone-selector control embedded in the page
// and returns the signed hour offset it is set to. Fractional offsets
// (half- and quarter-hour zones) are supported. When no selector or no
// selected value is found it returns (0, false): the caller proceeds
// with UTC and records the miss as a non-fatal condition.
func DetectOffset(doc *goquery.Document) (float64, bool) {
	offset := 0.0
	found := false

	doc.Find("select").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !looksLikeTimezoneControl(sel) {
			return true
		}
		opt := sel.Find("option[selected]").First()
		if opt.Length() == 0 {
			return true
		}
		if v, ok := parseOffsetValue(opt.AttrOr("value", "")); ok {
			offset, found = v, true
			return false
		}
		if v, ok := parseOffsetValue(strings.TrimSpace(opt.Text())); ok {
			offset, found = v, true
			return false
		}
		return true
	})

	return offset, found
}

// looksLikeTimezoneControl matches the selector by id/name/class since
// the markup carries no semantic labels.
func looksLikeTimezoneControl(sel *goquery.Selection) bool {
	for _, attr := range []string{"id", "name", "class"} {
		v := strings.ToLower(sel.AttrOr(attr, ""))
		if strings.Contains(v, "timezone") || strings.Contains(v, "time-zone") || strings.Contains(v, "tz") {
			return true
		}
	}
	return false
}

// parseOffsetValue accepts either a bare signed number ("-5", "5.5") or
// a GMT/UTC label ("GMT +05:30").
func parseOffsetValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if plainFloatRe.MatchString(s) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	if m := gmtOffsetRe.FindStringSubmatch(s); m != nil {
		hours, _ := strconv.ParseFloat(m[2], 64)
		if m[3] != "" {
			mins, _ := strconv.ParseFloat(m[3], 64)
			hours += mins / 60
		}
		if m[1] == "-" {
			hours = -hours
		}
		return hours, true
	}
	return 0, false
}

// ToUTC converts a local wall-clock time string to a 24-hour HH:MM UTC
// time by subtracting the page offset. Both 12-hour ("1:00 PM") and
// 24-hour ("13:00") forms are accepted. The returned day offset (-1, 0
// or +1) is the adjustment to apply to the associated calendar date when
// the subtraction crosses midnight. A malformed time string returns
// ok=false; the caller skips the row.
func ToUTC(local string, offsetHours float64) (string, int, bool) {
	m := timeTokenRe.FindStringSubmatch(strings.TrimSpace(local))
	if m == nil {
		return "", 0, false
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if minute > 59 {
		return "", 0, false
	}

	switch strings.ToUpper(m[3]) {
	case "P":
		if hour > 12 {
			return "", 0, false
		}
		if hour != 12 {
			hour += 12
		}
	case "A":
		if hour > 12 {
			return "", 0, false
		}
		if hour == 12 {
			hour = 0
		}
	default:
		if hour > 23 {
			return "", 0, false
		}
	}

	total := hour*60 + minute - int(offsetHours*60)
	day := 0
	for total < 0 {
		total += 24 * 60
		day--
	}
	for total >= 24*60 {
		total -= 24 * 60
		day++
	}

	return twoDigit(total/60) + ":" + twoDigit(total%60), day, true
}

func twoDigit(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
