package calendar

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/openquants/tradelens/pkg/models"
)

// The calendar page does not cleanly separate the event-description cell
// from the countdown widget, currency badge, and impact label next to it,
// so raw titles arrive with leaked tokens ("days EUR Inflation Rate MoM
// (Jun" next to a "High" cell). CleanEventName repairs them with an
// ordered list of pure rewrite steps. Each step is idempotent, and the
// whole pipeline is idempotent: CleanEventName(CleanEventName(x)) ==
// CleanEventName(x).

// rewriteStep is one named, pure rewrite in the cleanup pipeline. New
// artifact patterns get appended as new steps rather than folded into
// existing regexes.
type rewriteStep struct {
	name  string
	apply func(string) string
}

var (
	currencyTokenRe = regexp.MustCompile(`\b(` + strings.Join(models.Currencies, "|") + `)\b`)

	// Countdown-widget text that leaks into the title cell: "1h30min",
	// "45min", "2h", and a stray leading "days" token.
	countdownRe   = regexp.MustCompile(`\b\d+\s*h\s*\d+\s*min\b|\b\d+\s*min\b|\b\d+\s*h\b`)
	leadingDaysRe = regexp.MustCompile(`^\s*days\s+`)
	leadingMinRe  = regexp.MustCompile(`^\s*min\s+`)
	edgeImpactRe  = regexp.MustCompile(`^\s*(High|Medium|Low)\b\s*|\s*\b(High|Medium|Low)\s*$`)
	multiSpaceRe  = regexp.MustCompile(`\s{2,}`)
)

var cleanSteps = []rewriteStep{
	{"strip-currency", func(s string) string {
		return currencyTokenRe.ReplaceAllString(s, " ")
	}},
	{"strip-countdown", func(s string) string {
		s = leadingDaysRe.ReplaceAllString(s, "")
		return countdownRe.ReplaceAllString(s, " ")
	}},
	{"strip-impact", func(s string) string {
		return edgeImpactRe.ReplaceAllString(s, " ")
	}},
	{"strip-leading-min", func(s string) string {
		return leadingMinRe.ReplaceAllString(strings.TrimSpace(s), "")
	}},
	{"balance-parens", balanceParens},
	{"tidy", func(s string) string {
		s = multiSpaceRe.ReplaceAllString(s, " ")
		s = strings.TrimSpace(s)
		return capitalize(s)
	}},
}

// CleanEventName normalizes a raw extracted title into a canonical event
// name. Deterministic and pure; see the step list above for what gets
// stripped and why. The extractor drops the row when the cleaned result
// is empty or too short to be a usable title.
func CleanEventName(raw string) string {
	s := raw
	for _, step := range cleanSteps {
		s = step.apply(s)
	}
	return s
}

// UsableTitle reports whether a cleaned title is long enough to identify
// an event. Anything of 3 characters or fewer is leftover decoration.
func UsableTitle(title string) bool {
	return len(title) > 3
}

// balanceParens repairs unbalanced parentheses left by descriptions that
// were split across cells, e.g. the month abbreviation "(Jun". Extra
// opens are closed when content follows the last unmatched "(",
// otherwise the dangling "(" and everything after it is dropped. Extra
// closes are trimmed from the end.
func balanceParens(s string) string {
	opens := strings.Count(s, "(")
	closes := strings.Count(s, ")")

	if opens > closes {
		idx := strings.LastIndex(s, "(")
		if strings.TrimSpace(s[idx+1:]) == "" {
			return strings.TrimSpace(s[:idx])
		}
		return s + strings.Repeat(")", opens-closes)
	}

	for closes > opens {
		s = strings.TrimSpace(s)
		if !strings.HasSuffix(s, ")") {
			break
		}
		s = s[:len(s)-1]
		closes--
	}
	return s
}

// capitalize upper-cases the first letter only, leaving the rest of the
// title untouched.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
