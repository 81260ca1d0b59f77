package calendar

import (
	"testing"
	"time"

	"github.com/openquants/tradelens/pkg/models"
)

const standardPage = `
<html><body>
<select id="timezone">
  <option value="0">GMT</option>
  <option value="-5" selected>GMT -5</option>
</select>
<table>
  <tr><th>Time</th><th>Cur</th><th>Imp</th><th></th><th>Event</th></tr>
  <tr>
    <td>Jun 17 8:30 AM</td>
    <td><img class="flag-eu" alt="Euro Area"/>EUR</td>
    <td>High</td>
    <td></td>
    <td>EUR Inflation Rate MoM (Jun</td>
    <td>e)</td>
    <td class="actual">0.3%</td>
    <td class="forecast">0.2%</td>
    <td class="previous">0.1%</td>
  </tr>
  <tr>
    <td>Jun 17 10:00</td>
    <td>USD</td>
    <td>Medium</td>
    <td></td>
    <td>Existing Home Sales</td>
    <td>4.11M</td>
    <td>4.20M</td>
    <td>4,140,000</td>
  </tr>
  <tr>
    <td>Advertisement</td>
    <td>Click here</td>
    <td>for</td>
    <td>brokers</td>
  </tr>
</table>
</body></html>`

func TestExtractStandardPage(t *testing.T) {
	x := NewExtractor(WithReferenceYear(2025))
	events, report, err := x.Extract(standardPage)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if !report.TimezoneDetected || report.OffsetHours != -5 {
		t.Fatalf("timezone = (%v, %v), want (-5, true)", report.OffsetHours, report.TimezoneDetected)
	}
	if report.RowsAccepted != 2 {
		t.Fatalf("RowsAccepted = %d, want 2; skipped %d of %d",
			report.RowsAccepted, report.RowsSkipped, report.RowsScanned)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	ev := events[0]
	if ev.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR", ev.Currency)
	}
	if ev.Event != "Inflation Rate MoM (June)" {
		t.Errorf("Event = %q, want %q", ev.Event, "Inflation Rate MoM (June)")
	}
	if ev.Impact != models.ImpactHigh {
		t.Errorf("Impact = %q, want High", ev.Impact)
	}
	want := time.Date(2025, time.June, 17, 13, 30, 0, 0, time.UTC)
	if !ev.TimeUTC.Equal(want) {
		t.Errorf("TimeUTC = %v, want %v", ev.TimeUTC, want)
	}
	if ev.Actual != "0.3%" || ev.Forecast != "0.2%" || ev.Previous != "0.1%" {
		t.Errorf("indicators = (%q, %q, %q)", ev.Actual, ev.Forecast, ev.Previous)
	}
	if ev.Country != "Euro Area" || ev.FlagCode != "eu" {
		t.Errorf("flag = (%q, %q), want (Euro Area, eu)", ev.Country, ev.FlagCode)
	}
	if len(ev.ID) != eventIDLen {
		t.Errorf("ID length = %d, want %d", len(ev.ID), eventIDLen)
	}

	// Positional indicator fallback on the second row.
	ev = events[1]
	if ev.Actual != "4.11M" || ev.Forecast != "4.20M" || ev.Previous != "4140000" {
		t.Errorf("positional indicators = (%q, %q, %q)", ev.Actual, ev.Forecast, ev.Previous)
	}
	want = time.Date(2025, time.June, 17, 15, 0, 0, 0, time.UTC)
	if !ev.TimeUTC.Equal(want) {
		t.Errorf("TimeUTC = %v, want %v", ev.TimeUTC, want)
	}
}

func TestExtractDeterministicIDs(t *testing.T) {
	x := NewExtractor(WithReferenceYear(2025))
	first, _, err := x.Extract(standardPage)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := x.Extract(standardPage)
	if err != nil {
		t.Fatal(err)
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("event %d: re-extraction changed ID %s -> %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestExtractNoQualifyingRows(t *testing.T) {
	markup := `<table>
	  <tr><td>Time</td><td>Cur</td><td>Imp</td><td>Event</td></tr>
	  <tr><td>sponsored</td><td>content</td><td>row</td><td>here</td></tr>
	</table>`

	x := NewExtractor()
	events, report, err := x.Extract(markup)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
	if !report.NoData() {
		t.Error("report should signal no data")
	}
	if report.TimezoneDetected {
		t.Error("no timezone control in markup, detection should fail")
	}
	if report.RowsScanned != 2 {
		t.Errorf("RowsScanned = %d, want 2", report.RowsScanned)
	}
}

func TestExtractDropsBareRows(t *testing.T) {
	// Date, currency and time present but neither impact nor any
	// indicator value: low-value noise, not an event.
	markup := `<table><tr>
	  <td>Jun 17 10:00</td>
	  <td>USD</td>
	  <td></td>
	  <td></td>
	  <td>Juneteenth Bank Holiday Observance</td>
	</tr></table>`

	x := NewExtractor(WithReferenceYear(2025))
	events, report, err := x.Extract(markup)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(events) != 0 || report.RowsSkipped != 1 {
		t.Errorf("bare row should be skipped: events=%d skipped=%d", len(events), report.RowsSkipped)
	}
}

func TestExtractDayRollover(t *testing.T) {
	markup := `
	<select class="tz-picker"><option value="-5" selected>GMT -5</option></select>
	<table><tr>
	  <td>Jun 17 22:00</td>
	  <td>JPY</td>
	  <td>High</td>
	  <td></td>
	  <td>BoJ Interest Rate Decision</td>
	</tr></table>`

	x := NewExtractor(WithReferenceYear(2025))
	events, _, err := x.Extract(markup)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	want := time.Date(2025, time.June, 18, 3, 0, 0, 0, time.UTC)
	if !events[0].TimeUTC.Equal(want) {
		t.Errorf("TimeUTC = %v, want %v (next calendar day)", events[0].TimeUTC, want)
	}
}

func TestExtractRepairsLeakedTitleCell(t *testing.T) {
	// Countdown text and the currency badge leak into the description
	// cell, and the month parenthetical is cut off by the layout.
	markup := `<table><tr>
	  <td>Jun 17 10:00</td>
	  <td>EUR</td>
	  <td>High</td>
	  <td></td>
	  <td>days EUR Inflation Rate MoM (Jun</td>
	</tr></table>`

	x := NewExtractor(WithReferenceYear(2025))
	events, _, err := x.Extract(markup)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}

	ev := events[0]
	if ev.Event != "Inflation Rate MoM (Jun)" {
		t.Errorf("Event = %q, want %q", ev.Event, "Inflation Rate MoM (Jun)")
	}
	if ev.Currency != "EUR" || ev.Impact != models.ImpactHigh {
		t.Errorf("currency/impact = (%q, %q), want (EUR, High)", ev.Currency, ev.Impact)
	}
}

func TestExtractTitleFallbackToLongestCell(t *testing.T) {
	// Only four cells: the standard title position does not exist, the
	// longest cell is taken instead.
	markup := `<table><tr>
	  <td>17 Jun 9:00</td>
	  <td>USD</td>
	  <td>High</td>
	  <td>Non Farm Payrolls</td>
	</tr></table>`

	x := NewExtractor(WithReferenceYear(2025))
	events, _, err := x.Extract(markup)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Event != "Non Farm Payrolls" {
		t.Errorf("Event = %q, want %q", events[0].Event, "Non Farm Payrolls")
	}
}

func TestFindDateFormats(t *testing.T) {
	x := NewExtractor(WithReferenceYear(2025))
	tests := []struct {
		in   string
		want time.Time
	}{
		{"Jun 17", time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC)},
		{"17 Jun", time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC)},
		{"2025-06-17", time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC)},
		{"17/06/2025", time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC)},
		{"17/06/25", time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, ok := x.findDate(tt.in)
		if !ok || !got.Equal(tt.want) {
			t.Errorf("findDate(%q) = (%v, %v), want %v", tt.in, got, ok, tt.want)
		}
	}

	for _, bad := range []string{"", "hello world", "Feb 31", "foo 99/99/99 bar"} {
		if _, ok := x.findDate(bad); ok {
			t.Errorf("findDate(%q) should not match", bad)
		}
	}
}
