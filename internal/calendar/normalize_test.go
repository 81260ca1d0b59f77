package calendar

import (
	"strings"
	"testing"

	"github.com/openquants/tradelens/pkg/models"
)

func TestCleanEventName(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain title untouched", "Inflation Rate MoM", "Inflation Rate MoM"},
		{"leading currency stripped", "EUR Inflation Rate MoM", "Inflation Rate MoM"},
		{"embedded currency stripped", "Inflation USD Rate", "Inflation Rate"},
		{"countdown h-min stripped", "1h30min Retail Sales", "Retail Sales"},
		{"countdown min stripped", "45min GDP Growth Rate", "GDP Growth Rate"},
		{"countdown h stripped", "2h Trade Balance", "Trade Balance"},
		{"leading days stripped", "days Unemployment Rate", "Unemployment Rate"},
		{"leading min stripped", "min Core PCE Price Index", "Core PCE Price Index"},
		{"trailing impact stripped", "Interest Rate Decision High", "Interest Rate Decision"},
		{"leading impact stripped", "Medium CPI Flash Estimate YoY", "CPI Flash Estimate YoY"},
		{"unbalanced open repaired", "Inflation Rate MoM (Jun", "Inflation Rate MoM (Jun)"},
		{"dangling open dropped", "Retail Sales (", "Retail Sales"},
		{"trailing close dropped", "Retail Sales)", "Retail Sales"},
		{"whitespace collapsed", "  GDP   Growth  ", "GDP Growth"},
		{"first letter capitalized", "non farm payrolls", "Non farm payrolls"},
		{"combined artifacts", "days EUR Inflation Rate MoM (Jun", "Inflation Rate MoM (Jun)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanEventName(tt.raw)
			if got != tt.want {
				t.Errorf("CleanEventName(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCleanEventNameIdempotent(t *testing.T) {
	inputs := []string{
		"days EUR Inflation Rate MoM (Jun",
		"1h30min USD Non Farm Payrolls High",
		"Retail Sales ((Aug",
		"min GBP BoE Gov Bailey Speech)",
		"CHF SNB Interest Rate Decision",
	}
	for _, in := range inputs {
		once := CleanEventName(in)
		twice := CleanEventName(once)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestCleanEventNameNeverLeavesArtifacts(t *testing.T) {
	titles := []string{"Inflation Rate MoM", "GDP Growth Rate QoQ", "Balance of Trade (May"}
	for _, cur := range models.Currencies {
		for _, title := range titles {
			got := CleanEventName(cur + " " + title + " " + cur)

			if strings.Contains(" "+got+" ", " "+cur+" ") {
				t.Errorf("currency %s left in %q", cur, got)
			}
			if strings.Count(got, "(") != strings.Count(got, ")") {
				t.Errorf("unbalanced parentheses in %q", got)
			}
		}
	}
}

func TestUsableTitle(t *testing.T) {
	if UsableTitle("") || UsableTitle("GDP") {
		t.Error("short leftovers should not be usable titles")
	}
	if !UsableTitle("CPI YoY") {
		t.Error("real title should be usable")
	}
}

func TestBalanceParens(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Inflation (Jun", "Inflation (Jun)"},
		{"Inflation (", "Inflation"},
		{"Inflation ( ", "Inflation"},
		{"Inflation (Jun))", "Inflation (Jun)"},
		{"Inflation))", "Inflation"},
		{"Inflation (Jun)", "Inflation (Jun)"},
		{"((Jan", "((Jan))"},
	}
	for _, tt := range tests {
		if got := balanceParens(tt.in); got != tt.want {
			t.Errorf("balanceParens(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
