package output

import (
	"strings"
	"testing"

	"github.com/btcplan/retirement-planner/internal/calculation"
	"github.com/btcplan/retirement-planner/internal/domain"
)

func buildComparisonRows() []ComparisonRow {
	sc := domain.Scenario{CurrentAge: 30, RetirementAge: 65, LifeExpectancy: 85}
	return []ComparisonRow{
		{
			Name: "base", Scenario: sc,
			Plan:        &calculation.RetirementPlan{BitcoinNeeded: 2.5, TotalBitcoinHoldings: 2.0, FutureBitcoinPrice: 200000},
			HealthScore: 40,
		},
		{
			Name: "aggressive", Scenario: sc,
			Plan:        &calculation.RetirementPlan{BitcoinNeeded: 2.5, TotalBitcoinHoldings: 3.0, FutureBitcoinPrice: 200000},
			HealthScore: 60,
		},
	}
}

func TestComparisonTableSortsAndRecommends(t *testing.T) {
	content := string(FormatComparisonTable(buildComparisonRows()))
	for _, want := range []string{
		"SCENARIO COMPARISON",
		"Bitcoin Needed (BTC)", "Total Bitcoin Holdings (BTC)", "Future Bitcoin Price (USD)",
		"$200,000.00",
		"Best funded: aggressive (surplus 0.5000 BTC)",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("table missing %q:\n%s", want, content)
		}
	}
	if strings.Index(content, "aggressive") > strings.Index(content, "base") {
		t.Fatalf("rows not sorted by name:\n%s", content)
	}
}

func TestComparisonTableShortfallWording(t *testing.T) {
	rows := buildComparisonRows()
	rows[1].Plan.TotalBitcoinHoldings = 2.25
	content := string(FormatComparisonTable(rows))
	if !strings.Contains(content, "Closest to funded: aggressive (shortfall 0.2500 BTC)") {
		t.Fatalf("expected shortfall wording:\n%s", content)
	}
}

func TestComparisonCSV(t *testing.T) {
	out, err := ComparisonCSV(buildComparisonRows())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines (header+2 rows), got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Scenario,Current Age,Retirement Age,Life Expectancy") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "aggressive,30,65,85,2.5000,3.0000,200000.00,true,60") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "base,") || !strings.Contains(lines[2], "false,40") {
		t.Fatalf("unexpected second row %q", lines[2])
	}
}

func TestBestFundedEmpty(t *testing.T) {
	if _, ok := BestFunded(nil); ok {
		t.Fatalf("empty comparison should report no best row")
	}
}
