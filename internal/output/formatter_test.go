package output

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/btcplan/retirement-planner/internal/calculation"
	"github.com/btcplan/retirement-planner/internal/domain"
)

func seriesOf(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func buildTestReport() *Report {
	sc := domain.Scenario{
		CurrentAge: 30, RetirementAge: 65, LifeExpectancy: 85,
		MonthlySpending: 3000, MonthlyInvestment: 500, CurrentHoldings: 1.5,
		BitcoinGrowthRate: 21, InflationRate: 2, TaxRate: 15,
		CurrentPrice: 30000,
	}
	years := sc.HorizonYears()
	plan := &calculation.PlanResult{
		Plan: &calculation.RetirementPlan{
			BitcoinNeeded:             2.5,
			TotalBitcoinHoldings:      3.25,
			FutureInvestmentValue:     150000,
			AnnualExpenseAtRetirement: 72000,
			FutureBitcoinPrice:        250000,
			TotalRetirementExpenses:   1750000,
			LifeExpectancy:            85,
		},
		Projection:  seriesOf(years+1, 2.0),
		HealthScore: 65,
		Health:      calculation.HealthDetails{FundingRatio: 1.3, RunwayYears: 20, ProjectedBTC: 3.25, BTCNeeded: 2.5},
	}
	sim := &calculation.SimulationSummary{
		Model: "halving", Sims: 1000, Years: years, Seed: 42,
		Stream: &calculation.StreamResult{
			Levels:             []int{10, 50},
			Series:             [][]float64{seriesOf(years, 100000), seriesOf(years, 500000)},
			SuccessProbability: 0.864,
		},
	}
	return &Report{Scenario: sc, Plan: plan, Simulation: sim}
}

func TestConsoleFormatterOnTrack(t *testing.T) {
	report := buildTestReport()
	report.PriceWarnings = []string{"using fallback price $100,000.00"}
	out, err := ConsoleFormatter{}.Format(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := string(out)
	for _, want := range []string{
		"BITCOIN RETIREMENT PLAN",
		"note: using fallback price $100,000.00",
		"✅ Great news! You will have enough Bitcoin to retire. You will retire at 65",
		"expenses at retirement will be $72,000.00.",
		"Projected Price at Retirement:", "$250,000.00",
		"Monthly Spending Today:", "$3,000.00 ($36,000.00 per year)",
		"Monthly Investment:", "$500.00 ($6,000.00 per year)",
		"Annual Expenses at Retirement:", "$72,000.00 ($6,000.00 per month)",
		"Plan Health:", "65/100 (funding ratio 1.30, runway 20 years)",
		"Model halving, 1000 simulations over 55 years (seed 42).",
		"Success probability: 86.4%",
		"At retirement (65):",
		"At life expectancy (85):",
		"With $500.00/month investment for 35 years at 21.0% growth:",
		"- Total expenses over 20 years: $1,750,000.00",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("console output missing %q:\n%s", want, content)
		}
	}
}

func TestConsoleFormatterShortfall(t *testing.T) {
	report := buildTestReport()
	report.Plan.Plan.TotalBitcoinHoldings = 1.75
	report.Simulation = nil
	out, err := ConsoleFormatter{}.Format(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := string(out)
	if !strings.Contains(content, "💡 You need an additional 0.7500 Bitcoin to retire.") {
		t.Fatalf("expected shortfall verdict, got:\n%s", content)
	}
	if strings.Contains(content, "MONTE CARLO OUTLOOK") {
		t.Fatalf("simulation section rendered without simulation results")
	}
}

func TestJSONFormatterShape(t *testing.T) {
	out, err := JSONFormatter{}.Format(buildTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	for _, key := range []string{"scenario", "plan", "simulation"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("JSON output missing key %q", key)
		}
	}
	if _, ok := decoded["recommendation"]; ok {
		t.Fatalf("nil recommendation should be omitted from JSON")
	}
}

func TestCSVFormatterSimulationRows(t *testing.T) {
	out, err := CSVFormatter{}.Format(buildTestReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 1+55 {
		t.Fatalf("expected header + 55 rows, got %d lines", len(lines))
	}
	if lines[0] != "age,year,p10_usd,p50_usd" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "31,1,100000.00,500000.00") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
	if !strings.HasPrefix(lines[len(lines)-1], "85,55,") {
		t.Fatalf("unexpected last row %q", lines[len(lines)-1])
	}
}

func TestCSVFormatterProjectionFallback(t *testing.T) {
	report := buildTestReport()
	report.Simulation = nil
	out, err := CSVFormatter{}.Format(report)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if lines[0] != "age,year,btc_holdings" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if len(lines) != 1+56 {
		t.Fatalf("expected header + 56 projection rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "30,0,2.00000000") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
}

func TestCSVFormatterNeedsContent(t *testing.T) {
	if _, err := (CSVFormatter{}).Format(&Report{}); err == nil {
		t.Fatalf("expected error for empty report")
	}
}

func TestFormatterAliasResolution(t *testing.T) {
	f := GetFormatterByName("text")
	if f == nil {
		t.Fatalf("alias text did not resolve to a formatter")
	}
	if f.Name() != "console" {
		t.Fatalf("alias resolved to %q, want 'console'", f.Name())
	}
	if GetFormatterByName("definitely-not-a-format") != nil {
		t.Fatalf("unknown name should resolve to nil")
	}
}

func TestAvailableFormatterNamesSorted(t *testing.T) {
	names := AvailableFormatterNames()
	want := []string{"console", "csv", "json"}
	if len(names) != len(want) {
		t.Fatalf("formatter names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("formatter names = %v, want %v", names, want)
		}
	}
}

func TestUnknownFormatErrorIncludesSuggestions(t *testing.T) {
	_, err := GenerateReport(&Report{}, "definitely-not-a-format")
	if err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("error should wrap ErrUnsupportedFormat, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "unsupported report format") || !strings.Contains(msg, "Try one of:") {
		t.Fatalf("error message missing suggestions: %s", msg)
	}
}

func TestWriteFormattedCreatesTimestampedFile(t *testing.T) {
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(prev)

	ff := FormatterFunc{ID: "stub", F: func(*Report) ([]byte, error) { return []byte("hello"), nil }}
	name, err := WriteFormatted(ff, &Report{}, "txt")
	if err != nil {
		t.Fatalf("WriteFormatted error: %v", err)
	}
	if !strings.HasPrefix(name, "btcplan_report_") || !strings.HasSuffix(name, ".txt") {
		t.Fatalf("unexpected filename %q", name)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("report content = %q", data)
	}
}
