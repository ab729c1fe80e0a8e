package output_test

import (
	"os"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/btcplan/retirement-planner/internal/domain"
	"github.com/btcplan/retirement-planner/internal/output"
)

func TestFormatters(t *testing.T) {
	if got := output.FormatUSD(123.45); got != "$123.45" {
		t.Fatalf("FormatUSD = %q", got)
	}
	if got := output.FormatBTC(1.23456); got != "1.2346 BTC" {
		t.Fatalf("FormatBTC = %q", got)
	}
	if got := output.FormatPercent(0.8642); got != "86.4%" {
		t.Fatalf("FormatPercent = %q", got)
	}
}

func TestSaveScenarioRoundTrip(t *testing.T) {
	sc := domain.Scenario{
		CurrentAge: 40, RetirementAge: 60, LifeExpectancy: 90,
		MonthlySpending: 4200, MonthlyInvestment: 800, CurrentHoldings: 0.75,
		BitcoinGrowthRate: 10, InflationRate: 3, TaxRate: 20,
		CurrentPrice: 45000,
	}
	path := t.TempDir() + "/scenario.yaml"
	if err := output.SaveScenario(sc, path); err != nil {
		t.Fatalf("SaveScenario error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved scenario: %v", err)
	}
	var loaded domain.Scenario
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("unmarshal saved scenario: %v", err)
	}
	if loaded != sc {
		t.Fatalf("round trip mismatch:\nsaved  %+v\nloaded %+v", sc, loaded)
	}
}
