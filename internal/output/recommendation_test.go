package output

import (
	"strings"
	"testing"

	"github.com/btcplan/retirement-planner/internal/calculation"
)

func TestFormatRecommendationNoChange(t *testing.T) {
	rec := &calculation.Recommendation{Status: calculation.StatusNoChangeNeeded, Baseline: 0.85}
	got := FormatRecommendation(rec)
	if got != "No changes needed. The estimated success probability is 85.0%, already inside the target band." {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestFormatRecommendationAdjust(t *testing.T) {
	rec := &calculation.Recommendation{
		Status:   calculation.StatusAdjust,
		Baseline: 0.62,
		Primary: &calculation.Adjustment{
			Lever: calculation.LeverInvestment, Delta: 210, NewValue: 710, Probability: 0.81,
		},
		Alternates: []calculation.Adjustment{
			{Lever: calculation.LeverRetireYear, Delta: 2, NewValue: 67, Probability: 0.80},
			{Lever: calculation.LeverSpending, Delta: -250, NewValue: 2750, Probability: 0.80},
		},
	}
	got := FormatRecommendation(rec)
	for _, want := range []string{
		"The plan's success probability is 62.0%.",
		"increase monthly investment by $210.00 (to $710.00), lifting it to 81.0%.",
		"Alternatively, delay retirement by 2 years (to age 67), or cut monthly spending by $250.00 (to $2,750.00).",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in %q", want, got)
		}
	}
}

func TestFormatRecommendationCombined(t *testing.T) {
	rec := &calculation.Recommendation{
		Status:   calculation.StatusCombined,
		Baseline: 0.45,
		Combined: []calculation.Adjustment{
			{Lever: calculation.LeverRetireYear, Delta: 4, NewValue: 69, Probability: 0.81},
			{Lever: calculation.LeverInvestment, Delta: 170, NewValue: 670, Probability: 0.81},
		},
	}
	got := FormatRecommendation(rec)
	want := "No single change reaches the target. Combine them: delay retirement by 4 years (to age 69) and increase monthly investment by $170.00 (to $670.00), lifting the success probability from 45.0% to 81.0%."
	if got != want {
		t.Fatalf("unexpected text:\ngot  %q\nwant %q", got, want)
	}
}

func TestFormatRecommendationEase(t *testing.T) {
	rec := &calculation.Recommendation{
		Status:   calculation.StatusEase,
		Baseline: 0.97,
		Primary: &calculation.Adjustment{
			Lever: calculation.LeverInvestment, Delta: -500, NewValue: 0, Probability: 0.92,
		},
		Alternates: []calculation.Adjustment{
			{Lever: calculation.LeverRetireYear, Delta: -1, NewValue: 61, Probability: 0.90},
			{Lever: calculation.LeverSpending, Delta: 250, NewValue: 1250, Probability: 0.91},
		},
	}
	got := FormatRecommendation(rec)
	for _, want := range []string{
		"The plan is ahead of target at 97.0%.",
		"You could reduce monthly investment by $500.00 (to $0.00) and stay on target.",
		"You could instead retire 1 year earlier (at age 61), or raise monthly spending by $250.00 (to $1,250.00).",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in %q", want, got)
		}
	}
}

func TestFormatRecommendationTerminalStatuses(t *testing.T) {
	notReachable := FormatRecommendation(&calculation.Recommendation{Status: calculation.StatusNotReachable, Baseline: 0.12})
	if !strings.Contains(notReachable, "no change within the configured bounds reaches the target") {
		t.Fatalf("unexpected not-reachable text: %q", notReachable)
	}
	unavailable := FormatRecommendation(&calculation.Recommendation{Status: calculation.StatusUnavailable})
	if unavailable != "No recommendation is available for this scenario." {
		t.Fatalf("unexpected unavailable text: %q", unavailable)
	}
	if FormatRecommendation(nil) != "" {
		t.Fatalf("nil recommendation should render as empty")
	}
}
