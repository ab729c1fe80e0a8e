package output

import (
	"fmt"
	"math"
	"strings"

	"github.com/btcplan/retirement-planner/internal/calculation"
)

// FormatRecommendation renders the optimizer's advice as prose. Every
// status maps to a fixed sentence shape so the wording stays stable
// across runs.
func FormatRecommendation(rec *calculation.Recommendation) string {
	if rec == nil {
		return ""
	}
	switch rec.Status {
	case calculation.StatusNoChangeNeeded:
		return fmt.Sprintf("No changes needed. The estimated success probability is %s, already inside the target band.",
			FormatPercent(rec.Baseline))

	case calculation.StatusAdjust:
		if rec.Primary == nil {
			return ""
		}
		var b strings.Builder
		fmt.Fprintf(&b, "The plan's success probability is %s. To reach the target, %s, lifting it to %s.",
			FormatPercent(rec.Baseline), describeChange(*rec.Primary), FormatPercent(rec.Primary.Probability))
		if len(rec.Alternates) > 0 {
			fmt.Fprintf(&b, " Alternatively, %s.", joinChanges(rec.Alternates))
		}
		return b.String()

	case calculation.StatusCombined:
		parts := make([]string, len(rec.Combined))
		for i, a := range rec.Combined {
			parts[i] = describeChange(a)
		}
		prob := 0.0
		if len(rec.Combined) > 0 {
			prob = rec.Combined[0].Probability
		}
		return fmt.Sprintf("No single change reaches the target. Combine them: %s, lifting the success probability from %s to %s.",
			strings.Join(parts, " and "), FormatPercent(rec.Baseline), FormatPercent(prob))

	case calculation.StatusEase:
		if rec.Primary == nil {
			return ""
		}
		var b strings.Builder
		fmt.Fprintf(&b, "The plan is ahead of target at %s. You could %s and stay on target.",
			FormatPercent(rec.Baseline), describeChange(*rec.Primary))
		if len(rec.Alternates) > 0 {
			fmt.Fprintf(&b, " You could instead %s.", joinChanges(rec.Alternates))
		}
		return b.String()

	case calculation.StatusNotReachable:
		return fmt.Sprintf("The plan's success probability is %s, and no change within the configured bounds reaches the target. Revisit the plan's core assumptions.",
			FormatPercent(rec.Baseline))

	case calculation.StatusUnavailable:
		return "No recommendation is available for this scenario."
	}
	return ""
}

func describeChange(a calculation.Adjustment) string {
	switch a.Lever {
	case calculation.LeverInvestment:
		if a.Delta >= 0 {
			return fmt.Sprintf("increase monthly investment by %s (to %s)", FormatUSD(a.Delta), FormatUSD(a.NewValue))
		}
		return fmt.Sprintf("reduce monthly investment by %s (to %s)", FormatUSD(-a.Delta), FormatUSD(a.NewValue))
	case calculation.LeverRetireYear:
		n := int(math.Round(a.Delta))
		age := int(math.Round(a.NewValue))
		if n >= 0 {
			return fmt.Sprintf("delay retirement by %s (to age %d)", pluralYears(n), age)
		}
		return fmt.Sprintf("retire %s earlier (at age %d)", pluralYears(-n), age)
	case calculation.LeverSpending:
		if a.Delta <= 0 {
			return fmt.Sprintf("cut monthly spending by %s (to %s)", FormatUSD(-a.Delta), FormatUSD(a.NewValue))
		}
		return fmt.Sprintf("raise monthly spending by %s (to %s)", FormatUSD(a.Delta), FormatUSD(a.NewValue))
	}
	return ""
}

func joinChanges(adjustments []calculation.Adjustment) string {
	parts := make([]string, len(adjustments))
	for i, a := range adjustments {
		parts[i] = describeChange(a)
	}
	return strings.Join(parts, ", or ")
}

func pluralYears(n int) string {
	if n == 1 {
		return "1 year"
	}
	return fmt.Sprintf("%d years", n)
}
