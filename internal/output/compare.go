package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/btcplan/retirement-planner/internal/calculation"
	"github.com/btcplan/retirement-planner/internal/domain"
	"github.com/btcplan/retirement-planner/pkg/money"
)

// ComparisonRow pairs a named scenario with its closed-form plan so
// several retirement variants can be laid side by side.
type ComparisonRow struct {
	Name        string
	Scenario    domain.Scenario
	Plan        *calculation.RetirementPlan
	HealthScore int
}

// BestFunded returns the row with the largest holdings surplus. The
// second return is false when rows is empty.
func BestFunded(rows []ComparisonRow) (ComparisonRow, bool) {
	if len(rows) == 0 {
		return ComparisonRow{}, false
	}
	best := rows[0]
	for _, r := range rows[1:] {
		if r.Plan.Surplus() > best.Plan.Surplus() {
			best = r
		}
	}
	return best, true
}

// FormatComparisonTable renders the comparison as an aligned console table.
func FormatComparisonTable(rows []ComparisonRow) []byte {
	sorted := append([]ComparisonRow(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var buf bytes.Buffer
	fmt.Fprintln(&buf, "SCENARIO COMPARISON")
	fmt.Fprintln(&buf, strings.Repeat("=", 19))
	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "%-22s %12s %15s %16s %21s %29s %27s %9s\n",
		"Scenario", "Current Age", "Retirement Age", "Life Expectancy",
		"Bitcoin Needed (BTC)", "Total Bitcoin Holdings (BTC)", "Future Bitcoin Price (USD)", "On Track")
	fmt.Fprintln(&buf, strings.Repeat("-", 157))
	for _, r := range sorted {
		onTrack := "no"
		if r.Plan.OnTrack() {
			onTrack = "yes"
		}
		fmt.Fprintf(&buf, "%-22s %12d %15d %16d %21.4f %29.4f %27s %9s\n",
			r.Name, r.Scenario.CurrentAge, r.Scenario.RetirementAge, r.Scenario.LifeExpectancy,
			r.Plan.BitcoinNeeded, r.Plan.TotalBitcoinHoldings, FormatUSD(r.Plan.FutureBitcoinPrice), onTrack)
	}
	fmt.Fprintln(&buf)

	if best, ok := BestFunded(sorted); ok {
		if best.Plan.OnTrack() {
			fmt.Fprintf(&buf, "Best funded: %s (surplus %.4f BTC)\n", best.Name, best.Plan.Surplus())
		} else {
			fmt.Fprintf(&buf, "Closest to funded: %s (shortfall %.4f BTC)\n", best.Name, -best.Plan.Surplus())
		}
	}
	return buf.Bytes()
}

// ComparisonCSV exports the comparison with one row per scenario.
func ComparisonCSV(rows []ComparisonRow) ([]byte, error) {
	sorted := append([]ComparisonRow(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{
		"Scenario", "Current Age", "Retirement Age", "Life Expectancy",
		"Bitcoin Needed (BTC)", "Total Bitcoin Holdings (BTC)", "Future Bitcoin Price (USD)",
		"On Track", "Health",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range sorted {
		row := []string{
			r.Name,
			strconv.Itoa(r.Scenario.CurrentAge),
			strconv.Itoa(r.Scenario.RetirementAge),
			strconv.Itoa(r.Scenario.LifeExpectancy),
			strconv.FormatFloat(r.Plan.BitcoinNeeded, 'f', 4, 64),
			strconv.FormatFloat(r.Plan.TotalBitcoinHoldings, 'f', 4, 64),
			money.New(r.Plan.FutureBitcoinPrice).String(),
			strconv.FormatBool(r.Plan.OnTrack()),
			strconv.Itoa(r.HealthScore),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
