package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/btcplan/retirement-planner/internal/calculation"
	"github.com/btcplan/retirement-planner/internal/domain"
	"github.com/btcplan/retirement-planner/pkg/money"
)

// ConsoleFormatter renders the full plain-text report.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(r *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	fmt.Fprintln(&buf, "BITCOIN RETIREMENT PLAN")
	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	fmt.Fprintln(&buf)

	if len(r.PriceWarnings) > 0 {
		for _, w := range r.PriceWarnings {
			fmt.Fprintf(&buf, "note: %s\n", w)
		}
		fmt.Fprintln(&buf)
	}

	if r.Plan != nil {
		writeSummary(&buf, r.Scenario, r.Plan.Plan)
		writeBreakdown(&buf, r.Scenario, r.Plan)
	}
	if r.Simulation != nil {
		writeSimulation(&buf, r.Scenario, r.Simulation)
	}
	if r.Recommendation != nil {
		fmt.Fprintln(&buf, "RECOMMENDATION")
		fmt.Fprintln(&buf, "==============")
		fmt.Fprintln(&buf, FormatRecommendation(r.Recommendation))
		fmt.Fprintln(&buf)
	}
	if r.Plan != nil {
		writeVerification(&buf, r.Scenario, r.Plan.Plan)
	}
	if len(r.Assumptions) > 0 {
		fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
		for _, a := range r.Assumptions {
			fmt.Fprintf(&buf, "• %s\n", a)
		}
		fmt.Fprintln(&buf)
	}

	fmt.Fprintln(&buf, "Note: Bitcoin prices are highly volatile. These calculations are estimates")
	fmt.Fprintln(&buf, "and should not be considered financial advice.")
	return buf.Bytes(), nil
}

func writeSummary(buf *bytes.Buffer, sc domain.Scenario, plan *calculation.RetirementPlan) {
	fmt.Fprintln(buf, "RETIREMENT SUMMARY")
	fmt.Fprintln(buf, "==================")
	if plan.OnTrack() {
		fmt.Fprintf(buf, "✅ Great news! You will have enough Bitcoin to retire. You will retire at %d\n", sc.RetirementAge)
		fmt.Fprintf(buf, "and live comfortably until %d with %.4f BTC. Your inflation-adjusted annual\n", sc.LifeExpectancy, plan.TotalBitcoinHoldings)
		fmt.Fprintf(buf, "expenses at retirement will be %s.\n", FormatUSD(plan.AnnualExpenseAtRetirement))
	} else {
		fmt.Fprintf(buf, "💡 You need an additional %.4f Bitcoin to retire. You will retire at %d and\n", -plan.Surplus(), sc.RetirementAge)
		fmt.Fprintf(buf, "need %.4f BTC. Your inflation-adjusted annual expenses at retirement will\n", plan.BitcoinNeeded)
		fmt.Fprintf(buf, "be %s.\n", FormatUSD(plan.AnnualExpenseAtRetirement))
	}
	fmt.Fprintln(buf)
}

func writeBreakdown(buf *bytes.Buffer, sc domain.Scenario, result *calculation.PlanResult) {
	plan := result.Plan
	line := func(label string, value string) {
		fmt.Fprintf(buf, "  %-32s %s\n", label, value)
	}

	fmt.Fprintln(buf, "DETAILED BREAKDOWN")
	fmt.Fprintln(buf, "==================")
	line("Years Until Retirement:", fmt.Sprintf("%d years", sc.YearsUntilRetirement()))
	line("Total Retirement Period:", fmt.Sprintf("%d years", sc.RetirementDuration()))
	line("Current Bitcoin Price:", FormatUSD(sc.CurrentPrice))
	line("Projected Price at Retirement:", FormatUSD(plan.FutureBitcoinPrice))
	line("Bitcoin Needed at Retirement:", FormatBTC(plan.BitcoinNeeded))
	line("Future Value of Investments:", FormatUSD(plan.FutureInvestmentValue))
	if plan.FutureBitcoinPrice > 0 {
		line("Bitcoin from Investments:", FormatBTC(plan.FutureInvestmentValue/plan.FutureBitcoinPrice))
	}
	line("Total Retirement Expenses:", FormatUSD(plan.TotalRetirementExpenses))
	line("Monthly Spending Today:", fmt.Sprintf("%s (%s per year)",
		money.New(sc.MonthlySpending).Format(), money.New(sc.MonthlySpending).Annual().Format()))
	line("Monthly Investment:", fmt.Sprintf("%s (%s per year)",
		money.New(sc.MonthlyInvestment).Format(), money.New(sc.MonthlyInvestment).Annual().Format()))
	line("Annual Expenses at Retirement:", fmt.Sprintf("%s (%s per month)",
		money.New(plan.AnnualExpenseAtRetirement).Format(), money.New(plan.AnnualExpenseAtRetirement).Monthly().Format()))
	line("Plan Health:", fmt.Sprintf("%d/100 (funding ratio %.2f, runway %d years)",
		result.HealthScore, result.Health.FundingRatio, result.Health.RunwayYears))
	fmt.Fprintln(buf)
}

func writeSimulation(buf *bytes.Buffer, sc domain.Scenario, sim *calculation.SimulationSummary) {
	fmt.Fprintln(buf, "MONTE CARLO OUTLOOK")
	fmt.Fprintln(buf, "===================")
	seed := "fresh entropy"
	if sim.Seed != 0 {
		seed = fmt.Sprintf("seed %d", sim.Seed)
	}
	fmt.Fprintf(buf, "Model %s, %d simulations over %d years (%s).\n", sim.Model, sim.Sims, sim.Years, seed)
	fmt.Fprintf(buf, "Success probability: %s\n", FormatPercent(sim.SuccessProbability()))
	fmt.Fprintln(buf)

	stream := sim.Stream
	if len(stream.Levels) == 0 || len(stream.Series) == 0 {
		return
	}
	fmt.Fprintln(buf, "Portfolio value percentiles (USD):")
	header := fmt.Sprintf("  %-26s", "")
	for _, lv := range stream.Levels {
		header += fmt.Sprintf("%16s", fmt.Sprintf("P%d", lv))
	}
	fmt.Fprintln(buf, header)

	writePercentileRow := func(label string, idx int) {
		if idx < 0 || idx >= sim.Years {
			return
		}
		row := fmt.Sprintf("  %-26s", label)
		for i := range stream.Levels {
			row += fmt.Sprintf("%16s", FormatUSD(stream.Series[i][idx]))
		}
		fmt.Fprintln(buf, row)
	}
	writePercentileRow(fmt.Sprintf("At retirement (%d):", sc.RetirementAge), sc.YearsUntilRetirement()-1)
	writePercentileRow(fmt.Sprintf("At life expectancy (%d):", sc.LifeExpectancy), sim.Years-1)
	fmt.Fprintln(buf)
}

func writeVerification(buf *bytes.Buffer, sc domain.Scenario, plan *calculation.RetirementPlan) {
	fmt.Fprintln(buf, "VERIFICATION")
	fmt.Fprintln(buf, "============")
	fmt.Fprintf(buf, "With %s/month investment for %d years at %.1f%% growth:\n",
		FormatUSD(sc.MonthlyInvestment), sc.YearsUntilRetirement(), sc.BitcoinGrowthRate)
	fmt.Fprintf(buf, "- Future value: %s\n", FormatUSD(plan.FutureInvestmentValue))
	if plan.FutureBitcoinPrice > 0 {
		fmt.Fprintf(buf, "- Bitcoin from investments: %.4f BTC\n", plan.FutureInvestmentValue/plan.FutureBitcoinPrice)
	}
	fmt.Fprintln(buf, "At retirement:")
	fmt.Fprintf(buf, "- Annual expenses: %s\n", FormatUSD(plan.AnnualExpenseAtRetirement))
	fmt.Fprintf(buf, "- Total expenses over %d years: %s\n", sc.RetirementDuration(), FormatUSD(plan.TotalRetirementExpenses))
	fmt.Fprintf(buf, "- Bitcoin needed: %.4f BTC\n", plan.BitcoinNeeded)
	fmt.Fprintln(buf)
}
