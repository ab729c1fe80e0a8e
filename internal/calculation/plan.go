package calculation

import (
	"fmt"
	"math"

	"github.com/btcplan/retirement-planner/internal/domain"
)

// RetirementPlan is the closed-form answer to "how much bitcoin is
// needed, and how much will there be". All dollar figures are nominal at
// the year they occur.
type RetirementPlan struct {
	BitcoinNeeded             float64 `json:"bitcoin_needed"`
	TotalBitcoinHoldings      float64 `json:"total_bitcoin_holdings"`
	FutureInvestmentValue     float64 `json:"future_investment_value"`
	AnnualExpenseAtRetirement float64 `json:"annual_expense_at_retirement"`
	FutureBitcoinPrice        float64 `json:"future_bitcoin_price"`
	TotalRetirementExpenses   float64 `json:"total_retirement_expenses"`
	LifeExpectancy            int     `json:"life_expectancy"`
}

// Surplus returns projected holdings minus needed holdings, in BTC.
func (p *RetirementPlan) Surplus() float64 {
	return p.TotalBitcoinHoldings - p.BitcoinNeeded
}

// OnTrack reports whether projected holdings cover the need.
func (p *RetirementPlan) OnTrack() bool { return p.Surplus() >= 0 }

// FutureValue returns the future value of fixed monthly contributions
// compounded monthly at the given annual growth rate in percent.
// Contributions are made at the start of each month.
func FutureValue(monthlyInvestment float64, years int, annualGrowthRatePct float64) float64 {
	if annualGrowthRatePct == 0 {
		return monthlyInvestment * float64(years) * 12
	}
	monthlyRate := annualGrowthRatePct / 100 / 12
	n := float64(years) * 12
	return monthlyInvestment * ((math.Pow(1+monthlyRate, n) - 1) / monthlyRate) * (1 + monthlyRate)
}

// FutureValueFromFactor is FutureValue with growth supplied as a
// whole-period factor instead of an annual rate; the factor is converted
// to its equivalent annual rate first.
func FutureValueFromFactor(monthlyInvestment float64, years int, growthFactor float64) float64 {
	rate := 0.0
	if years > 0 {
		rate = (math.Pow(growthFactor, 1/float64(years)) - 1) * 100
	}
	return FutureValue(monthlyInvestment, years, rate)
}

// FutureValueAnnualDue returns the future value of fixed annual
// contributions made at the start of each year, compounded annually.
// This matches the once-a-year purchase cadence of the Monte Carlo
// state machine.
func FutureValueAnnualDue(annualInvestment float64, years int, annualRatePct float64) float64 {
	r := annualRatePct / 100
	if r == 0 {
		return annualInvestment * float64(years)
	}
	return annualInvestment * ((math.Pow(1+r, float64(years)) - 1) / r) * (1 + r)
}

// TotalFutureExpenses returns the sum of an annual expense repeated for
// the given number of years with inflation compounding each year.
func TotalFutureExpenses(annualExpense float64, years int, inflationRatePct float64) float64 {
	rate := inflationRatePct / 100
	if rate == 0 {
		return annualExpense * float64(years)
	}
	return annualExpense * ((math.Pow(1+rate, float64(years)) - 1) / rate) * (1 + rate)
}

// CalculatePlan computes the deterministic retirement plan: the
// inflation-adjusted expense stream during retirement, the projected
// bitcoin price at retirement under the growth assumption, and the gap
// between the bitcoin required and the bitcoin accumulated.
func CalculatePlan(sc domain.Scenario) *RetirementPlan {
	yearsUntilRetirement := sc.YearsUntilRetirement()
	retirementDuration := sc.RetirementDuration()

	inflationFactor := math.Pow(1+sc.InflationRate/100, float64(yearsUntilRetirement))
	annualExpenseAtRetirement := sc.MonthlySpending * 12 * inflationFactor

	totalRetirementExpenses := TotalFutureExpenses(annualExpenseAtRetirement, retirementDuration, sc.InflationRate)

	growthFactor := math.Pow(1+sc.BitcoinGrowthRate/100, float64(yearsUntilRetirement))
	futureBitcoinPrice := sc.CurrentPrice * growthFactor

	bitcoinNeeded := totalRetirementExpenses / futureBitcoinPrice

	futureInvestmentValue := FutureValue(sc.MonthlyInvestment, yearsUntilRetirement, sc.BitcoinGrowthRate)
	bitcoinFromInvestments := futureInvestmentValue / futureBitcoinPrice

	return &RetirementPlan{
		BitcoinNeeded:             bitcoinNeeded,
		TotalBitcoinHoldings:      sc.CurrentHoldings + bitcoinFromInvestments,
		FutureInvestmentValue:     futureInvestmentValue,
		AnnualExpenseAtRetirement: annualExpenseAtRetirement,
		FutureBitcoinPrice:        futureBitcoinPrice,
		TotalRetirementExpenses:   totalRetirementExpenses,
		LifeExpectancy:            sc.LifeExpectancy,
	}
}

// ProjectHoldings returns the deterministic BTC holdings at the end of
// each year from the current age through life expectancy inclusive.
// Prices follow the growth assumption exactly; contributions buy at each
// year's price, and retirement expenses are inflated from the expense
// level at retirement. Holdings floor at zero.
func ProjectHoldings(sc domain.Scenario) ([]float64, error) {
	if sc.RetirementAge <= sc.CurrentAge || sc.RetirementAge >= sc.LifeExpectancy {
		return nil, fmt.Errorf("retirement age %d must lie between current age %d and life expectancy %d",
			sc.RetirementAge, sc.CurrentAge, sc.LifeExpectancy)
	}

	yearsUntilRetirement := sc.YearsUntilRetirement()
	annualExpenseAtRetirement := sc.MonthlySpending * 12 *
		math.Pow(1+sc.InflationRate/100, float64(yearsUntilRetirement))

	holdings := make([]float64, 0, sc.LifeExpectancy-sc.CurrentAge+1)
	btc := sc.CurrentHoldings

	for age := sc.CurrentAge; age <= sc.LifeExpectancy; age++ {
		yearIndex := age - sc.CurrentAge
		price := sc.CurrentPrice * math.Pow(1+sc.BitcoinGrowthRate/100, float64(yearIndex))

		if age < sc.RetirementAge {
			btc += (sc.MonthlyInvestment * 12) / price
		} else {
			expenseYear := age - sc.RetirementAge
			annualExpense := annualExpenseAtRetirement * math.Pow(1+sc.InflationRate/100, float64(expenseYear))
			btc -= annualExpense / price
			btc = math.Max(btc, 0)
		}

		holdings = append(holdings, btc)
	}

	return holdings, nil
}
