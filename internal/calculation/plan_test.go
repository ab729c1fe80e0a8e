package calculation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btcplan/retirement-planner/internal/domain"
)

func TestFutureValue(t *testing.T) {
	// Zero growth degenerates to the plain sum of contributions.
	assert.InDelta(t, 60000, FutureValue(500, 10, 0), 1e-9)

	// One year at 12% nominal, compounded monthly, contributions at the
	// start of each month.
	assert.InDelta(t, 6404.66, FutureValue(500, 1, 12), 0.01)

	assert.Zero(t, FutureValue(500, 0, 12))
	assert.Zero(t, FutureValue(0, 10, 12))
}

func TestFutureValueFromFactor(t *testing.T) {
	// A whole-period factor of (1.08)^10 is the same assumption as 8%/yr.
	factor := math.Pow(1.08, 10)
	assert.InEpsilon(t, FutureValue(250, 10, 8), FutureValueFromFactor(250, 10, factor), 1e-9)
	assert.InDelta(t, 250*12*10, FutureValueFromFactor(250, 10, 1), 1e-6)
}

func TestFutureValueAnnualDue(t *testing.T) {
	assert.InDelta(t, 18000, FutureValueAnnualDue(6000, 3, 0), 1e-9)

	// Three annual start-of-year contributions at 10%:
	// 6000*1.1^3 + 6000*1.1^2 + 6000*1.1
	want := 6000*math.Pow(1.1, 3) + 6000*math.Pow(1.1, 2) + 6000*1.1
	assert.InEpsilon(t, want, FutureValueAnnualDue(6000, 3, 10), 1e-12)
}

func TestTotalFutureExpenses(t *testing.T) {
	assert.InDelta(t, 3000, TotalFutureExpenses(1000, 3, 0), 1e-9)

	// Each retirement year is inflated once more than the last, starting
	// one step above the base expense.
	want := 1000*1.1 + 1000*1.1*1.1
	assert.InEpsilon(t, want, TotalFutureExpenses(1000, 2, 10), 1e-12)
}

func TestCalculatePlan(t *testing.T) {
	sc := demoScenario()
	plan := CalculatePlan(sc)

	accumYears := float64(sc.YearsUntilRetirement())
	wantPrice := sc.CurrentPrice * math.Pow(1.05, accumYears)
	assert.InEpsilon(t, wantPrice, plan.FutureBitcoinPrice, 1e-12)

	wantExpense := sc.MonthlySpending * 12 * math.Pow(1.02, accumYears)
	assert.InEpsilon(t, wantExpense, plan.AnnualExpenseAtRetirement, 1e-12)

	wantTotal := TotalFutureExpenses(wantExpense, sc.RetirementDuration(), sc.InflationRate)
	assert.InEpsilon(t, wantTotal, plan.TotalRetirementExpenses, 1e-12)

	assert.InEpsilon(t, plan.TotalRetirementExpenses/plan.FutureBitcoinPrice, plan.BitcoinNeeded, 1e-12)

	wantFV := FutureValue(sc.MonthlyInvestment, sc.YearsUntilRetirement(), sc.BitcoinGrowthRate)
	assert.InEpsilon(t, wantFV, plan.FutureInvestmentValue, 1e-12)
	assert.InEpsilon(t, sc.CurrentHoldings+wantFV/wantPrice, plan.TotalBitcoinHoldings, 1e-12)

	assert.Equal(t, sc.LifeExpectancy, plan.LifeExpectancy)
	assert.InDelta(t, plan.TotalBitcoinHoldings-plan.BitcoinNeeded, plan.Surplus(), 1e-12)
	assert.Equal(t, plan.Surplus() >= 0, plan.OnTrack())
}

func TestCalculatePlanOnTrackFlips(t *testing.T) {
	sc := demoScenario()

	rich := sc
	rich.CurrentHoldings = 1000
	assert.True(t, CalculatePlan(rich).OnTrack())

	broke := sc
	broke.CurrentHoldings = 0
	broke.MonthlyInvestment = 1
	broke.MonthlySpending = 50000
	assert.False(t, CalculatePlan(broke).OnTrack())
}

func TestProjectHoldingsShape(t *testing.T) {
	sc := demoScenario()
	series, err := ProjectHoldings(sc)
	require.NoError(t, err)
	require.Len(t, series, sc.HorizonYears()+1)

	// Contributions only until retirement, so the series rises through
	// the accumulation years.
	for i := 1; i < sc.YearsUntilRetirement(); i++ {
		assert.Greater(t, series[i], series[i-1], "accumulation year %d did not grow", i)
	}
	for _, v := range series {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestProjectHoldingsFloorsAtZero(t *testing.T) {
	sc := domain.Scenario{
		CurrentAge: 60, RetirementAge: 61, LifeExpectancy: 70,
		MonthlySpending: 10000, MonthlyInvestment: 0,
		CurrentHoldings: 0.05, CurrentPrice: 10000,
	}
	series, err := ProjectHoldings(sc)
	require.NoError(t, err)

	assert.Zero(t, series[1])
	assert.Zero(t, series[len(series)-1])
}

func TestProjectHoldingsRejectsBadAgeOrder(t *testing.T) {
	sc := demoScenario()
	sc.RetirementAge = sc.CurrentAge
	_, err := ProjectHoldings(sc)
	assert.Error(t, err)

	sc = demoScenario()
	sc.RetirementAge = sc.LifeExpectancy
	_, err = ProjectHoldings(sc)
	assert.Error(t, err)
}
