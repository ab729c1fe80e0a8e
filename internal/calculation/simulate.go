package calculation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/btcplan/retirement-planner/internal/domain"
)

// ErrHorizonMismatch reports a return matrix whose year count does not
// match the scenario horizon. The matrix is always produced internally,
// so this is a programming error, not a user error.
var ErrHorizonMismatch = errors.New("calculation: return matrix does not match scenario horizon")

// taxEpsilon floors the gross-up denominator when the tax rate is at or
// above 100%, so extreme input degrades instead of dividing by zero.
const taxEpsilon = 1e-9

// PathsResult holds the fully materialized trajectories of every
// simulated future.
type PathsResult struct {
	// Holdings is BTC held per simulation and year, floored at zero.
	Holdings [][]float64 `json:"holdings"`
	// Values is the USD value of Holdings at each year's closing price.
	Values             [][]float64 `json:"values"`
	SuccessProbability float64     `json:"success_probability"`
}

// StreamResult summarizes the same trajectories per year without
// retaining the full matrix.
type StreamResult struct {
	// Levels are the requested percentile levels, in request order.
	Levels []int `json:"levels"`
	// Series holds one USD value per year for each level, parallel to
	// Levels.
	Series             [][]float64 `json:"series"`
	SuccessProbability float64     `json:"success_probability"`
}

// SeriesFor returns the series for one percentile level, or nil if the
// level was not requested.
func (r *StreamResult) SeriesFor(level int) []float64 {
	for i, lv := range r.Levels {
		if lv == level {
			return r.Series[i]
		}
	}
	return nil
}

// grossUp converts a net spending need into the gross sale required
// after taxes on the sold amount.
func grossUp(taxRatePct float64) float64 {
	denom := 1 - taxRatePct/100
	if denom < taxEpsilon {
		denom = taxEpsilon
	}
	return 1 / denom
}

// simState is the per-future state advanced one year at a time by step.
// Purchases and sales happen at the price the year opens with; the
// year's return factor then moves the price for the following year.
type simState struct {
	yearsUntilRetirement int
	investAnnual         float64
	spendAnnual          float64 // gross of taxes

	holdings float64
	price    float64
	ruined   bool
}

func newSimState(sc domain.Scenario) simState {
	return simState{
		yearsUntilRetirement: sc.YearsUntilRetirement(),
		investAnnual:         sc.MonthlyInvestment * 12,
		spendAnnual:          sc.MonthlySpending * 12 * grossUp(sc.TaxRate),
		holdings:             sc.CurrentHoldings,
		price:                sc.CurrentPrice,
	}
}

// step advances one year. Ruin is absorbing: the first withdrawal year
// whose pre-floor holdings reach zero or below marks the future ruined,
// and the zero floor afterward exists for clean reporting, not recovery.
func (st *simState) step(year int, factor float64) {
	if year < st.yearsUntilRetirement {
		st.holdings += st.investAnnual / st.price
	} else if st.spendAnnual > 0 {
		st.holdings -= st.spendAnnual / st.price
		if st.holdings <= 0 {
			st.ruined = true
			st.holdings = 0
		}
	}
	st.price *= factor
}

// value returns the USD value of the holdings at the closing price.
func (st *simState) value() float64 { return st.holdings * st.price }

func checkHorizon(returns *ReturnMatrix, sc domain.Scenario) error {
	if returns.Years() != sc.HorizonYears() {
		return fmt.Errorf("%w: matrix spans %d years, scenario spans %d",
			ErrHorizonMismatch, returns.Years(), sc.HorizonYears())
	}
	return nil
}

// successFrom computes the fraction of futures that avoided ruin. When
// the horizon contains no withdrawal years, success is 1 by definition.
func successFrom(ruinedCount, sims, yearsUntilRetirement, years int) float64 {
	if yearsUntilRetirement >= years || sims == 0 {
		return 1.0
	}
	return float64(sims-ruinedCount) / float64(sims)
}

// SimulatePaths runs every simulated future to the end of the horizon
// and returns the full holdings and value trajectories.
func SimulatePaths(returns *ReturnMatrix, sc domain.Scenario) (*PathsResult, error) {
	if err := checkHorizon(returns, sc); err != nil {
		return nil, err
	}
	sims, years := returns.Sims(), returns.Years()

	holdings := make([][]float64, sims)
	values := make([][]float64, sims)
	ruined := 0
	for i := 0; i < sims; i++ {
		st := newSimState(sc)
		hRow := make([]float64, years)
		vRow := make([]float64, years)
		for t := 0; t < years; t++ {
			st.step(t, returns.At(i, t))
			hRow[t] = st.holdings
			vRow[t] = st.value()
		}
		holdings[i] = hRow
		values[i] = vRow
		if st.ruined {
			ruined++
		}
	}

	return &PathsResult{
		Holdings:           holdings,
		Values:             values,
		SuccessProbability: successFrom(ruined, sims, sc.YearsUntilRetirement(), years),
	}, nil
}

// SimulateStreaming produces the per-year percentile series of USD value
// while holding only per-future state, bounding memory at O(sims) for
// arbitrarily long horizons. Percentiles are taken across all futures;
// ruined futures keep reporting zero, which deliberately drags the low
// percentiles toward zero rather than hiding the failed paths.
func SimulateStreaming(returns *ReturnMatrix, sc domain.Scenario, levels []int) (*StreamResult, error) {
	if err := checkHorizon(returns, sc); err != nil {
		return nil, err
	}
	sims, years := returns.Sims(), returns.Years()

	states := make([]simState, sims)
	for i := range states {
		states[i] = newSimState(sc)
	}

	series := make([][]float64, len(levels))
	for i := range series {
		series[i] = make([]float64, years)
	}
	buf := make([]float64, sims)

	for t := 0; t < years; t++ {
		for i := range states {
			states[i].step(t, returns.At(i, t))
			buf[i] = states[i].value()
		}
		sort.Float64s(buf)
		for li, lv := range levels {
			series[li][t] = percentileOfSorted(buf, float64(lv))
		}
	}

	ruined := 0
	for i := range states {
		if states[i].ruined {
			ruined++
		}
	}

	return &StreamResult{
		Levels:             append([]int(nil), levels...),
		Series:             series,
		SuccessProbability: successFrom(ruined, sims, sc.YearsUntilRetirement(), years),
	}, nil
}

// SuccessProbability runs the state machine without materializing any
// trajectory or percentile output. The optimizer calls this in a tight
// loop, so it does the minimum work per evaluation.
func SuccessProbability(returns *ReturnMatrix, sc domain.Scenario) (float64, error) {
	if err := checkHorizon(returns, sc); err != nil {
		return 0, err
	}
	sims, years := returns.Sims(), returns.Years()

	ruined := 0
	for i := 0; i < sims; i++ {
		st := newSimState(sc)
		for t := 0; t < years; t++ {
			st.step(t, returns.At(i, t))
			if st.ruined {
				ruined++
				break
			}
		}
	}

	return successFrom(ruined, sims, sc.YearsUntilRetirement(), years), nil
}
