package calculation

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/btcplan/retirement-planner/internal/config"
	"github.com/btcplan/retirement-planner/pkg/dateutil"
)

// ReturnMatrix holds one multiplicative annual growth factor per
// (simulation, year) cell. Matrices are produced once per request and
// read-only afterward.
type ReturnMatrix struct {
	sims    int
	years   int
	factors [][]float64
}

func newReturnMatrix(sims, years int) *ReturnMatrix {
	if sims < 0 {
		sims = 0
	}
	if years < 0 {
		years = 0
	}
	factors := make([][]float64, sims)
	for i := range factors {
		factors[i] = make([]float64, years)
	}
	return &ReturnMatrix{sims: sims, years: years, factors: factors}
}

// NewConstantReturns builds a matrix with the same factor in every cell.
// Useful for deterministic cross-checks.
func NewConstantReturns(sims, years int, factor float64) *ReturnMatrix {
	m := newReturnMatrix(sims, years)
	for i := range m.factors {
		for y := range m.factors[i] {
			m.factors[i][y] = factor
		}
	}
	return m
}

// Sims returns the number of simulated futures.
func (m *ReturnMatrix) Sims() int { return m.sims }

// Years returns the number of simulated years.
func (m *ReturnMatrix) Years() int { return m.years }

// At returns the growth factor for one simulation and year.
func (m *ReturnMatrix) At(sim, year int) float64 { return m.factors[sim][year] }

// Row returns one simulation's factors. The slice is shared, not copied.
func (m *ReturnMatrix) Row(sim int) []float64 { return m.factors[sim] }

// ReturnModel produces a return-factor matrix for a population of
// simulated futures. A seed of 0 means draw a fresh entropy seed; any
// other seed makes the output bit-for-bit reproducible. targetGrowthPct
// is the user's long-run annual growth assumption in percent.
type ReturnModel interface {
	Name() string
	Generate(years, sims int, seed int64, targetGrowthPct float64) *ReturnMatrix
}

// ModelFromConfig returns the generator selected by the configuration.
func ModelFromConfig(cfg *config.Config) (ReturnModel, error) {
	switch cfg.Simulation.Model {
	case "halving":
		return NewHalvingCycleModel(cfg.Halving, cfg.Drift), nil
	case "regime":
		return NewRegimeShiftModel(cfg.Regime, cfg.Halving.MinAnnualReturn), nil
	default:
		return nil, fmt.Errorf("unknown return model %q", cfg.Simulation.Model)
	}
}

// HalvingCycleModel generates factors from a four-phase market cycle
// anchored to the last halving date, blended with a long-run drift that
// decays over the simulation horizon.
type HalvingCycleModel struct {
	halving config.HalvingSettings
	drift   config.DriftSettings
}

// NewHalvingCycleModel builds the calendar-phase generator.
func NewHalvingCycleModel(halving config.HalvingSettings, drift config.DriftSettings) *HalvingCycleModel {
	return &HalvingCycleModel{halving: halving, drift: drift}
}

func (m *HalvingCycleModel) Name() string { return "halving" }

// PhaseSchedule maps each simulated year to a phase index. The cycle
// position is sampled at the midpoint of the year, so a year straddling
// a phase boundary is assigned the phase covering its middle.
func (m *HalvingCycleModel) PhaseSchedule(years int) []int {
	phaseLen := m.halving.CycleMonths / len(m.halving.Phases)
	offset := dateutil.MonthsBetween(m.halving.AnchorDate, nowFunc())
	schedule := make([]int, years)
	for y := 0; y < years; y++ {
		month := positiveMod(offset+12*y+6, m.halving.CycleMonths)
		schedule[y] = month / phaseLen
	}
	return schedule
}

// DriftSchedule returns the per-year log-drift and log-volatility arrays
// for the given horizon and growth assumption.
func (m *HalvingCycleModel) DriftSchedule(years int, targetGrowthPct float64) (mu, sigma []float64) {
	schedule := m.PhaseSchedule(years)
	tilts := m.phaseTilts()
	mu0 := math.Log(1 + targetGrowthPct/100)
	mu = make([]float64, years)
	sigma = make([]float64, years)
	for y := 0; y < years; y++ {
		p := schedule[y]
		mu[y] = mu0/(1+float64(y)/m.drift.DecayYearsScale) + tilts[p]
		sigma[y] = m.halving.Phases[p].Volatility
	}
	return mu, sigma
}

// phaseTilts converts each phase's arithmetic mean return into a log
// tilt, centered so the tilts sum to zero. The tilts shape the cycle
// without moving the long-run drift.
func (m *HalvingCycleModel) phaseTilts() []float64 {
	tilts := make([]float64, len(m.halving.Phases))
	var sum float64
	for i, ph := range m.halving.Phases {
		tilts[i] = math.Log(1 + ph.MeanReturn)
		sum += tilts[i]
	}
	avg := sum / float64(len(tilts))
	for i := range tilts {
		tilts[i] -= avg
	}
	return tilts
}

// Generate draws one lognormal factor per cell: exp(N(mu[y], sigma[y])).
// Every factor is strictly positive by construction.
func (m *HalvingCycleModel) Generate(years, sims int, seed int64, targetGrowthPct float64) *ReturnMatrix {
	matrix := newReturnMatrix(sims, years)
	if years <= 0 || sims <= 0 {
		return matrix
	}
	if seed == 0 {
		seed = seedFunc()
	}
	rng := rand.New(rand.NewSource(seed))
	mu, sigma := m.DriftSchedule(years, targetGrowthPct)
	for i := 0; i < sims; i++ {
		row := matrix.factors[i]
		for y := 0; y < years; y++ {
			row[y] = math.Exp(mu[y] + sigma[y]*rng.NormFloat64())
		}
	}
	return matrix
}

// RegimeShiftModel draws each year from a bull or bear regime, a simpler
// alternative to the halving calendar.
type RegimeShiftModel struct {
	regime    config.RegimeSettings
	minReturn float64
}

// NewRegimeShiftModel builds the two-regime generator. minReturn floors
// each annual return so factors stay positive.
func NewRegimeShiftModel(regime config.RegimeSettings, minReturn float64) *RegimeShiftModel {
	return &RegimeShiftModel{regime: regime, minReturn: minReturn}
}

func (m *RegimeShiftModel) Name() string { return "regime" }

// Generate draws a regime per cell, then a normal arithmetic return with
// that regime's parameters. When AlignToTarget is set, every return is
// shifted by a constant so the expected annual return equals the target.
func (m *RegimeShiftModel) Generate(years, sims int, seed int64, targetGrowthPct float64) *ReturnMatrix {
	matrix := newReturnMatrix(sims, years)
	if years <= 0 || sims <= 0 {
		return matrix
	}
	if seed == 0 {
		seed = seedFunc()
	}
	rng := rand.New(rand.NewSource(seed))

	shift := 0.0
	if m.regime.AlignToTarget {
		blended := m.regime.BullProbability*m.regime.BullMean + (1-m.regime.BullProbability)*m.regime.BearMean
		shift = targetGrowthPct/100 - blended
	}

	for i := 0; i < sims; i++ {
		row := matrix.factors[i]
		for y := 0; y < years; y++ {
			var r float64
			if rng.Float64() < m.regime.BullProbability {
				r = m.regime.BullMean + m.regime.BullVolatility*rng.NormFloat64()
			} else {
				r = m.regime.BearMean + m.regime.BearVolatility*rng.NormFloat64()
			}
			r += shift
			if r < m.minReturn {
				r = m.minReturn
			}
			row[y] = 1 + r
		}
	}
	return matrix
}

func positiveMod(x, m int) int {
	r := x % m
	if r < 0 {
		r += m
	}
	return r
}
