package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btcplan/retirement-planner/internal/calculation"
	"github.com/btcplan/retirement-planner/internal/config"
	"github.com/btcplan/retirement-planner/internal/domain"
)

func loadFixture(t *testing.T, cfg *config.Config, name string) domain.Scenario {
	t.Helper()
	sc, err := cfg.LoadScenario("../testdata/" + name)
	require.NoError(t, err)
	require.Empty(t, sc.Validate(cfg.Limits))
	return sc
}

func TestEndToEndPlan(t *testing.T) {
	// Test that we can load a scenario file and run the closed-form plan
	cfg := config.Default()
	sc := loadFixture(t, cfg, "example_scenario.yaml")

	engine, err := calculation.NewEngine(cfg)
	require.NoError(t, err)

	result, err := engine.RunPlan(sc)
	require.NoError(t, err)
	require.NotNil(t, result.Plan)

	assert.True(t, result.Plan.BitcoinNeeded > 0)
	assert.True(t, result.Plan.FutureBitcoinPrice > sc.CurrentPrice)
	assert.True(t, result.Plan.TotalRetirementExpenses > result.Plan.AnnualExpenseAtRetirement)

	// Projected holdings are current holdings plus what the contributions buy.
	fromInvestments := result.Plan.FutureInvestmentValue / result.Plan.FutureBitcoinPrice
	assert.InDelta(t, sc.CurrentHoldings+fromInvestments, result.Plan.TotalBitcoinHoldings, 1e-9)

	// One projection point per year from the current age through life
	// expectancy inclusive.
	assert.Len(t, result.Projection, sc.HorizonYears()+1)
	assert.GreaterOrEqual(t, result.HealthScore, 0)
	assert.LessOrEqual(t, result.HealthScore, 100)

	// The fixture is generously funded, so the plan should be on track.
	assert.True(t, result.Plan.OnTrack())
	assert.True(t, result.Plan.Surplus() > 0)
}

func TestEndToEndSimulation(t *testing.T) {
	cfg := config.Default()
	sc := loadFixture(t, cfg, "example_scenario.yaml")

	engine, err := calculation.NewEngine(cfg)
	require.NoError(t, err)

	opts := engine.FastOptions()
	opts.Sims = 200
	opts.Seed = 99

	summary, err := engine.RunSimulation(context.Background(), sc, opts)
	require.NoError(t, err)

	assert.Equal(t, "halving", summary.Model)
	assert.Equal(t, 200, summary.Sims)
	assert.Equal(t, sc.HorizonYears(), summary.Years)

	p := summary.SuccessProbability()
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)

	// One percentile series per requested level, one value per year, and
	// for each year the series must be ordered by level.
	require.Len(t, summary.Stream.Series, len(opts.Levels))
	for i, series := range summary.Stream.Series {
		assert.Len(t, series, summary.Years, "series for P%d", summary.Stream.Levels[i])
	}
	for year := 0; year < summary.Years; year++ {
		for i := 1; i < len(summary.Stream.Series); i++ {
			assert.LessOrEqual(t, summary.Stream.Series[i-1][year], summary.Stream.Series[i][year],
				"percentiles out of order in year %d", year)
		}
	}
}

func TestSeededSimulationIsReproducible(t *testing.T) {
	cfg := config.Default()
	sc := loadFixture(t, cfg, "example_scenario.yaml")

	engine, err := calculation.NewEngine(cfg)
	require.NoError(t, err)

	opts := calculation.SimulationOptions{Sims: 300, Seed: 7, Levels: []int{10, 50, 90}}

	first, err := engine.RunSimulation(context.Background(), sc, opts)
	require.NoError(t, err)
	second, err := engine.RunSimulation(context.Background(), sc, opts)
	require.NoError(t, err)

	assert.Equal(t, first.SuccessProbability(), second.SuccessProbability())
	assert.Equal(t, first.Stream.Series, second.Stream.Series)
}

func TestEndToEndRecommendation(t *testing.T) {
	cfg := config.Default()
	// Keep the search cheap; the default optimizer runs 5000 paths per probe.
	cfg.Optimizer.MinSims = 500
	sc := loadFixture(t, cfg, "lean_scenario.yaml")

	engine, err := calculation.NewEngine(cfg)
	require.NoError(t, err)

	rec, err := engine.Recommend(context.Background(), sc)
	require.NoError(t, err)

	known := []calculation.RecommendationStatus{
		calculation.StatusNoChangeNeeded,
		calculation.StatusEase,
		calculation.StatusAdjust,
		calculation.StatusCombined,
		calculation.StatusNotReachable,
	}
	assert.Contains(t, known, rec.Status)
	assert.GreaterOrEqual(t, rec.Baseline, 0.0)
	assert.LessOrEqual(t, rec.Baseline, 1.0)

	// Whatever the search found must actually clear the band floor.
	if rec.Status == calculation.StatusAdjust {
		require.NotNil(t, rec.Primary)
		assert.GreaterOrEqual(t, rec.Primary.Probability, cfg.Optimizer.TargetLow)
	}
	for _, adj := range rec.Combined {
		assert.GreaterOrEqual(t, adj.Probability, cfg.Optimizer.TargetLow)
	}
}

func TestRegimeModelFromSettings(t *testing.T) {
	cfg := config.Default()
	cfg.Simulation.Model = "regime"
	sc := loadFixture(t, cfg, "example_scenario.yaml")

	engine, err := calculation.NewEngine(cfg)
	require.NoError(t, err)
	assert.Equal(t, "regime", engine.ModelName())

	summary, err := engine.RunSimulation(context.Background(), sc, calculation.SimulationOptions{Sims: 100, Seed: 3})
	require.NoError(t, err)
	assert.Equal(t, "regime", summary.Model)
}
