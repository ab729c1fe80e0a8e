package calculation

import (
	"context"
	"fmt"

	"github.com/btcplan/retirement-planner/internal/config"
	"github.com/btcplan/retirement-planner/internal/domain"
)

// Engine orchestrates the planner's calculations: the closed-form plan,
// the Monte Carlo simulation, and the recommendation search, all driven
// by one configuration and one return model.
type Engine struct {
	cfg    *config.Config
	model  ReturnModel
	logger Logger
}

// NewEngine builds an engine with the return model the configuration
// selects.
func NewEngine(cfg *config.Config) (*Engine, error) {
	model, err := ModelFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, model: model, logger: NopLogger{}}, nil
}

// SetLogger sets the logger for the engine. If nil is provided, a no-op
// logger is used.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.logger = NopLogger{}
		return
	}
	e.logger = l
}

// ModelName returns the name of the active return model.
func (e *Engine) ModelName() string { return e.model.Name() }

func checkAges(sc domain.Scenario) error {
	if sc.CurrentAge >= sc.RetirementAge || sc.RetirementAge >= sc.LifeExpectancy {
		return fmt.Errorf("scenario ages must satisfy current < retirement < life expectancy, got %d/%d/%d",
			sc.CurrentAge, sc.RetirementAge, sc.LifeExpectancy)
	}
	return nil
}

// PlanResult bundles the deterministic outputs for one scenario.
type PlanResult struct {
	Plan        *RetirementPlan `json:"plan"`
	Projection  []float64       `json:"projection"`
	HealthScore int             `json:"health_score"`
	Health      HealthDetails   `json:"health"`
}

// RunPlan computes the closed-form plan, the year-by-year deterministic
// projection, and the health score derived from both.
func (e *Engine) RunPlan(sc domain.Scenario) (*PlanResult, error) {
	if err := checkAges(sc); err != nil {
		return nil, err
	}

	plan := CalculatePlan(sc)
	series, err := ProjectHoldings(sc)
	if err != nil {
		return nil, err
	}
	score, details := HealthScore(plan.TotalBitcoinHoldings, plan.BitcoinNeeded, series, sc.CurrentAge, sc.RetirementAge)

	e.logger.Debugf("plan: need %.4f BTC, projected %.4f BTC, health %d/100 (runway %d years)",
		plan.BitcoinNeeded, plan.TotalBitcoinHoldings, score, details.RunwayYears)

	return &PlanResult{Plan: plan, Projection: series, HealthScore: score, Health: details}, nil
}

// SimulationOptions selects how much Monte Carlo work to do.
type SimulationOptions struct {
	Sims int
	// Seed of 0 draws fresh entropy; any other value reproduces the run.
	Seed   int64
	Levels []int
	// FullPaths additionally materializes every trajectory, which costs
	// O(sims*years) memory instead of O(sims).
	FullPaths bool
}

// FastOptions returns the quick, seeded preview configuration.
func (e *Engine) FastOptions() SimulationOptions {
	return SimulationOptions{
		Sims:   e.cfg.Simulation.FastSims,
		Seed:   e.cfg.Simulation.FastSeed,
		Levels: e.cfg.Simulation.PercentileLevels,
	}
}

// AccurateOptions returns the full-size, freshly seeded configuration.
func (e *Engine) AccurateOptions() SimulationOptions {
	return SimulationOptions{
		Sims:   e.cfg.Simulation.AccurateSims,
		Levels: e.cfg.Simulation.PercentileLevels,
	}
}

// SimulationSummary is the output of one Monte Carlo run.
type SimulationSummary struct {
	Model string `json:"model"`
	Sims  int    `json:"sims"`
	Years int    `json:"years"`
	Seed  int64  `json:"seed,omitempty"`

	Stream *StreamResult `json:"stream"`
	Paths  *PathsResult  `json:"paths,omitempty"`
}

// SuccessProbability returns the fraction of simulated futures that
// avoided ruin.
func (s *SimulationSummary) SuccessProbability() float64 {
	return s.Stream.SuccessProbability
}

// RunSimulation generates a return matrix and runs the path simulator
// over it, reporting percentile series and the success probability.
func (e *Engine) RunSimulation(ctx context.Context, sc domain.Scenario, opts SimulationOptions) (*SimulationSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Sims <= 0 {
		return nil, fmt.Errorf("simulation count must be positive, got %d", opts.Sims)
	}
	if err := checkAges(sc); err != nil {
		return nil, err
	}

	levels := opts.Levels
	if len(levels) == 0 {
		levels = e.cfg.Simulation.PercentileLevels
	}

	years := sc.HorizonYears()
	e.logger.Infof("simulating %d futures over %d years with the %s model", opts.Sims, years, e.model.Name())
	returns := e.model.Generate(years, opts.Sims, opts.Seed, sc.BitcoinGrowthRate)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stream, err := SimulateStreaming(returns, sc, levels)
	if err != nil {
		return nil, err
	}

	summary := &SimulationSummary{
		Model:  e.model.Name(),
		Sims:   opts.Sims,
		Years:  years,
		Seed:   opts.Seed,
		Stream: stream,
	}
	if opts.FullPaths {
		paths, err := SimulatePaths(returns, sc)
		if err != nil {
			return nil, err
		}
		summary.Paths = paths
	}

	e.logger.Infof("success probability %.1f%%", stream.SuccessProbability*100)
	return summary, nil
}

// Recommend estimates the baseline success probability at the optimizer's
// simulation count and searches for the cheapest adjustment into the
// target band. The baseline estimate and every probe share one matrix.
func (e *Engine) Recommend(ctx context.Context, sc domain.Scenario) (Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return Recommendation{Status: StatusUnavailable}, err
	}
	if err := checkAges(sc); err != nil {
		return Recommendation{Status: StatusUnavailable}, err
	}

	opt := e.cfg.Optimizer
	returns := e.model.Generate(sc.HorizonYears(), opt.MinSims, opt.Seed, sc.BitcoinGrowthRate)
	baseline, err := SuccessProbability(returns, sc)
	if err != nil {
		return Recommendation{Status: StatusUnavailable}, err
	}
	e.logger.Debugf("baseline success probability %.4f over %d sims", baseline, opt.MinSims)

	optimizer := NewOptimizer(opt, e.cfg.Limits, e.model)
	optimizer.SetLogger(e.logger)
	return optimizer.RecommendWithReturns(returns, sc, baseline), nil
}
