package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/btcplan/retirement-planner/internal/domain"
)

// Config holds every tunable the planner uses. Defaults come from
// Default(); a YAML settings file overlays onto the defaults, so a file
// only needs to name the fields it changes.
type Config struct {
	Simulation SimulationSettings `yaml:"simulation" json:"simulation"`
	Halving    HalvingSettings    `yaml:"halving" json:"halving"`
	Regime     RegimeSettings     `yaml:"regime" json:"regime"`
	Drift      DriftSettings      `yaml:"drift" json:"drift"`
	Optimizer  OptimizerSettings  `yaml:"optimizer" json:"optimizer"`
	Price      PriceSettings      `yaml:"price" json:"price"`
	Limits     domain.Limits      `yaml:"limits" json:"limits"`
	Defaults   domain.Scenario    `yaml:"defaults" json:"defaults"`

	// GrowthPresets maps a preset name to an annual growth assumption in
	// percent, selectable by name wherever a growth rate is accepted.
	GrowthPresets map[string]float64 `yaml:"growth_presets" json:"growth_presets"`
}

// SimulationSettings controls the Monte Carlo engine.
type SimulationSettings struct {
	// Model selects the return generator: "halving" or "regime".
	Model            string `yaml:"model" json:"model"`
	FastSims         int    `yaml:"fast_sims" json:"fast_sims"`
	AccurateSims     int    `yaml:"accurate_sims" json:"accurate_sims"`
	FastSeed         int64  `yaml:"fast_seed" json:"fast_seed"`
	PercentileLevels []int  `yaml:"percentile_levels" json:"percentile_levels"`
}

// PhaseParams is one 12-month segment of the halving cycle.
type PhaseParams struct {
	MeanReturn float64 `yaml:"mean_return" json:"mean_return"`
	Volatility float64 `yaml:"volatility" json:"volatility"`
}

// HalvingSettings parameterizes the calendar-phase return model.
// Phases are ordered from the anchor date onward: post-halving momentum,
// continued expansion, cooldown, re-accumulation.
type HalvingSettings struct {
	AnchorDate      time.Time     `yaml:"anchor_date" json:"anchor_date"`
	CycleMonths     int           `yaml:"cycle_months" json:"cycle_months"`
	Phases          []PhaseParams `yaml:"phases" json:"phases"`
	MinAnnualReturn float64       `yaml:"min_annual_return" json:"min_annual_return"`
}

// RegimeSettings parameterizes the two-regime bull/bear return model.
type RegimeSettings struct {
	BullProbability float64 `yaml:"bull_probability" json:"bull_probability"`
	BullMean        float64 `yaml:"bull_mean" json:"bull_mean"`
	BullVolatility  float64 `yaml:"bull_volatility" json:"bull_volatility"`
	BearMean        float64 `yaml:"bear_mean" json:"bear_mean"`
	BearVolatility  float64 `yaml:"bear_volatility" json:"bear_volatility"`
	// AlignToTarget shifts every draw by a constant so the expected annual
	// return matches the scenario's growth assumption.
	AlignToTarget bool `yaml:"align_to_target" json:"align_to_target"`
}

// DriftSettings controls the long-horizon drift decay.
type DriftSettings struct {
	// DecayYearsScale is the denominator scale in mu0/(1+y/scale);
	// larger means slower decay toward zero drift.
	DecayYearsScale float64 `yaml:"decay_years_scale" json:"decay_years_scale"`
}

// OptimizerSettings bounds and weights the recommendation search.
type OptimizerSettings struct {
	TargetLow  float64 `yaml:"target_low" json:"target_low"`
	TargetHigh float64 `yaml:"target_high" json:"target_high"`
	MinSims    int     `yaml:"min_sims" json:"min_sims"`
	Seed       int64   `yaml:"seed" json:"seed"`

	MaxMonthlyInvestment   float64 `yaml:"max_monthly_investment" json:"max_monthly_investment"`
	MaxSpendingCutPct      float64 `yaml:"max_spending_cut_pct" json:"max_spending_cut_pct"`
	MaxSpendingIncreasePct float64 `yaml:"max_spending_increase_pct" json:"max_spending_increase_pct"`
	MaxRetireDelayYears    int     `yaml:"max_retire_delay_years" json:"max_retire_delay_years"`
	SpendingFloor          float64 `yaml:"spending_floor" json:"spending_floor"`

	DollarGranularity float64 `yaml:"dollar_granularity" json:"dollar_granularity"`
	YearGranularity   float64 `yaml:"year_granularity" json:"year_granularity"`

	AlternateCount   int     `yaml:"alternate_count" json:"alternate_count"`
	WeightInvest     float64 `yaml:"weight_invest" json:"weight_invest"`
	WeightSpending   float64 `yaml:"weight_spending" json:"weight_spending"`
	WeightRetireYear float64 `yaml:"weight_retire_year" json:"weight_retire_year"`
}

// PriceSettings configures the live price source.
type PriceSettings struct {
	Endpoint         string  `yaml:"endpoint" json:"endpoint"`
	TimeoutSeconds   float64 `yaml:"timeout_seconds" json:"timeout_seconds"`
	MaxAttempts      int     `yaml:"max_attempts" json:"max_attempts"`
	BaseDelaySeconds float64 `yaml:"base_delay_seconds" json:"base_delay_seconds"`
	JitterSeconds    float64 `yaml:"jitter_seconds" json:"jitter_seconds"`
	FallbackPrice    float64 `yaml:"fallback_price" json:"fallback_price"`
}

// Timeout returns the request timeout as a duration.
func (p PriceSettings) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds * float64(time.Second))
}

// BaseDelay returns the first backoff delay as a duration.
func (p PriceSettings) BaseDelay() time.Duration {
	return time.Duration(p.BaseDelaySeconds * float64(time.Second))
}

// Jitter returns the maximum extra backoff delay as a duration.
func (p PriceSettings) Jitter() time.Duration {
	return time.Duration(p.JitterSeconds * float64(time.Second))
}

// Default returns the planner's built-in configuration.
func Default() *Config {
	return &Config{
		Simulation: SimulationSettings{
			Model:            "halving",
			FastSims:         1000,
			AccurateSims:     10000,
			FastSeed:         42,
			PercentileLevels: []int{10, 25, 50, 75},
		},
		Halving: HalvingSettings{
			AnchorDate:  time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC),
			CycleMonths: 48,
			Phases: []PhaseParams{
				{MeanReturn: 0.80, Volatility: 0.85},
				{MeanReturn: 0.35, Volatility: 0.60},
				{MeanReturn: -0.20, Volatility: 0.70},
				{MeanReturn: 0.12, Volatility: 0.50},
			},
			MinAnnualReturn: -0.99,
		},
		Regime: RegimeSettings{
			BullProbability: 0.5,
			BullMean:        0.30,
			BullVolatility:  0.20,
			BearMean:        -0.10,
			BearVolatility:  0.25,
			AlignToTarget:   false,
		},
		Drift: DriftSettings{
			DecayYearsScale: 42.0,
		},
		Optimizer: OptimizerSettings{
			TargetLow:              0.80,
			TargetHigh:             0.90,
			MinSims:                5000,
			Seed:                   12345,
			MaxMonthlyInvestment:   500000,
			MaxSpendingCutPct:      0.50,
			MaxSpendingIncreasePct: 0.25,
			MaxRetireDelayYears:    10,
			SpendingFloor:          1.0,
			DollarGranularity:      10.0,
			YearGranularity:        1.0,
			AlternateCount:         1,
			WeightInvest:           1.0,
			WeightSpending:         1.0,
			WeightRetireYear:       0.75,
		},
		Price: PriceSettings{
			Endpoint:         "https://api.diadata.org/v1/assetQuotation/Bitcoin/0x0000000000000000000000000000000000000000",
			TimeoutSeconds:   10,
			MaxAttempts:      3,
			BaseDelaySeconds: 2,
			JitterSeconds:    0,
			FallbackPrice:    100000,
		},
		Limits: domain.Limits{
			AgeMin:         18,
			AgeMax:         120,
			SpendingMin:    1.0,
			HoldingsMax:    21000000,
			TaxRateMax:     60,
			RetireDelayMax: 10,
		},
		Defaults: domain.Scenario{
			CurrentAge:        21,
			RetirementAge:     67,
			LifeExpectancy:    85,
			MonthlySpending:   5000,
			MonthlyInvestment: 500,
			CurrentHoldings:   0.1,
			BitcoinGrowthRate: 21,
			InflationRate:     5,
			TaxRate:           15,
		},
		GrowthPresets: map[string]float64{
			"conservative":        10,
			"moderate":            21,
			"aggressive":          30,
			"hyperbitcoinization": 42,
		},
	}
}

// Load reads a YAML settings file and overlays it onto the defaults.
func Load(filename string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("settings validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the engine cannot work with.
func (c *Config) Validate() error {
	if c.Simulation.Model != "halving" && c.Simulation.Model != "regime" {
		return fmt.Errorf("simulation model must be 'halving' or 'regime', got %q", c.Simulation.Model)
	}
	if c.Simulation.FastSims <= 0 || c.Simulation.AccurateSims <= 0 {
		return fmt.Errorf("simulation counts must be positive")
	}
	if len(c.Simulation.PercentileLevels) == 0 {
		return fmt.Errorf("at least one percentile level is required")
	}
	for _, lv := range c.Simulation.PercentileLevels {
		if lv < 0 || lv > 100 {
			return fmt.Errorf("percentile level %d out of range [0,100]", lv)
		}
	}
	if c.Halving.CycleMonths <= 0 {
		return fmt.Errorf("halving cycle months must be positive")
	}
	if len(c.Halving.Phases) == 0 {
		return fmt.Errorf("at least one halving phase is required")
	}
	if c.Halving.CycleMonths%len(c.Halving.Phases) != 0 {
		return fmt.Errorf("cycle months (%d) must divide evenly into %d phases", c.Halving.CycleMonths, len(c.Halving.Phases))
	}
	for i, ph := range c.Halving.Phases {
		if ph.Volatility < 0 {
			return fmt.Errorf("phase %d volatility cannot be negative", i)
		}
	}
	if c.Regime.BullProbability < 0 || c.Regime.BullProbability > 1 {
		return fmt.Errorf("bull probability must be between 0 and 1")
	}
	if c.Drift.DecayYearsScale <= 0 {
		return fmt.Errorf("drift decay scale must be positive")
	}
	if c.Optimizer.TargetLow <= 0 || c.Optimizer.TargetHigh >= 1 || c.Optimizer.TargetLow > c.Optimizer.TargetHigh {
		return fmt.Errorf("optimizer target band must satisfy 0 < low <= high < 1")
	}
	if c.Optimizer.MinSims <= 0 {
		return fmt.Errorf("optimizer minimum simulations must be positive")
	}
	if c.Optimizer.DollarGranularity <= 0 || c.Optimizer.YearGranularity <= 0 {
		return fmt.Errorf("optimizer granularities must be positive")
	}
	if c.Price.MaxAttempts < 1 {
		return fmt.Errorf("price max attempts must be at least 1")
	}
	if c.Price.FallbackPrice <= 0 {
		return fmt.Errorf("price fallback must be positive")
	}
	if c.Limits.AgeMin >= c.Limits.AgeMax {
		return fmt.Errorf("age limits must satisfy min < max")
	}
	return nil
}

// ResolveGrowthRate turns a preset name or numeric string into a rate in
// percent. Names are matched case-insensitively.
func (c *Config) ResolveGrowthRate(value string) (float64, error) {
	name := strings.ToLower(strings.TrimSpace(value))
	if rate, ok := c.GrowthPresets[name]; ok {
		return rate, nil
	}
	rate, err := strconv.ParseFloat(name, 64)
	if err != nil {
		return 0, fmt.Errorf("unknown growth rate %q (use a number or one of the presets)", value)
	}
	return rate, nil
}

// LoadScenario reads a scenario YAML file, overlaying it onto the
// configured defaults so partial files work.
func (c *Config) LoadScenario(filename string) (domain.Scenario, error) {
	sc := c.Defaults
	data, err := os.ReadFile(filename)
	if err != nil {
		return sc, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return sc, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return sc, nil
}

// ExampleScenarioYAML renders a commented starter scenario file populated
// with the configured defaults.
func (c *Config) ExampleScenarioYAML() []byte {
	d := c.Defaults
	return []byte(fmt.Sprintf(`# Bitcoin retirement scenario
# Amounts are monthly USD, holdings are BTC, rates are percent per year.

current_age: %d
retirement_age: %d
life_expectancy: %d

# Spending requirement in today's dollars.
monthly_spending: %.0f

# Contribution while accumulating.
monthly_investment: %.0f

current_holdings: %.2f

# Long-run annual growth assumption. Presets: conservative (10),
# moderate (21), aggressive (30), hyperbitcoinization (42).
bitcoin_growth_rate: %.0f

inflation_rate: %.0f

# Effective tax rate applied when selling to fund spending.
tax_rate: %.0f

# Leave at 0 to fetch the live price.
current_price: 0
`, d.CurrentAge, d.RetirementAge, d.LifeExpectancy, d.MonthlySpending,
		d.MonthlyInvestment, d.CurrentHoldings, d.BitcoinGrowthRate,
		d.InflationRate, d.TaxRate))
}
