// Package cli wires the planner into a cobra command tree.
package cli

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/btcplan/retirement-planner/internal/calculation"
	"github.com/btcplan/retirement-planner/internal/config"
	"github.com/btcplan/retirement-planner/internal/domain"
	"github.com/btcplan/retirement-planner/internal/output"
	"github.com/btcplan/retirement-planner/internal/price"
)

var (
	flagSettings  string
	flagScenario  string
	flagAge       int
	flagRetireAt  int
	flagLiveTo    int
	flagSpend     float64
	flagInvest    float64
	flagHoldings  float64
	flagGrowth    string
	flagInflation float64
	flagTax       float64
	flagPrice     float64
	flagQuickFail bool
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "btcplan",
	Short: "Bitcoin retirement planner",
	Long: `Plan a bitcoin-funded retirement: closed-form projections, Monte Carlo
simulation over halving-aware return models, and target-driven
recommendations for getting a plan back on track.`,
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagSettings, "settings", "", "Settings file overriding the built-in defaults (YAML)")
	pf.StringVarP(&flagScenario, "scenario", "s", "", "Scenario file (YAML)")
	pf.IntVar(&flagAge, "age", 0, "Current age")
	pf.IntVar(&flagRetireAt, "retire-at", 0, "Retirement age")
	pf.IntVar(&flagLiveTo, "live-to", 0, "Life expectancy")
	pf.Float64Var(&flagSpend, "spend", 0, "Monthly spending in retirement (USD)")
	pf.Float64Var(&flagInvest, "invest", 0, "Monthly bitcoin purchase (USD)")
	pf.Float64Var(&flagHoldings, "holdings", 0, "Current bitcoin holdings (BTC)")
	pf.StringVarP(&flagGrowth, "growth", "g", "", "Annual bitcoin growth in percent, or a preset (conservative, moderate, aggressive, hyperbitcoinization)")
	pf.Float64Var(&flagInflation, "inflation", 0, "Annual inflation rate in percent")
	pf.Float64Var(&flagTax, "tax", 0, "Tax rate on retirement sales in percent")
	pf.Float64Var(&flagPrice, "price", 0, "Bitcoin price in USD (0 fetches the live price)")
	pf.BoolVar(&flagQuickFail, "quick-fail", false, "Use the fallback price after a single failed fetch")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Log engine progress to stderr")
}

func loadConfig() (*config.Config, error) {
	if flagSettings == "" {
		return config.Default(), nil
	}
	return config.Load(flagSettings)
}

func newEngine(cfg *config.Config) (*calculation.Engine, error) {
	eng, err := calculation.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	if flagVerbose {
		eng.SetLogger(newStderrLogger())
	}
	return eng, nil
}

func newQuoter(cfg *config.Config) price.Quoter {
	c := price.NewClient(cfg.Price)
	if flagQuickFail {
		return c.WithQuickFail()
	}
	return c
}

// resolveScenario builds the scenario for this invocation: configured
// defaults, overlaid by the --scenario file, overlaid by explicit flags.
// A zero price after all that triggers a live quote.
func resolveScenario(cmd *cobra.Command, cfg *config.Config) (domain.Scenario, []string, error) {
	sc := cfg.Defaults
	if flagScenario != "" {
		loaded, err := cfg.LoadScenario(flagScenario)
		if err != nil {
			return sc, nil, err
		}
		sc = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("age") {
		sc.CurrentAge = flagAge
	}
	if flags.Changed("retire-at") {
		sc.RetirementAge = flagRetireAt
	}
	if flags.Changed("live-to") {
		sc.LifeExpectancy = flagLiveTo
	}
	if flags.Changed("spend") {
		sc.MonthlySpending = flagSpend
	}
	if flags.Changed("invest") {
		sc.MonthlyInvestment = flagInvest
	}
	if flags.Changed("holdings") {
		sc.CurrentHoldings = flagHoldings
	}
	if flags.Changed("growth") {
		rate, err := cfg.ResolveGrowthRate(flagGrowth)
		if err != nil {
			return sc, nil, err
		}
		sc.BitcoinGrowthRate = rate
	}
	if flags.Changed("inflation") {
		sc.InflationRate = flagInflation
	}
	if flags.Changed("tax") {
		sc.TaxRate = flagTax
	}

	var warnings []string
	switch {
	case flags.Changed("price"):
		sc.CurrentPrice = flagPrice
	case sc.CurrentPrice == 0:
		sc.CurrentPrice, warnings = newQuoter(cfg).CurrentPrice(cmd.Context())
	}

	if errs := sc.Validate(cfg.Limits); len(errs) > 0 {
		return sc, warnings, errors.Join(errs...)
	}
	return sc, warnings, nil
}

// emitReport routes a rendered report: stdout by default, a named file
// with --out, or a timestamped file with --out auto.
func emitReport(report *output.Report, format, out string) error {
	if out == "auto" {
		name, err := output.GenerateReport(report, format)
		if err == nil {
			fmt.Println("report written to", name)
		}
		return err
	}
	f := output.GetFormatterByName(format)
	if f == nil {
		// surfaces the detailed unsupported-format error
		_, err := output.GenerateReport(report, format)
		return err
	}
	data, err := f.Format(report)
	if err != nil {
		return err
	}
	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return err
	}
	fmt.Println("report written to", out)
	return nil
}

// stderrLogger adapts the standard log package to the engine's Logger,
// used when --verbose is set.
type stderrLogger struct {
	l *log.Logger
}

func newStderrLogger() stderrLogger {
	return stderrLogger{l: log.New(os.Stderr, "btcplan: ", log.LstdFlags)}
}

func (s stderrLogger) Debugf(format string, args ...any) { s.l.Printf("DEBUG "+format, args...) }
func (s stderrLogger) Infof(format string, args ...any)  { s.l.Printf("INFO "+format, args...) }
func (s stderrLogger) Warnf(format string, args ...any)  { s.l.Printf("WARN "+format, args...) }
func (s stderrLogger) Errorf(format string, args ...any) { s.l.Printf("ERROR "+format, args...) }
