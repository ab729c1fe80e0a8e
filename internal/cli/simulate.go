package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/btcplan/retirement-planner/internal/calculation"
	"github.com/btcplan/retirement-planner/internal/output"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Monte Carlo simulation of the retirement plan",
	Long: `Simulate thousands of possible price futures and report the success
probability plus per-year portfolio value percentiles.`,
	RunE: runSimulate,
}

var (
	flagSimMode   string
	flagSimSims   int
	flagSimSeed   int64
	flagSimModel  string
	flagSimPaths  bool
	flagSimFormat string
	flagSimOut    string
)

func init() {
	simulateCmd.Flags().StringVar(&flagSimMode, "mode", "fast", "Simulation preset: fast (seeded preview) or accurate")
	simulateCmd.Flags().IntVar(&flagSimSims, "sims", 0, "Number of simulations (overrides the mode preset)")
	simulateCmd.Flags().Int64Var(&flagSimSeed, "seed", 0, "Random seed (0 draws fresh entropy)")
	simulateCmd.Flags().StringVar(&flagSimModel, "model", "", "Return model: halving or regime")
	simulateCmd.Flags().BoolVar(&flagSimPaths, "paths", false, "Materialize every trajectory (large output)")
	simulateCmd.Flags().StringVarP(&flagSimFormat, "format", "f", "console", "Output format (console, json, csv)")
	simulateCmd.Flags().StringVarP(&flagSimOut, "out", "o", "", "Write to a file instead of stdout ('auto' picks a timestamped name)")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("model") {
		cfg.Simulation.Model = flagSimModel
	}
	sc, warnings, err := resolveScenario(cmd, cfg)
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	var opts calculation.SimulationOptions
	switch flagSimMode {
	case "fast":
		opts = eng.FastOptions()
	case "accurate":
		opts = eng.AccurateOptions()
	default:
		return fmt.Errorf("unknown simulation mode %q (use fast or accurate)", flagSimMode)
	}
	if cmd.Flags().Changed("sims") {
		opts.Sims = flagSimSims
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = flagSimSeed
	}
	opts.FullPaths = flagSimPaths

	summary, err := eng.RunSimulation(cmd.Context(), sc, opts)
	if err != nil {
		return err
	}
	// the closed-form plan gives the report its deterministic context
	plan, err := eng.RunPlan(sc)
	if err != nil {
		return err
	}

	report := &output.Report{
		Scenario:      sc,
		Plan:          plan,
		Simulation:    summary,
		Assumptions:   output.Assumptions(cfg, sc, eng.ModelName(), time.Now()),
		PriceWarnings: warnings,
	}
	return emitReport(report, flagSimFormat, flagSimOut)
}
