package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/btcplan/retirement-planner/internal/output"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Suggest the smallest change that reaches the target success band",
	Long: `Search the configured levers (monthly investment, retirement age,
monthly spending) for the cheapest change that brings the plan's
success probability into the target band, or for slack to give back
when the plan is already ahead.`,
	RunE: runRecommend,
}

var (
	flagRecFormat string
	flagRecOut    string
)

func init() {
	recommendCmd.Flags().StringVarP(&flagRecFormat, "format", "f", "console", "Output format (console, json)")
	recommendCmd.Flags().StringVarP(&flagRecOut, "out", "o", "", "Write to a file instead of stdout ('auto' picks a timestamped name)")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	sc, warnings, err := resolveScenario(cmd, cfg)
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	rec, err := eng.Recommend(cmd.Context(), sc)
	if err != nil {
		return err
	}
	plan, err := eng.RunPlan(sc)
	if err != nil {
		return err
	}

	report := &output.Report{
		Scenario:       sc,
		Plan:           plan,
		Recommendation: &rec,
		Assumptions:    output.Assumptions(cfg, sc, eng.ModelName(), time.Now()),
		PriceWarnings:  warnings,
	}
	return emitReport(report, flagRecFormat, flagRecOut)
}
