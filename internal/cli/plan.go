package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/btcplan/retirement-planner/internal/output"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Deterministic retirement plan and health score",
	RunE:  runPlan,
}

var (
	flagPlanFormat string
	flagPlanOut    string
)

func init() {
	planCmd.Flags().StringVarP(&flagPlanFormat, "format", "f", "console", "Output format (console, json, csv)")
	planCmd.Flags().StringVarP(&flagPlanOut, "out", "o", "", "Write to a file instead of stdout ('auto' picks a timestamped name)")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
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
	result, err := eng.RunPlan(sc)
	if err != nil {
		return err
	}

	report := &output.Report{
		Scenario:      sc,
		Plan:          result,
		Assumptions:   output.Assumptions(cfg, sc, eng.ModelName(), time.Now()),
		PriceWarnings: warnings,
	}
	return emitReport(report, flagPlanFormat, flagPlanOut)
}
