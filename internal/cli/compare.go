package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/btcplan/retirement-planner/internal/domain"
	"github.com/btcplan/retirement-planner/internal/output"
)

var compareCmd = &cobra.Command{
	Use:   "compare <scenario.yaml> [scenario.yaml ...]",
	Short: "Compare scenario files side by side",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCompare,
}

var (
	flagCompareFormat string
	flagCompareOut    string
)

func init() {
	compareCmd.Flags().StringVarP(&flagCompareFormat, "format", "f", "console", "Output format (console, csv)")
	compareCmd.Flags().StringVarP(&flagCompareOut, "out", "o", "", "Write to a file instead of stdout")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	names := make([]string, len(args))
	scenarios := make([]domain.Scenario, len(args))
	needQuote := false
	for i, path := range args {
		sc, err := cfg.LoadScenario(path)
		if err != nil {
			return err
		}
		scenarios[i] = sc
		names[i] = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if sc.CurrentPrice == 0 {
			needQuote = true
		}
	}

	// one quote shared by every scenario that left the price blank
	quote := flagPrice
	var warnings []string
	if needQuote && !cmd.Flags().Changed("price") {
		quote, warnings = newQuoter(cfg).CurrentPrice(cmd.Context())
	}
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, "note:", w)
	}

	rows := make([]output.ComparisonRow, len(scenarios))
	g, ctx := errgroup.WithContext(cmd.Context())
	for i := range scenarios {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sc := scenarios[i]
			if sc.CurrentPrice == 0 {
				sc.CurrentPrice = quote
			}
			if errs := sc.Validate(cfg.Limits); len(errs) > 0 {
				return fmt.Errorf("%s: %w", names[i], errors.Join(errs...))
			}
			result, err := eng.RunPlan(sc)
			if err != nil {
				return fmt.Errorf("%s: %w", names[i], err)
			}
			rows[i] = output.ComparisonRow{
				Name:        names[i],
				Scenario:    sc,
				Plan:        result.Plan,
				HealthScore: result.HealthScore,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var data []byte
	switch output.NormalizeFormatName(flagCompareFormat) {
	case "console":
		data = output.FormatComparisonTable(rows)
	case "csv":
		data, err = output.ComparisonCSV(rows)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("comparison supports console and csv formats, got %q", flagCompareFormat)
	}

	if flagCompareOut == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(flagCompareOut, data, 0644); err != nil {
		return err
	}
	fmt.Println("comparison written to", flagCompareOut)
	return nil
}
