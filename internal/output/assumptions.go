package output

import (
	"fmt"
	"time"

	"github.com/btcplan/retirement-planner/internal/config"
	"github.com/btcplan/retirement-planner/internal/domain"
	"github.com/btcplan/retirement-planner/pkg/dateutil"
)

// Assumptions creates the modeling-assumptions list from the actual
// configuration and scenario values.
func Assumptions(cfg *config.Config, sc domain.Scenario, modelName string, now time.Time) []string {
	lines := []string{
		fmt.Sprintf("Bitcoin growth rate (deterministic plan): %.1f%% annually", sc.BitcoinGrowthRate),
		fmt.Sprintf("Inflation rate: %.1f%% annually", sc.InflationRate),
		fmt.Sprintf("Tax on retirement sales: %.1f%% of gross proceeds", sc.TaxRate),
	}
	switch modelName {
	case "halving":
		lines = append(lines,
			fmt.Sprintf("Return model: halving cycle (%d-month cycle anchored %s)",
				cfg.Halving.CycleMonths, cfg.Halving.AnchorDate.Format("2006-01-02")),
			fmt.Sprintf("Next halving assumed: %s",
				dateutil.NextCycleDate(cfg.Halving.AnchorDate, cfg.Halving.CycleMonths, now).Format("2006-01-02")))
	case "regime":
		lines = append(lines,
			fmt.Sprintf("Return model: regime mixture (%.0f%% bull years)", cfg.Regime.BullProbability*100))
	default:
		lines = append(lines, fmt.Sprintf("Return model: %s", modelName))
	}
	lines = append(lines, "Purchases and withdrawals settle once per year")
	return lines
}
