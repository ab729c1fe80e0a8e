package main

import (
	"fmt"
	"os"
	"strconv"

	calc "github.com/btcplan/retirement-planner/internal/calculation"
	"github.com/btcplan/retirement-planner/internal/config"
)

// Sweeps the monthly investment lever over one shared return matrix and
// prints the success probability at each step, for sanity-checking what
// the recommendation search sees.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: sweep_invest <scenario-file> [max-monthly] [step]")
		return
	}
	cfg := config.Default()
	sc, err := cfg.LoadScenario(os.Args[1])
	if err != nil {
		panic(err)
	}
	if sc.CurrentPrice <= 0 {
		sc.CurrentPrice = cfg.Price.FallbackPrice
	}

	maxMonthly := 5000.0
	step := 250.0
	if len(os.Args) > 2 {
		if v, err := strconv.ParseFloat(os.Args[2], 64); err == nil {
			maxMonthly = v
		}
	}
	if len(os.Args) > 3 {
		if v, err := strconv.ParseFloat(os.Args[3], 64); err == nil {
			step = v
		}
	}

	model, err := calc.ModelFromConfig(cfg)
	if err != nil {
		panic(err)
	}
	// One matrix for the whole sweep, so rows differ only by the lever.
	returns := model.Generate(sc.HorizonYears(), cfg.Optimizer.MinSims, cfg.Optimizer.Seed, sc.BitcoinGrowthRate)

	fmt.Println("Monthly,Success,SurplusBTC")
	for m := sc.MonthlyInvestment; m <= maxMonthly; m += step {
		probe := sc.WithMonthlyInvestment(m)
		p, err := calc.SuccessProbability(returns, probe)
		if err != nil {
			panic(err)
		}
		plan := calc.CalculatePlan(probe)
		fmt.Printf("%.0f,%.4f,%.4f\n", m, p, plan.Surplus())
	}
}
