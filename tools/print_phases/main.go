package main

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/btcplan/retirement-planner/internal/calculation"
	"github.com/btcplan/retirement-planner/internal/config"
)

// Dumps the halving model's per-year schedule so the phase alignment and
// drift decay can be eyeballed against the anchor date.
func main() {
	years := 12
	growth := 21.0
	if len(os.Args) > 1 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil {
			fmt.Println("usage: print_phases [years] [growth-pct]")
			return
		}
		years = n
	}
	if len(os.Args) > 2 {
		g, err := strconv.ParseFloat(os.Args[2], 64)
		if err != nil {
			fmt.Println("usage: print_phases [years] [growth-pct]")
			return
		}
		growth = g
	}

	cfg := config.Default()
	model := calculation.NewHalvingCycleModel(cfg.Halving, cfg.Drift)

	schedule := model.PhaseSchedule(years)
	mu, sigma := model.DriftSchedule(years, growth)

	fmt.Println("Year,Phase,Mu,Sigma,MedianFactor,MeanFactor")
	for y := 0; y < years; y++ {
		median := math.Exp(mu[y])
		mean := math.Exp(mu[y] + sigma[y]*sigma[y]/2)
		fmt.Printf("%d,%d,%.4f,%.4f,%.4f,%.4f\n", y, schedule[y], mu[y], sigma[y], median, mean)
	}

	// Sample the generator and compare the realized per-year mean against
	// the lognormal expectation above.
	returns := model.Generate(years, 20000, 1, growth)
	fmt.Println("\nYear,SampledMean")
	for y := 0; y < years; y++ {
		sum := 0.0
		for i := 0; i < returns.Sims(); i++ {
			sum += returns.At(i, y)
		}
		fmt.Printf("%d,%.4f\n", y, sum/float64(returns.Sims()))
	}
}
