package output

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"

	"github.com/btcplan/retirement-planner/pkg/money"
)

// CSVFormatter exports the per-year numbers: the Monte Carlo percentile
// series when a simulation ran, otherwise the deterministic holdings
// projection.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(report *Report) ([]byte, error) {
	switch {
	case report.Simulation != nil:
		return simulationCSV(report)
	case report.Plan != nil:
		return projectionCSV(report)
	}
	return nil, errors.New("csv format needs a plan or a simulation section")
}

// simulationCSV writes one row per simulated year. Values are the
// portfolio's USD value at each year's closing price.
func simulationCSV(report *Report) ([]byte, error) {
	stream := report.Simulation.Stream
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"age", "year"}
	for _, lv := range stream.Levels {
		header = append(header, fmt.Sprintf("p%d_usd", lv))
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for t := 0; t < report.Simulation.Years; t++ {
		row := []string{
			strconv.Itoa(report.Scenario.CurrentAge + t + 1),
			strconv.Itoa(t + 1),
		}
		for i := range stream.Levels {
			row = append(row, money.New(stream.Series[i][t]).String())
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// projectionCSV writes the deterministic BTC holdings series, one row
// per age from today through life expectancy.
func projectionCSV(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if err := w.Write([]string{"age", "year", "btc_holdings"}); err != nil {
		return nil, err
	}
	for i, v := range report.Plan.Projection {
		row := []string{
			strconv.Itoa(report.Scenario.CurrentAge + i),
			strconv.Itoa(i),
			strconv.FormatFloat(v, 'f', 8, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
