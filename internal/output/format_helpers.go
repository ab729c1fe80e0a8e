package output

import (
	"fmt"

	"github.com/btcplan/retirement-planner/pkg/money"
)

// FormatUSD formats a dollar amount as currency with thousands separators.
// Kept here so it can be reused by multiple formatters and unit tested in isolation.
func FormatUSD(amount float64) string { return money.New(amount).Format() }

// FormatBTC formats a bitcoin amount with the four decimals used throughout the reports.
func FormatBTC(amount float64) string { return fmt.Sprintf("%.4f BTC", amount) }

// FormatPercent formats a probability in [0,1] as a percentage with one decimal.
func FormatPercent(p float64) string { return fmt.Sprintf("%.1f%%", p*100) }
