package domain

import (
	"fmt"
)

// Scenario captures one retirement plan: who the saver is, how they
// accumulate bitcoin before retirement, and how they spend it afterward.
// Amounts are monthly USD, holdings are BTC, rates are whole percentages
// (21 means 21%/yr). A Scenario is treated as immutable once validated;
// derived scenarios are produced by the With* helpers.
type Scenario struct {
	CurrentAge     int `yaml:"current_age" json:"current_age"`
	RetirementAge  int `yaml:"retirement_age" json:"retirement_age"`
	LifeExpectancy int `yaml:"life_expectancy" json:"life_expectancy"`

	MonthlySpending   float64 `yaml:"monthly_spending" json:"monthly_spending"`
	MonthlyInvestment float64 `yaml:"monthly_investment" json:"monthly_investment"`
	CurrentHoldings   float64 `yaml:"current_holdings" json:"current_holdings"`

	BitcoinGrowthRate float64 `yaml:"bitcoin_growth_rate" json:"bitcoin_growth_rate"`
	InflationRate     float64 `yaml:"inflation_rate" json:"inflation_rate"`
	TaxRate           float64 `yaml:"tax_rate" json:"tax_rate"`

	CurrentPrice float64 `yaml:"current_price" json:"current_price"`
}

// YearsUntilRetirement returns the number of accumulation years left.
func (s Scenario) YearsUntilRetirement() int {
	return s.RetirementAge - s.CurrentAge
}

// RetirementDuration returns the number of withdrawal years to fund.
func (s Scenario) RetirementDuration() int {
	return s.LifeExpectancy - s.RetirementAge
}

// HorizonYears returns the total number of simulated years.
func (s Scenario) HorizonYears() int {
	return s.LifeExpectancy - s.CurrentAge
}

// WithRetirementDelay returns a copy with retirement pushed back by the
// given number of years. Life expectancy is unchanged.
func (s Scenario) WithRetirementDelay(years int) Scenario {
	s.RetirementAge += years
	return s
}

// WithMonthlyInvestment returns a copy with a different contribution.
func (s Scenario) WithMonthlyInvestment(amount float64) Scenario {
	s.MonthlyInvestment = amount
	return s
}

// WithMonthlySpending returns a copy with a different spending level.
func (s Scenario) WithMonthlySpending(amount float64) Scenario {
	s.MonthlySpending = amount
	return s
}

// Limits bounds user-supplied scenario fields. Zero value is not usable;
// obtain one from the config package.
type Limits struct {
	AgeMin         int     `yaml:"age_min" json:"age_min"`
	AgeMax         int     `yaml:"age_max" json:"age_max"`
	SpendingMin    float64 `yaml:"spending_min" json:"spending_min"`
	HoldingsMax    float64 `yaml:"holdings_max" json:"holdings_max"`
	TaxRateMax     float64 `yaml:"tax_rate_max" json:"tax_rate_max"`
	RetireDelayMax int     `yaml:"retire_delay_max" json:"retire_delay_max"`
}

// Validate checks every invariant and returns the full list of violations,
// not just the first, so a caller can report them all at once.
func (s Scenario) Validate(lim Limits) []error {
	var errs []error

	if s.CurrentAge < lim.AgeMin || s.CurrentAge > lim.AgeMax {
		errs = append(errs, fmt.Errorf("current age must be between %d and %d", lim.AgeMin, lim.AgeMax))
	}
	if s.RetirementAge <= s.CurrentAge || s.RetirementAge < lim.AgeMin || s.RetirementAge > lim.AgeMax {
		errs = append(errs, fmt.Errorf("retirement age must be greater than current age and between %d and %d", lim.AgeMin, lim.AgeMax))
	}
	if s.LifeExpectancy <= s.RetirementAge || s.LifeExpectancy < lim.AgeMin || s.LifeExpectancy > lim.AgeMax {
		errs = append(errs, fmt.Errorf("life expectancy must be greater than retirement age and between %d and %d", lim.AgeMin, lim.AgeMax))
	}
	if s.MonthlySpending < lim.SpendingMin {
		errs = append(errs, fmt.Errorf("monthly spending must be at least %.0f", lim.SpendingMin))
	}
	if s.BitcoinGrowthRate < 0 {
		errs = append(errs, fmt.Errorf("bitcoin growth rate cannot be negative"))
	}
	if s.InflationRate < 0 {
		errs = append(errs, fmt.Errorf("inflation rate cannot be negative"))
	}
	if s.CurrentHoldings < 0 || s.CurrentHoldings > lim.HoldingsMax {
		errs = append(errs, fmt.Errorf("current bitcoin holdings must be between 0 and %.0f", lim.HoldingsMax))
	}
	if s.MonthlyInvestment < 0 {
		errs = append(errs, fmt.Errorf("monthly investment cannot be negative"))
	}
	if s.BitcoinGrowthRate > 0 && s.MonthlyInvestment == 0 {
		errs = append(errs, fmt.Errorf("monthly investment must be positive if growth rate is positive"))
	}
	if s.TaxRate < 0 || s.TaxRate >= lim.TaxRateMax {
		errs = append(errs, fmt.Errorf("tax rate must be at least 0 and below %.0f", lim.TaxRateMax))
	}
	if s.CurrentPrice <= 0 {
		errs = append(errs, fmt.Errorf("current bitcoin price must be positive"))
	}

	return errs
}
