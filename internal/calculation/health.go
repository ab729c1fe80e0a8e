package calculation

import "math"

// HealthDetails breaks down the inputs behind a plan health score.
type HealthDetails struct {
	FundingRatio float64 `json:"funding_ratio"`
	RunwayYears  int     `json:"runway_years"`
	ProjectedBTC float64 `json:"projected_btc"`
	BTCNeeded    float64 `json:"btc_needed"`
}

// BasicHealthScore maps a funding ratio (projected holdings over needed
// holdings at retirement) to a 0-100 score. A plan whose holdings do not
// survive even the first retirement year scores zero regardless of the
// ratio.
func BasicHealthScore(fundingRatio float64, runwayYears int) int {
	if runwayYears <= 0 {
		return 0
	}
	if fundingRatio >= 2 {
		return 100
	}
	score := int(math.Round(50 * fundingRatio))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// HealthScore scores a plan from its projected and required holdings at
// retirement plus the deterministic holdings series from ProjectHoldings.
// Runway counts the consecutive years of positive holdings starting at
// the retirement index.
func HealthScore(projectedBTC, neededBTC float64, series []float64, currentAge, retirementAge int) (int, HealthDetails) {
	ratio := 0.0
	switch {
	case neededBTC > 0:
		ratio = projectedBTC / neededBTC
	case projectedBTC > 0:
		ratio = math.Inf(1)
	}

	runway := 0
	start := retirementAge - currentAge
	if start < 0 {
		start = 0
	}
	for i := start; i < len(series); i++ {
		if series[i] <= 0 {
			break
		}
		runway++
	}

	details := HealthDetails{
		FundingRatio: ratio,
		RunwayYears:  runway,
		ProjectedBTC: projectedBTC,
		BTCNeeded:    neededBTC,
	}
	return BasicHealthScore(ratio, runway), details
}
