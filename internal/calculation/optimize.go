package calculation

import (
	"math"
	"sort"

	"github.com/btcplan/retirement-planner/internal/config"
	"github.com/btcplan/retirement-planner/internal/domain"
)

// RecommendationStatus classifies the optimizer's outcome.
type RecommendationStatus string

const (
	// StatusNoChangeNeeded means the baseline already sits in the target band.
	StatusNoChangeNeeded RecommendationStatus = "no_change_needed"
	// StatusEase means the plan is comfortably above target and can be relaxed.
	StatusEase RecommendationStatus = "ease_available"
	// StatusAdjust means a single lever reaches the target.
	StatusAdjust RecommendationStatus = "adjustment_needed"
	// StatusCombined means only a delay paired with a dollar lever reaches it.
	StatusCombined RecommendationStatus = "combined_adjustment"
	// StatusNotReachable means no explored change reaches the target.
	StatusNotReachable RecommendationStatus = "not_reachable"
	// StatusUnavailable means the search aborted; no advice is offered.
	StatusUnavailable RecommendationStatus = "unavailable"
)

// Lever identifies which scenario input an adjustment moves.
type Lever string

const (
	LeverInvestment Lever = "monthly_investment"
	LeverRetireYear Lever = "retirement_age"
	LeverSpending   Lever = "monthly_spending"
)

// Adjustment is one concrete change to a single lever. Delta is the
// signed change to the lever's value (dollars, or years for the
// retirement lever), so NewValue = old value + Delta.
type Adjustment struct {
	Lever       Lever   `json:"lever"`
	Delta       float64 `json:"delta"`
	NewValue    float64 `json:"new_value"`
	Probability float64 `json:"probability"`
	Cost        float64 `json:"cost"`
}

// Recommendation is the optimizer's advisory output. It is best-effort:
// a failed search yields StatusUnavailable, never an error.
type Recommendation struct {
	Status     RecommendationStatus `json:"status"`
	Baseline   float64              `json:"baseline_probability"`
	Primary    *Adjustment          `json:"primary,omitempty"`
	Alternates []Adjustment         `json:"alternates,omitempty"`
	Combined   []Adjustment         `json:"combined,omitempty"`
}

// Optimizer searches for the smallest scenario change that reaches the
// target success probability, or the largest easing that keeps it there.
// Every evaluation in one request reuses a single return matrix, so
// probes differ only by the lever under test, not by sampling noise.
type Optimizer struct {
	settings config.OptimizerSettings
	limits   domain.Limits
	model    ReturnModel
	logger   Logger
}

// NewOptimizer builds an optimizer around the given return model.
func NewOptimizer(settings config.OptimizerSettings, limits domain.Limits, model ReturnModel) *Optimizer {
	return &Optimizer{settings: settings, limits: limits, model: model, logger: NopLogger{}}
}

// SetLogger replaces the no-op logger.
func (o *Optimizer) SetLogger(l Logger) {
	if l != nil {
		o.logger = l
	}
}

// Recommend produces advice for the scenario given its baseline success
// probability. Any panic inside the search is converted into an empty
// recommendation: advice is layered on top of the core computation and
// must never take it down.
func (o *Optimizer) Recommend(sc domain.Scenario, baseline float64) (rec Recommendation) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warnf("recommendation search aborted: %v", r)
			rec = Recommendation{Status: StatusUnavailable, Baseline: baseline}
		}
	}()

	if baseline >= o.settings.TargetLow && baseline <= o.settings.TargetHigh {
		return Recommendation{Status: StatusNoChangeNeeded, Baseline: baseline}
	}

	return o.advise(o.newSession(sc), baseline)
}

// RecommendWithReturns is Recommend evaluating against a caller-supplied
// matrix instead of generating one, so the caller's baseline estimate
// and the search probes share identical randomness.
func (o *Optimizer) RecommendWithReturns(returns *ReturnMatrix, sc domain.Scenario, baseline float64) (rec Recommendation) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warnf("recommendation search aborted: %v", r)
			rec = Recommendation{Status: StatusUnavailable, Baseline: baseline}
		}
	}()

	if baseline >= o.settings.TargetLow && baseline <= o.settings.TargetHigh {
		return Recommendation{Status: StatusNoChangeNeeded, Baseline: baseline}
	}

	return o.advise(&optimizerSession{base: sc, returns: returns}, baseline)
}

func (o *Optimizer) advise(session *optimizerSession, baseline float64) Recommendation {
	if baseline > o.settings.TargetHigh {
		return o.recommendEasing(session, baseline)
	}
	return o.recommendTightening(session, baseline)
}

// optimizerSession pins the common random numbers for one request.
type optimizerSession struct {
	base    domain.Scenario
	returns *ReturnMatrix
}

func (o *Optimizer) newSession(sc domain.Scenario) *optimizerSession {
	returns := o.model.Generate(sc.HorizonYears(), o.settings.MinSims, o.settings.Seed, sc.BitcoinGrowthRate)
	return &optimizerSession{base: sc, returns: returns}
}

func (s *optimizerSession) probability(sc domain.Scenario) float64 {
	p, err := SuccessProbability(s.returns, sc)
	if err != nil {
		panic(err)
	}
	return p
}

// delayCap bounds the retirement-delay lever: the configured maximum,
// staying below the age ceiling, and leaving at least one retirement year.
func (o *Optimizer) delayCap(sc domain.Scenario) int {
	limit := o.settings.MaxRetireDelayYears
	if byAge := o.limits.AgeMax - sc.RetirementAge - 1; byAge < limit {
		limit = byAge
	}
	if byLife := sc.LifeExpectancy - sc.RetirementAge - 1; byLife < limit {
		limit = byLife
	}
	if limit < 0 {
		limit = 0
	}
	return limit
}

func (o *Optimizer) investCost(base domain.Scenario, delta float64) float64 {
	ref := math.Max(base.MonthlyInvestment, o.settings.DollarGranularity)
	return o.settings.WeightInvest * delta / ref
}

func (o *Optimizer) spendingCost(base domain.Scenario, delta float64) float64 {
	ref := math.Max(base.MonthlySpending, o.settings.DollarGranularity)
	return o.settings.WeightSpending * delta / ref
}

func (o *Optimizer) delayCost(base domain.Scenario, years float64) float64 {
	ref := math.Max(float64(base.YearsUntilRetirement()), 1)
	return o.settings.WeightRetireYear * years / ref
}

// recommendTightening handles baselines below the target band: single
// levers ranked by normalized cost, then delay+dollar combinations, then
// "not reachable".
func (o *Optimizer) recommendTightening(session *optimizerSession, baseline float64) Recommendation {
	s := o.settings
	base := session.base
	target := s.TargetLow

	// Under the shared matrix the baseline may already clear the target
	// even though the caller's estimate was below it; that is noise, not
	// a reason to recommend a change.
	if session.probability(base) >= target {
		return Recommendation{Status: StatusNoChangeNeeded, Baseline: baseline}
	}

	var candidates []Adjustment

	if investCap := s.MaxMonthlyInvestment - base.MonthlyInvestment; investCap > 0 {
		res := bracketAndBisect(func(delta float64) float64 {
			return session.probability(base.WithMonthlyInvestment(base.MonthlyInvestment + delta))
		}, 0, s.DollarGranularity, investCap, s.DollarGranularity, target)
		if res.Found && res.Value > 0 {
			candidates = append(candidates, Adjustment{
				Lever:       LeverInvestment,
				Delta:       res.Value,
				NewValue:    base.MonthlyInvestment + res.Value,
				Probability: res.Probability,
				Cost:        o.investCost(base, res.Value),
			})
		}
	}

	if limit := o.delayCap(base); limit >= 1 {
		res := bracketAndBisect(func(delta float64) float64 {
			return session.probability(base.WithRetirementDelay(int(math.Round(delta))))
		}, 0, s.YearGranularity, float64(limit), s.YearGranularity, target)
		if res.Found && res.Value > 0 {
			years := int(math.Round(res.Value))
			candidates = append(candidates, Adjustment{
				Lever:       LeverRetireYear,
				Delta:       float64(years),
				NewValue:    float64(base.RetirementAge + years),
				Probability: res.Probability,
				Cost:        o.delayCost(base, float64(years)),
			})
		}
	}

	cutCap := math.Min(s.MaxSpendingCutPct*base.MonthlySpending, base.MonthlySpending-s.SpendingFloor)
	if cutCap > 0 {
		res := bracketAndBisect(func(delta float64) float64 {
			return session.probability(base.WithMonthlySpending(base.MonthlySpending - delta))
		}, 0, s.DollarGranularity, cutCap, s.DollarGranularity, target)
		if res.Found && res.Value > 0 {
			candidates = append(candidates, Adjustment{
				Lever:       LeverSpending,
				Delta:       -res.Value,
				NewValue:    base.MonthlySpending - res.Value,
				Probability: res.Probability,
				Cost:        o.spendingCost(base, res.Value),
			})
		}
	}

	if len(candidates) > 0 {
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].Cost < candidates[j].Cost })
		rec := Recommendation{Status: StatusAdjust, Baseline: baseline, Primary: &candidates[0]}
		alternates := len(candidates) - 1
		if alternates > s.AlternateCount {
			alternates = s.AlternateCount
		}
		rec.Alternates = candidates[1 : 1+alternates]
		return rec
	}

	o.logger.Debugf("no single lever reaches %.0f%%, trying combinations", target*100)
	if combined, ok := o.searchCombined(session, target); ok {
		return Recommendation{Status: StatusCombined, Baseline: baseline, Combined: combined}
	}
	return Recommendation{Status: StatusNotReachable, Baseline: baseline}
}

// searchCombined fixes each feasible retirement delay and re-runs the
// dollar-lever searches on top of it, keeping the combination with the
// lowest summed cost.
func (o *Optimizer) searchCombined(session *optimizerSession, target float64) ([]Adjustment, bool) {
	s := o.settings
	base := session.base

	var best []Adjustment
	bestCost := math.Inf(1)

	for d := 1; d <= o.delayCap(base); d++ {
		delayed := base.WithRetirementDelay(d)
		dCost := o.delayCost(base, float64(d))

		if investCap := s.MaxMonthlyInvestment - base.MonthlyInvestment; investCap > 0 {
			res := bracketAndBisect(func(delta float64) float64 {
				return session.probability(delayed.WithMonthlyInvestment(base.MonthlyInvestment + delta))
			}, 0, s.DollarGranularity, investCap, s.DollarGranularity, target)
			if res.Found {
				cost := dCost + o.investCost(base, res.Value)
				if cost < bestCost {
					bestCost = cost
					best = []Adjustment{
						{Lever: LeverRetireYear, Delta: float64(d), NewValue: float64(base.RetirementAge + d), Probability: res.Probability, Cost: dCost},
						{Lever: LeverInvestment, Delta: res.Value, NewValue: base.MonthlyInvestment + res.Value, Probability: res.Probability, Cost: o.investCost(base, res.Value)},
					}
				}
			}
		}

		cutCap := math.Min(s.MaxSpendingCutPct*base.MonthlySpending, base.MonthlySpending-s.SpendingFloor)
		if cutCap > 0 {
			res := bracketAndBisect(func(delta float64) float64 {
				return session.probability(delayed.WithMonthlySpending(base.MonthlySpending - delta))
			}, 0, s.DollarGranularity, cutCap, s.DollarGranularity, target)
			if res.Found {
				cost := dCost + o.spendingCost(base, res.Value)
				if cost < bestCost {
					bestCost = cost
					best = []Adjustment{
						{Lever: LeverRetireYear, Delta: float64(d), NewValue: float64(base.RetirementAge + d), Probability: res.Probability, Cost: dCost},
						{Lever: LeverSpending, Delta: -res.Value, NewValue: base.MonthlySpending - res.Value, Probability: res.Probability, Cost: o.spendingCost(base, res.Value)},
					}
				}
			}
		}
	}

	return best, best != nil
}

// recommendEasing handles baselines above the target band: for each
// lever, the largest relaxation that keeps the probability at or above
// the band floor. All findings are reported as alternatives.
func (o *Optimizer) recommendEasing(session *optimizerSession, baseline float64) Recommendation {
	s := o.settings
	base := session.base
	floor := s.TargetLow

	var eases []Adjustment

	if base.MonthlyInvestment > 0 {
		res := bracketAndBisectDescending(func(delta float64) float64 {
			return session.probability(base.WithMonthlyInvestment(base.MonthlyInvestment - delta))
		}, 0, s.DollarGranularity, base.MonthlyInvestment, s.DollarGranularity, floor)
		if res.Found && res.Value > 0 {
			eases = append(eases, Adjustment{
				Lever:       LeverInvestment,
				Delta:       -res.Value,
				NewValue:    base.MonthlyInvestment - res.Value,
				Probability: res.Probability,
			})
		}
	}

	if earlierCap := base.RetirementAge - base.CurrentAge - 1; earlierCap >= 1 {
		res := bracketAndBisectDescending(func(delta float64) float64 {
			return session.probability(base.WithRetirementDelay(-int(math.Round(delta))))
		}, 0, s.YearGranularity, float64(earlierCap), s.YearGranularity, floor)
		if res.Found && res.Value > 0 {
			years := int(math.Round(res.Value))
			eases = append(eases, Adjustment{
				Lever:       LeverRetireYear,
				Delta:       -float64(years),
				NewValue:    float64(base.RetirementAge - years),
				Probability: res.Probability,
			})
		}
	}

	if raiseCap := s.MaxSpendingIncreasePct * base.MonthlySpending; raiseCap > 0 {
		res := bracketAndBisectDescending(func(delta float64) float64 {
			return session.probability(base.WithMonthlySpending(base.MonthlySpending + delta))
		}, 0, s.DollarGranularity, raiseCap, s.DollarGranularity, floor)
		if res.Found && res.Value > 0 {
			eases = append(eases, Adjustment{
				Lever:       LeverSpending,
				Delta:       res.Value,
				NewValue:    base.MonthlySpending + res.Value,
				Probability: res.Probability,
			})
		}
	}

	if len(eases) == 0 {
		return Recommendation{Status: StatusNoChangeNeeded, Baseline: baseline}
	}
	return Recommendation{
		Status:     StatusEase,
		Baseline:   baseline,
		Primary:    &eases[0],
		Alternates: eases[1:],
	}
}

// bisectResult is the outcome of one bracket-and-bisect search.
type bisectResult struct {
	Found       bool
	Value       float64
	Probability float64
}

// bracketAndBisect finds the smallest x in [lower, upperCap] with
// eval(x) >= target, assuming eval is non-decreasing in x. The upper
// bound is expanded geometrically from lower (step, 2*step, 4*step, ...)
// until it succeeds or hits the cap, then the bracket is narrowed by
// bisection with probes snapped to granularity multiples. If the cap is
// reached without success, Found is false and Value is the cap.
func bracketAndBisect(eval func(float64) float64, lower, step, upperCap, granularity, target float64) bisectResult {
	p := eval(lower)
	if p >= target {
		return bisectResult{Found: true, Value: lower, Probability: p}
	}
	if upperCap <= lower {
		return bisectResult{Found: false, Value: upperCap, Probability: p}
	}

	lo := lower
	offset := step
	var hi, pHi float64
	for {
		hi = lower + offset
		if hi > upperCap {
			hi = upperCap
		}
		pHi = eval(hi)
		if pHi >= target {
			break
		}
		if hi >= upperCap {
			return bisectResult{Found: false, Value: upperCap, Probability: pHi}
		}
		lo = hi
		offset *= 2
	}

	best, bestP := hi, pHi
	for hi-lo > granularity {
		mid := snapTo((lo+hi)/2, granularity)
		if mid <= lo || mid >= hi {
			break
		}
		if p := eval(mid); p >= target {
			hi, best, bestP = mid, mid, p
		} else {
			lo = mid
		}
	}
	return bisectResult{Found: true, Value: best, Probability: bestP}
}

// bracketAndBisectDescending finds the largest x in [lower, upperCap]
// with eval(x) >= target, assuming eval is non-increasing in x. Used for
// the easing searches, which relax a lever until probability would fall
// below the band floor.
func bracketAndBisectDescending(eval func(float64) float64, lower, step, upperCap, granularity, target float64) bisectResult {
	p := eval(lower)
	if p < target {
		return bisectResult{Found: false, Value: lower, Probability: p}
	}
	if upperCap <= lower {
		return bisectResult{Found: true, Value: lower, Probability: p}
	}

	good, pGood := lower, p
	offset := step
	for {
		hi := lower + offset
		if hi > upperCap {
			hi = upperCap
		}
		pHi := eval(hi)
		if pHi >= target {
			good, pGood = hi, pHi
			if hi >= upperCap {
				return bisectResult{Found: true, Value: upperCap, Probability: pHi}
			}
			offset *= 2
			continue
		}

		lo, bad := good, hi
		for bad-lo > granularity {
			mid := snapTo((lo+bad)/2, granularity)
			if mid <= lo || mid >= bad {
				break
			}
			if pm := eval(mid); pm >= target {
				lo, good, pGood = mid, mid, pm
			} else {
				bad = mid
			}
		}
		return bisectResult{Found: true, Value: good, Probability: pGood}
	}
}

func snapTo(x, granularity float64) float64 {
	if granularity <= 0 {
		return x
	}
	return math.Round(x/granularity) * granularity
}
