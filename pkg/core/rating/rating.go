// Package rating folds core metrics into a Buy/Hold/Sell rating using a
// fixed point rubric. All functions are pure.
package rating

import "corporate_analyst/pkg/core/calc"

// Label is the categorical rating.
type Label string

const (
	LabelBuy      Label = "BUY"
	LabelHold     Label = "HOLD"
	LabelSell     Label = "SELL"
	LabelNotRated Label = "N/A"
)

// Component names.
const (
	ComponentProfit    = "profit"
	ComponentGrowth    = "growth"
	ComponentRisk      = "risk"
	ComponentValuation = "valuation"
)

// Rubric thresholds.
const (
	ROEThreshold       = 0.15
	GrowthThreshold    = 0.10
	LeverageThreshold  = 1.0
	PEThreshold        = 25.0
	BuyThreshold       = 75
	HoldThreshold      = 50
	MaxScore           = 100 // nominal ceiling shown to users; the rubric tops out at 90
	profitHigh         = 25
	profitLow          = 15
	profitUnknown      = 10
	growthHigh         = 25
	growthLow          = 10
	riskLow            = 20
	riskHigh           = 5
	valuationCheap     = 20
	valuationExpensive = 10
)

// Result is a scored rating.
type Result struct {
	Rating     Label          `json:"rating"`
	Score      int            `json:"score"`
	Components map[string]int `json:"components"`
}

// NotRated is returned when the metrics are unavailable.
func NotRated() Result {
	return Result{Rating: LabelNotRated, Score: 0, Components: map[string]int{}}
}

// Score applies the rubric. Components are scored independently; a missing
// ratio only drops its own component to the fallback points.
func Score(m calc.CoreMetrics) Result {
	if !m.OK {
		return NotRated()
	}

	comp := map[string]int{
		ComponentProfit:    scoreProfit(m.ROE),
		ComponentGrowth:    scoreGrowth(m.RevenueGrowth),
		ComponentRisk:      scoreRisk(m.DE),
		ComponentValuation: scoreValuation(m.PE),
	}

	total := 0
	for _, v := range comp {
		total += v
	}
	return Result{Rating: LabelFor(total), Score: total, Components: comp}
}

// LabelFor buckets a total score.
func LabelFor(total int) Label {
	switch {
	case total >= BuyThreshold:
		return LabelBuy
	case total >= HoldThreshold:
		return LabelHold
	default:
		return LabelSell
	}
}

func scoreProfit(roe *float64) int {
	switch {
	case roe == nil:
		return profitUnknown
	case *roe > ROEThreshold:
		return profitHigh
	default:
		return profitLow
	}
}

func scoreGrowth(g *float64) int {
	if g != nil && *g > GrowthThreshold {
		return growthHigh
	}
	return growthLow
}

func scoreRisk(de *float64) int {
	if de != nil && *de < LeverageThreshold {
		return riskLow
	}
	return riskHigh
}

func scoreValuation(pe *float64) int {
	if pe != nil && *pe < PEThreshold {
		return valuationCheap
	}
	return valuationExpensive
}
