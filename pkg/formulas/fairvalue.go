package formulas

import "math"

// Decision is the valuation verdict relative to the current market price.
type Decision string

const (
	DecisionBuy     Decision = "BUY"
	DecisionSell    Decision = "SELL"
	DecisionHold    Decision = "HOLD"
	DecisionUnknown Decision = "UNKNOWN"
)

// DefaultGrowth is assumed when the caller does not supply a growth rate.
const DefaultGrowth = 0.08

// MarginOfSafety is the fixed band around intrinsic value that defines the
// buy and sell thresholds.
const MarginOfSafety = 0.30

// ValuationInputs are the raw figures the fair-value model works from.
// Optional fields are nil when the upstream sources had no value. A nil
// Growth means "unspecified" and falls back to DefaultGrowth; zero is a
// valid low-bracket growth assumption, distinct from unspecified.
type ValuationInputs struct {
	EPS         *float64 // trailing twelve-month earnings per share
	TrailingPE  *float64
	IndustryPE  *float64
	Growth      *float64 // assumed annual earnings growth
	MarketPrice *float64
}

// ValuationResult is fully determined by its inputs; no hidden state.
type ValuationResult struct {
	FairPE         float64  `json:"fair_pe"`
	ForwardEPS     *float64 `json:"forward_eps"`
	IntrinsicValue *float64 `json:"intrinsic_value"`
	BuyPrice       *float64 `json:"buy_price"`
	SellPrice      *float64 `json:"sell_price"`
	Decision       Decision `json:"decision"`
}

// growthBracket returns the sanity addend and fair-P/E cap for a growth
// assumption. The constants are empirical; they are preserved exactly for
// behavioral compatibility and do not generalize to other markets.
func growthBracket(growth float64) (addend, cap float64) {
	switch {
	case growth < 0.05:
		return 2, 12
	case growth < 0.15:
		return 3, 18
	default:
		return 4, 25
	}
}

// FairPE derives a bounded "fair" P/E multiple.
//
//	base   = (trailingPE or 0) + addend
//	chosen = min(industryPE or base, base)
//	fair   = min(chosen, cap), rounded to 2 decimals
//
// The industry P/E can only pull the multiple down, never up. growth is a
// concrete assumption here; callers resolve "unspecified" to DefaultGrowth
// before calling.
func FairPE(trailingPE, industryPE *float64, growth float64) float64 {
	addend, cap := growthBracket(growth)

	base := addend
	if trailingPE != nil {
		base = *trailingPE + addend
	}

	chosen := base
	if industryPE != nil && *industryPE < base {
		chosen = *industryPE
	}

	return math.Round(math.Min(chosen, cap)*100) / 100
}

// Evaluate runs the full intrinsic-value model.
//
// Without an EPS there is nothing to project: every derived field is nil and
// the decision is UNKNOWN. Otherwise forward EPS applies the growth
// assumption to trailing EPS, intrinsic value multiplies by the fair P/E,
// and the margin of safety sets the buy/sell thresholds. The decision needs
// a market price; BUY is checked before SELL, both bounds inclusive.
func Evaluate(in ValuationInputs) ValuationResult {
	growth := DefaultGrowth
	if in.Growth != nil {
		growth = *in.Growth
	}

	result := ValuationResult{
		FairPE:   FairPE(in.TrailingPE, in.IndustryPE, growth),
		Decision: DecisionUnknown,
	}

	if in.EPS == nil {
		return result
	}

	forwardEPS := *in.EPS * (1 + growth)
	intrinsic := forwardEPS * result.FairPE
	buy := intrinsic * (1 - MarginOfSafety)
	sell := intrinsic * (1 + MarginOfSafety)

	result.ForwardEPS = &forwardEPS
	result.IntrinsicValue = &intrinsic
	result.BuyPrice = &buy
	result.SellPrice = &sell

	if in.MarketPrice == nil {
		return result
	}

	switch {
	case *in.MarketPrice <= buy:
		result.Decision = DecisionBuy
	case *in.MarketPrice >= sell:
		result.Decision = DecisionSell
	default:
		result.Decision = DecisionHold
	}

	return result
}
