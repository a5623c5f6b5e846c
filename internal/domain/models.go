package domain

import "strings"

// PriceSnapshot holds the price fields a provider managed to fetch for a
// ticker. Every field is optional; Err carries a human-readable message when
// the exchange call failed outright. Snapshots are never mutated after
// creation.
type PriceSnapshot struct {
	MarketPrice   *float64 `json:"market_price"`
	Open          *float64 `json:"open"`
	DayHigh       *float64 `json:"day_high"`
	DayLow        *float64 `json:"day_low"`
	PreviousClose *float64 `json:"previous_close"`
	Err           string   `json:"error,omitempty"`
}

// Fundamentals holds per-share earnings figures. Separate instances exist
// for the primary and fallback sources; Merge in the valuation module
// composes them field-wise.
type Fundamentals struct {
	EPS        *float64 `json:"eps"`
	TrailingPE *float64 `json:"trailing_pe"`
	ForwardEPS *float64 `json:"forward_eps"`
	IndustryPE *float64 `json:"industry_pe"`
}

// NormalizeTicker uppercases and trims a raw ticker string. Idempotent.
func NormalizeTicker(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ExchangeSymbol strips the .NS market suffix for providers that address
// securities by bare exchange symbol (NSE, Screener). The display symbol is
// left untouched by callers.
func ExchangeSymbol(ticker string) string {
	return strings.TrimSuffix(NormalizeTicker(ticker), ".NS")
}
