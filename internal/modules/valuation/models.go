package valuation

import (
	"github.com/aristath/stock-valuator/internal/domain"
	"github.com/aristath/stock-valuator/pkg/formulas"
)

// Report is the full valuation response for one ticker.
type Report struct {
	Ticker       string                   `json:"ticker"`
	Price        domain.PriceSnapshot     `json:"price"`
	Fundamentals domain.Fundamentals      `json:"fundamentals"`
	Valuation    formulas.ValuationResult `json:"valuation"`
	Growth       float64                  `json:"growth_assumption"`

	// PriceSource records which provider supplied the market price:
	// "nse", "yahoo" or "" when no usable price was found.
	PriceSource string `json:"price_source,omitempty"`
}

// Merge composes primary and fallback fundamentals field-wise: the primary
// value wins when present, otherwise the fallback's, otherwise the field
// stays absent. Forward EPS only ever comes from the primary source.
func Merge(primary, fallback domain.Fundamentals) domain.Fundamentals {
	return domain.Fundamentals{
		EPS:        pick(primary.EPS, fallback.EPS),
		TrailingPE: pick(primary.TrailingPE, fallback.TrailingPE),
		ForwardEPS: primary.ForwardEPS,
		IndustryPE: pick(primary.IndustryPE, fallback.IndustryPE),
	}
}

func pick(primary, fallback *float64) *float64 {
	if primary != nil {
		return primary
	}
	return fallback
}
