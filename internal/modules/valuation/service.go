// Package valuation composes the price and fundamentals providers into a
// single intrinsic-value report.
package valuation

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aristath/stock-valuator/internal/domain"
	"github.com/aristath/stock-valuator/pkg/formulas"
)

// PriceProvider is the primary market-price source.
type PriceProvider interface {
	FetchPrice(ctx context.Context, ticker string) domain.PriceSnapshot
}

// PriceFallback is the secondary price source, consulted only when the
// primary yields no usable market price.
type PriceFallback interface {
	FetchChartPrice(ctx context.Context, ticker string) (*float64, error)
}

// FundamentalsProvider supplies per-share earnings figures best-effort.
type FundamentalsProvider interface {
	FetchFundamentals(ctx context.Context, ticker string) domain.Fundamentals
}

// Service orchestrates the fetch → merge → evaluate pipeline.
type Service struct {
	price         PriceProvider
	priceFallback PriceFallback
	primary       FundamentalsProvider
	fallback      FundamentalsProvider
	growth        float64
	log           zerolog.Logger
}

// NewService creates a valuation service.
func NewService(
	price PriceProvider,
	priceFallback PriceFallback,
	primary FundamentalsProvider,
	fallback FundamentalsProvider,
	growth float64,
	log zerolog.Logger,
) *Service {
	return &Service{
		price:         price,
		priceFallback: priceFallback,
		primary:       primary,
		fallback:      fallback,
		growth:        growth,
		log:           log.With().Str("service", "valuation").Logger(),
	}
}

// Evaluate builds the valuation report for a ticker. Fetches run
// sequentially: price, then primary fundamentals, then the fallback scraper.
// The fallback fundamentals source is always consulted; gaps in the primary
// are common and the call is absorbed by its cache. Every provider is
// best-effort, so the report always renders with whatever was obtained.
func (s *Service) Evaluate(ctx context.Context, ticker string) Report {
	ticker = domain.NormalizeTicker(ticker)

	price := s.price.FetchPrice(ctx, ticker)
	priceSource := ""
	if price.MarketPrice != nil {
		priceSource = "nse"
	} else {
		// Secondary provider fills the gap; its failure is logged only
		// and never surfaced as a price-level error.
		if fallback, err := s.priceFallback.FetchChartPrice(ctx, ticker); err != nil {
			s.log.Warn().Err(err).Str("ticker", ticker).Msg("Price fallback failed")
		} else {
			price.MarketPrice = fallback
			priceSource = "yahoo"
		}
	}

	merged := Merge(
		s.primary.FetchFundamentals(ctx, ticker),
		s.fallback.FetchFundamentals(ctx, ticker),
	)

	result := formulas.Evaluate(formulas.ValuationInputs{
		EPS:         merged.EPS,
		TrailingPE:  merged.TrailingPE,
		IndustryPE:  merged.IndustryPE,
		Growth:      &s.growth,
		MarketPrice: price.MarketPrice,
	})

	s.log.Info().
		Str("ticker", ticker).
		Str("price_source", priceSource).
		Str("decision", string(result.Decision)).
		Msg("Valuation computed")

	return Report{
		Ticker:       ticker,
		Price:        price,
		Fundamentals: merged,
		Valuation:    result,
		Growth:       s.growth,
		PriceSource:  priceSource,
	}
}
