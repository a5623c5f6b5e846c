// Package yahoo provides the primary fundamentals source and the secondary
// price lookup used when the exchange API yields no usable market price.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/stock-valuator/internal/cache"
	"github.com/aristath/stock-valuator/internal/domain"
)

const (
	fetchTimeout = 10 * time.Second

	fundamentalsTTL = 60 * time.Second
	failureTTL      = 30 * time.Second

	// The chart endpoint stands in for the exchange price feed, so its
	// results live and die on the same schedule.
	chartPriceTTL        = 20 * time.Second
	chartPriceFailureTTL = 15 * time.Second
)

// Client is a Yahoo Finance API client
type Client struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(baseURL string, c *cache.Cache, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: fetchTimeout,
		},
		cache: c,
		log:   log.With().Str("client", "yahoo").Logger(),
	}
}

// quoteResponse represents the response from the quote API
type quoteResponse struct {
	QuoteResponse struct {
		Result []map[string]interface{} `json:"result"`
		Error  interface{}              `json:"error"`
	} `json:"quoteResponse"`
}

// FetchFundamentals fetches trailing EPS, trailing P/E, forward EPS and
// industry P/E for a ticker. NSE tickers keep their .NS suffix here. Any
// failure yields an all-absent record; failures are cached briefly so a
// broken upstream is not hammered.
func (c *Client) FetchFundamentals(ctx context.Context, ticker string) domain.Fundamentals {
	symbol := domain.NormalizeTicker(ticker)
	key := "yf_fundamentals:" + symbol

	if cached, ok := c.cache.Get(key); ok {
		return cached.(domain.Fundamentals)
	}

	info, err := c.getQuoteInfo(ctx, symbol)
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Fundamentals fetch failed")
		out := domain.Fundamentals{}
		c.cache.Set(key, out, failureTTL)
		return out
	}

	out := domain.Fundamentals{
		EPS:        getFloat64(info, "trailingEps"),
		TrailingPE: getFloat64(info, "trailingPE"),
		ForwardEPS: getFloat64(info, "forwardEps"),
		IndustryPE: getFloat64(info, "industryPE"),
	}
	c.cache.Set(key, out, fundamentalsTTL)

	return out
}

// chartPriceResult is the cached outcome of a chart lookup. Failures are
// cached too so a broken upstream is not retried on every request.
type chartPriceResult struct {
	price *float64
	err   error
}

// FetchChartPrice fetches the regular market price from the chart API. Used
// as the secondary price source; the caller decides what a failure means.
func (c *Client) FetchChartPrice(ctx context.Context, ticker string) (*float64, error) {
	symbol := domain.NormalizeTicker(ticker)
	key := "yf_chart_price:" + symbol

	if cached, ok := c.cache.Get(key); ok {
		result := cached.(chartPriceResult)
		return result.price, result.err
	}

	price, err := c.fetchChartPrice(ctx, symbol)
	if err != nil {
		c.cache.Set(key, chartPriceResult{err: err}, chartPriceFailureTTL)
		return nil, err
	}

	c.cache.Set(key, chartPriceResult{price: price}, chartPriceTTL)
	return price, nil
}

func (c *Client) fetchChartPrice(ctx context.Context, symbol string) (*float64, error) {
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", c.baseURL, url.PathEscape(symbol))

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var result chartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse chart response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error: %v", result.Chart.Error)
	}

	if len(result.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart data returned for symbol %s", symbol)
	}

	price := result.Chart.Result[0].Meta.RegularMarketPrice
	if price == nil || *price <= 0 {
		return nil, fmt.Errorf("no usable market price for symbol %s", symbol)
	}

	return price, nil
}

// chartResponse represents the response from the chart API
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				PreviousClose      *float64 `json:"previousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// getQuoteInfo fetches quote information from the quote API
func (c *Client) getQuoteInfo(ctx context.Context, symbol string) (map[string]interface{}, error) {
	params := url.Values{}
	params.Add("symbols", symbol)
	params.Add("fields", "symbol,regularMarketPrice,trailingEps,trailingPE,forwardEps,industryPE,quoteType,shortName")

	reqURL := c.baseURL + "/v7/finance/quote?" + params.Encode()

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var result quoteResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if result.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("quote API error: %v", result.QuoteResponse.Error)
	}

	if len(result.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no quote data returned for symbol %s", symbol)
	}

	return result.QuoteResponse.Result[0], nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers to mimic browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// getFloat64 safely extracts a numeric field from a quote result map.
func getFloat64(m map[string]interface{}, key string) *float64 {
	if val, ok := m[key]; ok && val != nil {
		switch v := val.(type) {
		case float64:
			return &v
		case int:
			f := float64(v)
			return &f
		case int64:
			f := float64(v)
			return &f
		}
	}
	return nil
}
