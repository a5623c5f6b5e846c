// Package nse is the primary price provider, backed by the exchange's quote
// API. The API refuses requests without session cookies, so every cold fetch
// performs a warm-up request against the site root first.
package nse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/aristath/stock-valuator/internal/cache"
	"github.com/aristath/stock-valuator/internal/domain"
	"github.com/aristath/stock-valuator/pkg/coerce"
)

const (
	fetchTimeout = 8 * time.Second
	retryDelay   = 300 * time.Millisecond

	successTTL = 20 * time.Second
	failureTTL = 15 * time.Second
)

// Client fetches intraday quotes from the exchange API.
type Client struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewClient creates a new exchange quote client. Cookies acquired by the
// warm-up request live in the client's jar for the process lifetime.
func NewClient(baseURL string, c *cache.Cache, log zerolog.Logger) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: fetchTimeout,
			Jar:     jar,
		},
		cache: c,
		// One request per 250ms keeps the warm-up and data calls spaced
		// out the way the exchange expects.
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 1),
		log:     log.With().Str("client", "nse").Logger(),
	}
}

// quoteResponse mirrors the fields of the quote-equity payload we use.
// Values arrive as arbitrary JSON scalars, so extraction goes through
// coerce.ToFloat.
type quoteResponse struct {
	PriceInfo struct {
		LastPrice       any `json:"lastPrice"`
		Open            any `json:"open"`
		PreviousClose   any `json:"previousClose"`
		IntraDayHighLow struct {
			Max any `json:"max"`
			Min any `json:"min"`
		} `json:"intraDayHighLow"`
	} `json:"priceInfo"`
}

// FetchPrice returns the current price snapshot for a ticker. Failures of
// every kind (network, timeout, non-200, malformed body) degrade to a
// snapshot carrying an error message; no error is ever returned to the
// caller. Results are cached: successes briefly, failures slightly shorter
// so a blocked upstream is retried soon but not hammered.
func (c *Client) FetchPrice(ctx context.Context, ticker string) domain.PriceSnapshot {
	key := "nse_price:" + domain.NormalizeTicker(ticker)
	if cached, ok := c.cache.Get(key); ok {
		return cached.(domain.PriceSnapshot)
	}

	snapshot := c.fetch(ctx, ticker)

	ttl := successTTL
	if snapshot.Err != "" {
		ttl = failureTTL
	}
	c.cache.Set(key, snapshot, ttl)

	return snapshot
}

func (c *Client) fetch(ctx context.Context, ticker string) domain.PriceSnapshot {
	symbol := domain.ExchangeSymbol(ticker)

	if err := c.warmup(ctx, symbol); err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Session warm-up failed")
		return domain.PriceSnapshot{Err: fmt.Sprintf("exchange session: %v", err)}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.PriceSnapshot{Err: fmt.Sprintf("exchange fetch: %v", err)}
	}

	quoteURL := fmt.Sprintf("%s/api/quote-equity?symbol=%s", c.baseURL, symbol)

	resp, err := c.get(ctx, quoteURL, symbol)
	if err == nil && resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		// One retry after a fixed short delay.
		time.Sleep(retryDelay)
		resp, err = c.get(ctx, quoteURL, symbol)
	}
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Quote request failed")
		return domain.PriceSnapshot{Err: fmt.Sprintf("exchange fetch: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Str("symbol", symbol).Msg("Quote request rejected")
		return domain.PriceSnapshot{Err: fmt.Sprintf("exchange status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.PriceSnapshot{Err: fmt.Sprintf("exchange read: %v", err)}
	}

	var quote quoteResponse
	if err := json.Unmarshal(body, &quote); err != nil {
		return domain.PriceSnapshot{Err: fmt.Sprintf("exchange parse: %v", err)}
	}

	p := quote.PriceInfo
	return domain.PriceSnapshot{
		MarketPrice:   coerce.ToFloat(p.LastPrice),
		Open:          coerce.ToFloat(p.Open),
		DayHigh:       coerce.ToFloat(p.IntraDayHighLow.Max),
		DayLow:        coerce.ToFloat(p.IntraDayHighLow.Min),
		PreviousClose: coerce.ToFloat(p.PreviousClose),
	}
}

// warmup primes session cookies by hitting the site root.
func (c *Client) warmup(ctx context.Context, symbol string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := c.get(ctx, c.baseURL, symbol)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused for the data request.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// get issues a browser-shaped GET. The overall deadline comes from the
// http.Client timeout; ctx only carries caller cancellation.
func (c *Client) get(ctx context.Context, url, symbol string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// The exchange blocks clients that do not look like a browser.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Referer", fmt.Sprintf("%s/get-quotes/equity?symbol=%s", c.baseURL, symbol))

	return c.client.Do(req)
}
