// Package screener scrapes the fallback fundamentals snapshot from company
// profile pages. The page structure drifts, so extraction is deliberately
// tolerant: each field is independently optional and parse problems yield
// absent values instead of errors.
package screener

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/aristath/stock-valuator/internal/cache"
	"github.com/aristath/stock-valuator/internal/domain"
	"github.com/aristath/stock-valuator/pkg/coerce"
)

const (
	fetchTimeout = 10 * time.Second

	successTTL = 120 * time.Second
	failureTTL = 60 * time.Second
)

// peTextPattern matches "P/E", "PE" or "P E" followed by a decimal number in
// free page text. Used when the snapshot table has no P/E row.
var peTextPattern = regexp.MustCompile(`(?i)P/?E\s*[:\-]?\s*([0-9]+\.?[0-9]*)`)

// Client scrapes fundamentals from company profile pages.
type Client struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache
	log     zerolog.Logger
}

// NewClient creates a new profile page scraper.
func NewClient(baseURL string, c *cache.Cache, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: fetchTimeout,
		},
		cache: c,
		log:   log.With().Str("client", "screener").Logger(),
	}
}

// FetchFundamentals scrapes EPS and trailing P/E for a ticker. Industry P/E
// is never available from this source. Partial extraction is fine; any
// failure yields an all-absent record.
func (c *Client) FetchFundamentals(ctx context.Context, ticker string) domain.Fundamentals {
	symbol := domain.ExchangeSymbol(ticker)
	key := "screener:" + symbol

	if cached, ok := c.cache.Get(key); ok {
		return cached.(domain.Fundamentals)
	}

	out, ok := c.scrape(ctx, symbol)

	ttl := successTTL
	if !ok {
		ttl = failureTTL
	}
	c.cache.Set(key, out, ttl)

	return out
}

func (c *Client) scrape(ctx context.Context, symbol string) (domain.Fundamentals, bool) {
	reqURL := fmt.Sprintf("%s/company/%s/", c.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.Fundamentals{}, false
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept-Language", "en-US")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Profile page fetch failed")
		return domain.Fundamentals{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Str("symbol", symbol).Msg("Profile page rejected")
		return domain.Fundamentals{}, false
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("Profile page parse failed")
		return domain.Fundamentals{}, false
	}

	return extract(doc), true
}

// extract pulls EPS and P/E out of the snapshot table, falling back to a
// free-text search for P/E. The first matching row wins for each field.
func extract(doc *goquery.Document) domain.Fundamentals {
	var epsText, peText string

	doc.Find("table.snapshot tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		label := strings.ToUpper(strings.TrimSpace(cells.Eq(0).Text()))
		value := strings.TrimSpace(cells.Eq(1).Text())

		if epsText == "" && strings.Contains(label, "EPS") {
			epsText = value
		}
		if peText == "" && strings.Contains(label, "P/E") {
			peText = value
		}
	})

	if peText == "" {
		if m := peTextPattern.FindStringSubmatch(doc.Text()); m != nil {
			peText = m[1]
		}
	}

	return domain.Fundamentals{
		EPS:        coerce.ToFloat(epsText),
		TrailingPE: coerce.ToFloat(peText),
	}
}
