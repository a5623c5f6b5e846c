package nse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stock-valuator/internal/cache"
)

const quoteBody = `{
	"priceInfo": {
		"lastPrice": 2456.80,
		"open": 2440.00,
		"previousClose": 2430.10,
		"intraDayHighLow": {"max": 2470.00, "min": 2431.50}
	}
}`

// newServer serves the site root (warm-up) and the quote endpoint.
func newServer(t *testing.T, quote http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/quote-equity", quote)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchPriceSuccess(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "RELIANCE", r.URL.Query().Get("symbol"))
		w.Write([]byte(quoteBody))
	})

	c := NewClient(srv.URL, cache.New(), zerolog.Nop())
	snap := c.FetchPrice(context.Background(), "RELIANCE.NS")

	assert.Empty(t, snap.Err)
	require.NotNil(t, snap.MarketPrice)
	assert.InDelta(t, 2456.80, *snap.MarketPrice, 1e-9)
	require.NotNil(t, snap.Open)
	assert.InDelta(t, 2440.00, *snap.Open, 1e-9)
	require.NotNil(t, snap.DayHigh)
	assert.InDelta(t, 2470.00, *snap.DayHigh, 1e-9)
	require.NotNil(t, snap.DayLow)
	assert.InDelta(t, 2431.50, *snap.DayLow, 1e-9)
	require.NotNil(t, snap.PreviousClose)
	assert.InDelta(t, 2430.10, *snap.PreviousClose, 1e-9)
}

func TestFetchPriceRetriesOnceThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(quoteBody))
	})

	c := NewClient(srv.URL, cache.New(), zerolog.Nop())
	snap := c.FetchPrice(context.Background(), "RELIANCE.NS")

	assert.Empty(t, snap.Err)
	assert.Equal(t, int32(2), calls.Load())
	require.NotNil(t, snap.MarketPrice)
}

func TestFetchPricePersistentFailure(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	c := NewClient(srv.URL, cache.New(), zerolog.Nop())
	snap := c.FetchPrice(context.Background(), "RELIANCE.NS")

	// One retry only, then an error snapshot with no price fields.
	assert.Equal(t, int32(2), calls.Load())
	assert.Contains(t, snap.Err, "status 401")
	assert.Nil(t, snap.MarketPrice)
}

func TestFetchPriceCachesFailures(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	})

	c := NewClient(srv.URL, cache.New(), zerolog.Nop())
	first := c.FetchPrice(context.Background(), "TCS.NS")
	second := c.FetchPrice(context.Background(), "TCS.NS")

	// The second call hits the cached error snapshot.
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, first, second)
}

func TestFetchPriceCachesSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(quoteBody))
	})

	c := NewClient(srv.URL, cache.New(), zerolog.Nop())
	c.FetchPrice(context.Background(), "TCS.NS")
	c.FetchPrice(context.Background(), "TCS.NS")

	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchPriceMalformedBody(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>blocked</html>"))
	})

	c := NewClient(srv.URL, cache.New(), zerolog.Nop())
	snap := c.FetchPrice(context.Background(), "RELIANCE.NS")

	assert.Contains(t, snap.Err, "parse")
	assert.Nil(t, snap.MarketPrice)
}

func TestFetchPriceUnreachableHost(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", cache.New(), zerolog.Nop())
	snap := c.FetchPrice(context.Background(), "RELIANCE.NS")

	assert.NotEmpty(t, snap.Err)
	assert.Nil(t, snap.MarketPrice)
}
