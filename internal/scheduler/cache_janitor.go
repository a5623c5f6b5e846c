package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/aristath/stock-valuator/internal/cache"
)

// CacheJanitorJob sweeps expired entries out of the quote cache. Lookups
// evict lazily, but tickers that are queried once and never again would
// otherwise sit in the map for the process lifetime.
type CacheJanitorJob struct {
	cache *cache.Cache
	log   zerolog.Logger
}

// NewCacheJanitorJob creates a new cache janitor job
func NewCacheJanitorJob(c *cache.Cache, log zerolog.Logger) *CacheJanitorJob {
	return &CacheJanitorJob{
		cache: c,
		log:   log.With().Str("job", "cache_janitor").Logger(),
	}
}

// Name returns the job name
func (j *CacheJanitorJob) Name() string {
	return "cache_janitor"
}

// Run sweeps the cache
func (j *CacheJanitorJob) Run() error {
	evicted := j.cache.Sweep()
	if evicted > 0 {
		j.log.Debug().Int("evicted", evicted).Int("remaining", j.cache.Len()).Msg("Swept expired cache entries")
	}
	return nil
}
