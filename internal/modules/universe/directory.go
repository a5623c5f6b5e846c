// Package universe holds the static directory of known NSE tickers used for
// autocomplete.
package universe

import (
	"bufio"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Directory is an immutable ordered list of ticker symbols, loaded once at
// startup and queried by prefix. It is never mutated at runtime, so
// concurrent reads need no locking.
type Directory struct {
	tickers []string
	log     zerolog.Logger
}

// Load reads a line-oriented ticker list (one symbol per line, e.g.
// RELIANCE.NS). Lines are trimmed and uppercased; blank lines are skipped.
// A missing or unreadable file yields an empty directory, not an error:
// autocomplete degrades to no suggestions rather than failing startup.
func Load(path string, log zerolog.Logger) *Directory {
	d := &Directory{
		log: log.With().Str("component", "universe").Logger(),
	}

	f, err := os.Open(path)
	if err != nil {
		d.log.Warn().Err(err).Str("path", path).Msg("Ticker list unavailable, autocomplete disabled")
		return d
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if line == "" {
			continue
		}
		d.tickers = append(d.tickers, line)
	}

	if err := scanner.Err(); err != nil {
		d.log.Warn().Err(err).Str("path", path).Msg("Ticker list read incomplete")
	}

	d.log.Info().Int("count", len(d.tickers)).Str("path", path).Msg("Loaded ticker directory")
	return d
}

// Search returns tickers starting with prefix, case-insensitive, preserving
// load order, capped at limit. An empty prefix matches nothing.
func (d *Directory) Search(prefix string, limit int) []string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" || limit <= 0 {
		return []string{}
	}

	matches := []string{}
	for _, t := range d.tickers {
		if strings.HasPrefix(t, prefix) {
			matches = append(matches, t)
			if len(matches) >= limit {
				break
			}
		}
	}
	return matches
}

// Len returns the number of known tickers.
func (d *Directory) Len() int {
	return len(d.tickers)
}
