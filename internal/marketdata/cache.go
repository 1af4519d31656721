package marketdata

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Key identifies one cached window for a symbol. Two overlapping but
// non-identical windows map to distinct entries; ranges are never merged.
type Key struct {
	Symbol string
	Start  time.Time
	End    time.Time
}

// Filename returns the cache entry name for the key. The scheme matches the
// historical bulk-download layout so cache entries and offline datasets look
// alike on disk: SYMBOL-YFin-data-START-END.csv.
func (k Key) Filename() string {
	return fmt.Sprintf("%s-YFin-data-%s-%s.csv",
		k.Symbol,
		k.Start.Format(dateLayout),
		k.End.Format(dateLayout),
	)
}

// Fetcher retrieves a raw daily series from an external market-data provider.
// Implementations decide their own retry policy; a returned error is fatal to
// the resolution that triggered the fetch.
type Fetcher interface {
	FetchDaily(symbol string, start, end time.Time) ([]RawBar, error)
}

// Cache maps (symbol, lookback window) keys to series persisted on disk,
// populating entries through a Fetcher on miss. Entries are never expired:
// a window anchored at a previous processing date is simply a different key,
// so the cache directory grows by one entry per run-date per symbol.
type Cache struct {
	dir           string
	lookbackYears int
	fetcher       Fetcher
	log           zerolog.Logger

	now func() time.Time
}

// NewCache creates a series cache rooted at dir.
func NewCache(dir string, lookbackYears int, fetcher Fetcher, log zerolog.Logger) *Cache {
	return &Cache{
		dir:           dir,
		lookbackYears: lookbackYears,
		fetcher:       fetcher,
		log:           log.With().Str("component", "series_cache").Logger(),
		now:           time.Now,
	}
}

// GetOrFetch returns the cleaned series for the symbol's lookback window.
// The window is anchored at the current processing date regardless of which
// target date is being resolved, so every resolution on the same day shares
// one entry per symbol.
//
// Loaded entries pass through Clean again: persisted data may contain
// anomalies from a run that predates the current validation.
func (c *Cache) GetOrFetch(symbol string) (Series, error) {
	end := c.now()
	key := Key{
		Symbol: symbol,
		Start:  end.AddDate(-c.lookbackYears, 0, 0),
		End:    end,
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	path := filepath.Join(c.dir, key.Filename())

	if _, err := os.Stat(path); err == nil {
		raw, err := ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load cached series for %s: %w", symbol, err)
		}

		c.log.Debug().
			Str("symbol", symbol).
			Str("file", key.Filename()).
			Msg("Cache hit")

		return Clean(raw), nil
	}

	raw, err := c.fetcher.FetchDaily(symbol, key.Start, key.End)
	if err != nil {
		return nil, fmt.Errorf("provider fetch failed for %s: %w", symbol, err)
	}

	series := Clean(raw)
	if err := WriteFile(path, series); err != nil {
		return nil, fmt.Errorf("failed to persist series for %s: %w", symbol, err)
	}

	c.log.Info().
		Str("symbol", symbol).
		Str("file", key.Filename()).
		Int("rows", len(series)).
		Msg("Fetched and cached series")

	return series, nil
}
