package indicators

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Colin579M/AStock-AI-Agent-sub001/internal/marketdata"
)

// Mode selects where the resolver sources its price series.
type Mode string

const (
	// ModeOffline reads the symbol's static bulk-download file.
	ModeOffline Mode = "offline"
	// ModeOnline goes through the fetch-and-cache path.
	ModeOnline Mode = "online"
)

// ErrDataNotFetched signals that the offline dataset for a symbol is absent.
// The caller must run the bulk download first; retrying the resolution will
// not help.
var ErrDataNotFetched = errors.New("market data not fetched yet")

// The static offline datasets cover a fixed historical range encoded in their
// filenames.
const (
	staticRangeStart = "2015-01-01"
	staticRangeEnd   = "2025-03-25"
)

// OfflineFilename returns the fixed name of a symbol's static dataset.
func OfflineFilename(symbol string) string {
	return fmt.Sprintf("%s-YFin-data-%s-%s.csv", symbol, staticRangeStart, staticRangeEnd)
}

// noDataReason labels an empty-but-valid resolution result.
const noDataReason = "N/A: Not a trading day (weekend or holiday)"

// Result is the outcome of one resolution. NoData distinguishes "no record
// for this date" from a numeric zero.
type Result struct {
	Symbol    string  `json:"symbol"`
	Indicator string  `json:"indicator"`
	Date      string  `json:"date"`
	Mode      Mode    `json:"mode"`
	Value     float64 `json:"value,omitempty"`
	NoData    bool    `json:"no_data"`
	Reason    string  `json:"reason,omitempty"`
}

// Resolver produces an indicator value for (symbol, indicator, date),
// sourcing the series offline or online and applying the non-trading-day
// policy on lookup.
type Resolver struct {
	dataDir string
	cache   *marketdata.Cache
	engine  Engine
	history *HistoryRepository // optional, best-effort audit trail
	log     zerolog.Logger
}

// NewResolver creates a resolver. history may be nil to disable the audit
// trail.
func NewResolver(dataDir string, cache *marketdata.Cache, engine Engine, history *HistoryRepository, log zerolog.Logger) *Resolver {
	return &Resolver{
		dataDir: dataDir,
		cache:   cache,
		engine:  engine,
		history: history,
		log:     log.With().Str("component", "indicator_resolver").Logger(),
	}
}

// Resolve returns the indicator value at targetDate, or a no-data result when
// the date has no bar (weekend or holiday).
func (r *Resolver) Resolve(symbol, indicator, targetDate string, mode Mode) (Result, error) {
	series, err := r.loadSeries(symbol, mode)
	if err != nil {
		return Result{}, err
	}

	target := targetDate
	if t, ok := marketdata.ParseDate(targetDate); ok {
		target = t.Format("2006-01-02")
	}

	frame := NewFrame(series, r.engine)
	if err := frame.EnsureComputed(indicator); err != nil {
		return Result{}, err
	}
	col, _ := frame.Column(indicator)

	res := Result{
		Symbol:    symbol,
		Indicator: indicator,
		Date:      target,
		Mode:      mode,
	}

	// First record whose date representation begins with the target date.
	// The prefix match tolerates stored dates carrying a time-of-day suffix.
	found := false
	for i, bar := range series {
		if strings.HasPrefix(bar.DateString, target) {
			res.Value = col[i]
			found = true
			break
		}
	}

	if !found {
		res.NoData = true
		res.Reason = noDataReason
	}

	r.record(res)

	r.log.Debug().
		Str("symbol", symbol).
		Str("indicator", indicator).
		Str("date", target).
		Str("mode", string(mode)).
		Bool("no_data", res.NoData).
		Msg("Resolved indicator")

	return res, nil
}

// loadSeries sources the cleaned series for the requested mode.
func (r *Resolver) loadSeries(symbol string, mode Mode) (marketdata.Series, error) {
	switch mode {
	case ModeOffline:
		path := filepath.Join(r.dataDir, OfflineFilename(symbol))
		raw, err := marketdata.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no offline dataset for %s, run the bulk download first", ErrDataNotFetched, symbol)
		}
		if err != nil {
			return nil, err
		}
		return marketdata.Clean(raw), nil

	case ModeOnline:
		series, err := r.cache.GetOrFetch(symbol)
		if err != nil {
			return nil, err
		}
		// Cache entries come back with whatever date representation the
		// provider used; normalize for the lookup.
		return series.NormalizeDates(), nil

	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}

// record appends the result to the audit trail. Failures are logged, never
// surfaced: history is an observability concern, not part of resolution.
func (r *Resolver) record(res Result) {
	if r.history == nil {
		return
	}
	if err := r.history.Create(res); err != nil {
		r.log.Warn().Err(err).Msg("Failed to record resolution")
	}
}
