package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/Colin579M/AStock-AI-Agent-sub001/internal/locking"
	"github.com/Colin579M/AStock-AI-Agent-sub001/internal/marketdata"
)

// PrefetchJob warms the online series cache for a configured set of symbols,
// so same-day resolutions hit the cache instead of the provider.
type PrefetchJob struct {
	log         zerolog.Logger
	lockManager *locking.Manager
	cache       *marketdata.Cache
	symbols     []string
}

// PrefetchConfig holds configuration for the prefetch job
type PrefetchConfig struct {
	Log         zerolog.Logger
	LockManager *locking.Manager
	Cache       *marketdata.Cache
	Symbols     []string
}

// NewPrefetchJob creates a new prefetch job
func NewPrefetchJob(cfg PrefetchConfig) *PrefetchJob {
	return &PrefetchJob{
		log:         cfg.Log.With().Str("job", "cache_prefetch").Logger(),
		lockManager: cfg.LockManager,
		cache:       cfg.Cache,
		symbols:     cfg.Symbols,
	}
}

// Name returns the job name
func (j *PrefetchJob) Name() string {
	return "cache_prefetch"
}

// Run warms the cache for every configured symbol. Per-symbol failures are
// logged and skipped; the run itself only fails on setup problems.
func (j *PrefetchJob) Run() error {
	if err := j.lockManager.Acquire("cache_prefetch"); err != nil {
		j.log.Warn().Err(err).Msg("Prefetch already running")
		return nil // skip this cycle, don't fail
	}
	defer j.lockManager.Release("cache_prefetch")

	j.log.Info().Int("symbols", len(j.symbols)).Msg("Starting cache prefetch")

	failed := 0
	for _, symbol := range j.symbols {
		series, err := j.cache.GetOrFetch(symbol)
		if err != nil {
			failed++
			j.log.Error().Err(err).Str("symbol", symbol).Msg("Prefetch failed for symbol")
			continue
		}

		j.log.Debug().
			Str("symbol", symbol).
			Int("rows", len(series)).
			Msg("Prefetched series")
	}

	j.log.Info().
		Int("symbols", len(j.symbols)).
		Int("failed", failed).
		Msg("Cache prefetch finished")

	return nil
}
