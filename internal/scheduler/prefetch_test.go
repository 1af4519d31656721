package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Colin579M/AStock-AI-Agent-sub001/internal/locking"
	"github.com/Colin579M/AStock-AI-Agent-sub001/internal/marketdata"
)

type fakeFetcher struct {
	calls   map[string]int
	failFor string
}

func (f *fakeFetcher) FetchDaily(symbol string, start, end time.Time) ([]marketdata.RawBar, error) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[symbol]++
	if symbol == f.failFor {
		return nil, errors.New("provider down")
	}
	return []marketdata.RawBar{{Date: "2024-01-02", Close: 1, Volume: 10}}, nil
}

func TestPrefetchWarmsAllSymbols(t *testing.T) {
	fetcher := &fakeFetcher{}
	cache := marketdata.NewCache(t.TempDir(), 15, fetcher, zerolog.Nop())
	locks := locking.NewManager(t.TempDir(), zerolog.Nop())

	job := NewPrefetchJob(PrefetchConfig{
		Log:         zerolog.Nop(),
		LockManager: locks,
		Cache:       cache,
		Symbols:     []string{"AAPL", "MSFT"},
	})

	require.NoError(t, job.Run())
	assert.Equal(t, 1, fetcher.calls["AAPL"])
	assert.Equal(t, 1, fetcher.calls["MSFT"])

	// A second run on the same day is all cache hits.
	require.NoError(t, job.Run())
	assert.Equal(t, 1, fetcher.calls["AAPL"])
}

func TestPrefetchContinuesPastFailures(t *testing.T) {
	fetcher := &fakeFetcher{failFor: "AAPL"}
	cache := marketdata.NewCache(t.TempDir(), 15, fetcher, zerolog.Nop())
	locks := locking.NewManager(t.TempDir(), zerolog.Nop())

	job := NewPrefetchJob(PrefetchConfig{
		Log:         zerolog.Nop(),
		LockManager: locks,
		Cache:       cache,
		Symbols:     []string{"AAPL", "MSFT"},
	})

	require.NoError(t, job.Run(), "per-symbol failures must not fail the run")
	assert.Equal(t, 1, fetcher.calls["MSFT"])
}

func TestPrefetchSkipsWhenLockHeld(t *testing.T) {
	fetcher := &fakeFetcher{}
	cache := marketdata.NewCache(t.TempDir(), 15, fetcher, zerolog.Nop())
	locks := locking.NewManager(t.TempDir(), zerolog.Nop())

	require.NoError(t, locks.Acquire("cache_prefetch"))

	job := NewPrefetchJob(PrefetchConfig{
		Log:         zerolog.Nop(),
		LockManager: locks,
		Cache:       cache,
		Symbols:     []string{"AAPL"},
	})

	require.NoError(t, job.Run())
	assert.Empty(t, fetcher.calls, "a held lock skips the whole run")
}
