package indicators

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Colin579M/AStock-AI-Agent-sub001/internal/database"
	"github.com/Colin579M/AStock-AI-Agent-sub001/internal/marketdata"
)

// stubEngine serves a fixed column under the name "X" and mirrors closes
// under "close"; everything else is unknown.
type stubEngine struct {
	x []float64
}

func (e *stubEngine) Compute(s marketdata.Series, name string) ([]float64, error) {
	switch name {
	case "X":
		col := make([]float64, len(s))
		copy(col, e.x)
		return col, nil
	case "close":
		return s.Closes(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownIndicator, name)
	}
}

func writeOfflineFixture(t *testing.T, dir, symbol string, rows []string) {
	t.Helper()
	content := "Date,Open,High,Low,Close,Volume\n"
	for _, row := range rows {
		content += row + "\n"
	}
	path := filepath.Join(dir, OfflineFilename(symbol))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newOfflineResolver(t *testing.T) (*Resolver, string) {
	t.Helper()
	dir := t.TempDir()
	engine := &stubEngine{x: []float64{1, 2, 3, 4}}
	return NewResolver(dir, nil, engine, nil, zerolog.Nop()), dir
}

func TestResolveOfflineScenario(t *testing.T) {
	resolver, dir := newOfflineResolver(t)
	writeOfflineFixture(t, dir, "AAA", []string{
		"2024-01-02,1,1,1,1,100",
		"2024-01-03,2,2,2,2,100",
		"2024-01-04,3,3,3,3,100",
		"2024-01-05,4,4,4,4,100",
	})

	res, err := resolver.Resolve("AAA", "X", "2024-01-03", ModeOffline)
	require.NoError(t, err)
	assert.False(t, res.NoData)
	assert.Equal(t, 2.0, res.Value)

	res, err = resolver.Resolve("AAA", "X", "2024-01-06", ModeOffline)
	require.NoError(t, err)
	assert.True(t, res.NoData)
	assert.Equal(t, "N/A: Not a trading day (weekend or holiday)", res.Reason)

	_, err = resolver.Resolve("AAA", "Y", "2024-01-03", ModeOffline)
	assert.ErrorIs(t, err, ErrUnknownIndicator)
}

func TestResolveOfflineMissingFile(t *testing.T) {
	resolver, _ := newOfflineResolver(t)

	res, err := resolver.Resolve("BBB", "X", "2024-01-03", ModeOffline)

	assert.ErrorIs(t, err, ErrDataNotFetched)
	assert.False(t, res.NoData, "a missing dataset must never masquerade as NO_DATA")
}

func TestResolveOfflinePrefixMatchesTimeSuffix(t *testing.T) {
	resolver, dir := newOfflineResolver(t)
	writeOfflineFixture(t, dir, "AAA", []string{
		`2024-03-14 16:00:00,9,9,9,9,100`,
		`2024-03-15 16:00:00,10,10,10,10,100`,
	})

	res, err := resolver.Resolve("AAA", "close", "2024-03-15", ModeOffline)

	require.NoError(t, err)
	assert.False(t, res.NoData)
	assert.Equal(t, 10.0, res.Value)
}

func TestResolveOfflineCleansDuplicatesAndGarbage(t *testing.T) {
	resolver, dir := newOfflineResolver(t)
	writeOfflineFixture(t, dir, "AAA", []string{
		"2024-01-03,2,2,2,2,100",
		"2024-01-02,1,1,1,1,100",
		"2024-01-02,99,99,99,99,100", // duplicate: first occurrence wins
		"1,0",                        // garbage trailer
	})

	res, err := resolver.Resolve("AAA", "close", "2024-01-02", ModeOffline)

	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Value)
}

func TestResolveUnknownMode(t *testing.T) {
	resolver, _ := newOfflineResolver(t)

	_, err := resolver.Resolve("AAA", "X", "2024-01-03", Mode("batch"))

	assert.Error(t, err)
}

type onlineFetcher struct {
	calls int
}

func (f *onlineFetcher) FetchDaily(symbol string, start, end time.Time) ([]marketdata.RawBar, error) {
	f.calls++
	return []marketdata.RawBar{
		{Date: "2024-03-14 00:00:00", Close: 9, Volume: 100},
		{Date: "2024-03-15 00:00:00", Close: 10, Volume: 100},
	}, nil
}

func TestResolveOnlineCacheRoundTrip(t *testing.T) {
	fetcher := &onlineFetcher{}
	cache := marketdata.NewCache(t.TempDir(), 15, fetcher, zerolog.Nop())
	resolver := NewResolver("", cache, &stubEngine{}, nil, zerolog.Nop())

	first, err := resolver.Resolve("AAPL", "close", "2024-03-15", ModeOnline)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, 10.0, first.Value)

	second, err := resolver.Resolve("AAPL", "close", "2024-03-15", ModeOnline)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls, "second resolution must hit the cache")
	assert.Equal(t, first.Value, second.Value)
}

func TestResolveOnlineNormalizesDates(t *testing.T) {
	fetcher := &onlineFetcher{}
	cache := marketdata.NewCache(t.TempDir(), 15, fetcher, zerolog.Nop())
	resolver := NewResolver("", cache, &stubEngine{}, nil, zerolog.Nop())

	// Provider dates carry a midnight suffix; target is a plain date.
	res, err := resolver.Resolve("AAPL", "close", "2024-03-14", ModeOnline)

	require.NoError(t, err)
	assert.False(t, res.NoData)
	assert.Equal(t, 9.0, res.Value)
	assert.Equal(t, "2024-03-14", res.Date)
}

func TestResolveWeekendReturnsNoData(t *testing.T) {
	fetcher := &onlineFetcher{}
	cache := marketdata.NewCache(t.TempDir(), 15, fetcher, zerolog.Nop())
	resolver := NewResolver("", cache, &stubEngine{}, nil, zerolog.Nop())

	res, err := resolver.Resolve("AAPL", "close", "2024-03-16", ModeOnline)

	require.NoError(t, err)
	assert.True(t, res.NoData)
	assert.Zero(t, res.Value)
	assert.NotEmpty(t, res.Reason)
}

func TestResolveRecordsHistory(t *testing.T) {
	db, err := database.New(filepath.Join(t.TempDir(), "resolutions.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	history := NewHistoryRepository(db.Conn(), zerolog.Nop())

	dir := t.TempDir()
	resolver := NewResolver(dir, nil, &stubEngine{x: []float64{1}}, history, zerolog.Nop())
	writeOfflineFixture(t, dir, "AAA", []string{"2024-01-02,1,1,1,1,100"})

	_, err = resolver.Resolve("AAA", "X", "2024-01-02", ModeOffline)
	require.NoError(t, err)
	_, err = resolver.Resolve("AAA", "X", "2024-01-06", ModeOffline)
	require.NoError(t, err)

	records, err := history.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	var values, noData int
	for _, rec := range records {
		assert.Equal(t, "AAA", rec.Symbol)
		assert.Equal(t, "X", rec.Indicator)
		if rec.NoData {
			noData++
			assert.Nil(t, rec.Value)
		} else {
			values++
			require.NotNil(t, rec.Value)
			assert.Equal(t, 1.0, *rec.Value)
		}
	}
	assert.Equal(t, 1, values)
	assert.Equal(t, 1, noData)
}
