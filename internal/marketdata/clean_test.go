package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bar(date string, close float64) RawBar {
	return RawBar{Date: date, Open: close, High: close, Low: close, Close: close, Volume: 100}
}

func TestCleanDropsUnparseableDates(t *testing.T) {
	raw := []RawBar{
		bar("2024-01-02", 10),
		bar("1", 0), // garbage trailer row
		bar("2024-01-03", 11),
		bar("not-a-date", 12),
	}

	got := Clean(raw)

	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-02", got[0].DateString)
	assert.Equal(t, "2024-01-03", got[1].DateString)
}

func TestCleanKeepsFirstDuplicate(t *testing.T) {
	raw := []RawBar{
		bar("2024-01-03", 30),
		bar("2024-01-02", 10),
		bar("2024-01-02", 99),
		bar("2024-01-02", 98),
	}

	got := Clean(raw)

	require.Len(t, got, 2)
	// Sorted ascending, and the first-occurring close=10 record won.
	assert.Equal(t, "2024-01-02", got[0].DateString)
	assert.Equal(t, 10.0, got[0].Close)
	assert.Equal(t, "2024-01-03", got[1].DateString)
}

func TestCleanSortsAscending(t *testing.T) {
	raw := []RawBar{
		bar("2024-03-01", 3),
		bar("2024-01-01", 1),
		bar("2024-02-01", 2),
	}

	got := Clean(raw)

	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Date.Before(got[i].Date),
			"dates must be strictly ascending")
	}
}

func TestCleanEmptyInput(t *testing.T) {
	assert.Empty(t, Clean(nil))
	assert.Empty(t, Clean([]RawBar{}))
}

func TestCleanIdempotent(t *testing.T) {
	raw := []RawBar{
		bar("2024-01-05", 5),
		bar("bogus", 0),
		bar("2024-01-02", 2),
		bar("2024-01-02", 3),
		bar("2024-01-04 16:00:00", 4),
	}

	once := Clean(raw)
	twice := Clean(once.Raw())

	assert.Equal(t, once, twice)
}

func TestCleanPreservesTimeOfDaySuffix(t *testing.T) {
	raw := []RawBar{bar("2024-03-15 09:30:00", 42)}

	got := Clean(raw)

	require.Len(t, got, 1)
	assert.Equal(t, "2024-03-15 09:30:00", got[0].DateString)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "plain date", value: "2024-03-15", want: true},
		{name: "date with time", value: "2024-03-15 16:00:00", want: true},
		{name: "RFC3339", value: "2024-03-15T16:00:00Z", want: true},
		{name: "surrounding whitespace", value: " 2024-03-15 ", want: true},
		{name: "garbage", value: "1", want: false},
		{name: "empty", value: "", want: false},
		{name: "wrong order", value: "15-03-2024", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseDate(tt.value)
			assert.Equal(t, tt.want, ok)
		})
	}
}
