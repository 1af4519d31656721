package marketdata

import (
	"strings"
	"time"
)

// dateLayout is the canonical calendar-date representation used in cache
// filenames and normalized date strings.
const dateLayout = "2006-01-02"

// RawBar is a single unvalidated row as it arrives from a provider feed or a
// stored CSV file. The date stays a string until cleaning: upstream feeds are
// known to occasionally append trailer rows whose date does not parse.
type RawBar struct {
	Date   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Bar is a validated daily OHLCV record.
type Bar struct {
	Date time.Time

	// DateString preserves the source representation of the date, which may
	// carry a time-of-day suffix. Date lookups match on this by prefix.
	DateString string

	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Series is an ordered sequence of daily bars. After Clean, dates are strictly
// increasing with no duplicates.
type Series []Bar

// Raw converts the series back to raw rows, preserving source date strings.
func (s Series) Raw() []RawBar {
	raw := make([]RawBar, len(s))
	for i, b := range s {
		raw[i] = RawBar{
			Date:   b.DateString,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	return raw
}

// Closes returns the close column.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Highs returns the high column.
func (s Series) Highs() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.High
	}
	return out
}

// Lows returns the low column.
func (s Series) Lows() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Low
	}
	return out
}

// Volumes returns the volume column as floats.
func (s Series) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = float64(b.Volume)
	}
	return out
}

// NormalizeDates returns a copy of the series with every DateString rewritten
// to the canonical YYYY-MM-DD form.
func (s Series) NormalizeDates() Series {
	out := make(Series, len(s))
	for i, b := range s {
		b.DateString = b.Date.Format(dateLayout)
		out[i] = b
	}
	return out
}

// dateLayouts are accepted date representations, tried in order.
var dateLayouts = []string{
	dateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseDate parses a date field from a raw row. The second return value is
// false when no accepted layout matches.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
