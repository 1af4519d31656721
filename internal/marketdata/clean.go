package marketdata

import (
	"sort"
	"strings"
)

// Clean normalizes a raw series into a valid Series:
//   - rows whose date fails to parse are dropped
//   - among rows sharing an identical parsed date, the first occurrence in
//     input order wins
//   - the result is sorted ascending by date
//
// Clean is pure and total: empty input yields an empty series, and no input
// shape causes an error.
func Clean(raw []RawBar) Series {
	out := make(Series, 0, len(raw))
	seen := make(map[int64]struct{}, len(raw))

	for _, r := range raw {
		t, ok := ParseDate(r.Date)
		if !ok {
			continue
		}

		key := t.UnixNano()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		out = append(out, Bar{
			Date:       t,
			DateString: strings.TrimSpace(r.Date),
			Open:       r.Open,
			High:       r.High,
			Low:        r.Low,
			Close:      r.Close,
			Volume:     r.Volume,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})

	return out
}
