package marketdata

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Column order of persisted series files. Matches the bulk-download layout,
// so offline datasets and cache entries share one codec.
var csvColumns = []string{"Date", "Open", "High", "Low", "Close", "Volume"}

// ReadFile loads a raw series from a delimited file with a header row.
// Ragged rows (including garbage trailers with too few fields) are tolerated:
// missing fields read as zero, unparseable numerics read as zero. Only the
// cleaner decides which rows survive, based on the date field.
func ReadFile(path string) ([]RawBar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if len(records) == 0 {
		return []RawBar{}, nil
	}

	// Map column positions from the header so re-ordered provider exports
	// still load.
	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(name)] = i
	}
	if _, ok := index["Date"]; !ok {
		return nil, fmt.Errorf("%s has no Date column", filepath.Base(path))
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	raw := make([]RawBar, 0, len(records)-1)
	for _, row := range records[1:] {
		raw = append(raw, RawBar{
			Date:   field(row, "Date"),
			Open:   parseFloat(field(row, "Open")),
			High:   parseFloat(field(row, "High")),
			Low:    parseFloat(field(row, "Low")),
			Close:  parseFloat(field(row, "Close")),
			Volume: parseInt(field(row, "Volume")),
		})
	}

	return raw, nil
}

// WriteFile persists a cleaned series. The write goes to a temporary file in
// the same directory followed by a rename, so readers never observe a
// partially written entry.
func WriteFile(path string, series Series) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	w := csv.NewWriter(tmp)
	if err := w.Write(csvColumns); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, b := range series {
		row := []string{
			b.DateString,
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			strconv.FormatInt(b.Volume, 10),
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize %s: %w", filepath.Base(path), err)
	}

	return nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int64 {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	// Some exports serialize volume as a float.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
