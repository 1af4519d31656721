package indicators

import (
	"github.com/Colin579M/AStock-AI-Agent-sub001/internal/marketdata"
)

// Frame pairs a cleaned series with lazily materialized indicator columns.
// A column is computed at most once per frame, on the first EnsureComputed
// call naming it.
type Frame struct {
	series marketdata.Series
	engine Engine
	cols   map[string][]float64
}

// NewFrame wraps a series for indicator materialization.
func NewFrame(series marketdata.Series, engine Engine) *Frame {
	return &Frame{
		series: series,
		engine: engine,
		cols:   make(map[string][]float64),
	}
}

// EnsureComputed materializes the named indicator column if it is not already
// present.
func (f *Frame) EnsureComputed(name string) error {
	if _, ok := f.cols[name]; ok {
		return nil
	}

	col, err := f.engine.Compute(f.series, name)
	if err != nil {
		return err
	}

	f.cols[name] = col
	return nil
}

// Column returns a materialized indicator column.
func (f *Frame) Column(name string) ([]float64, bool) {
	col, ok := f.cols[name]
	return col, ok
}

// Series returns the underlying cleaned series.
func (f *Frame) Series() marketdata.Series {
	return f.series
}
