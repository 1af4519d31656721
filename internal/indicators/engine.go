package indicators

import (
	"errors"
	"fmt"
	"sort"

	"github.com/markcheno/go-talib"

	"github.com/Colin579M/AStock-AI-Agent-sub001/internal/marketdata"
	"github.com/Colin579M/AStock-AI-Agent-sub001/pkg/formulas"
)

// ErrUnknownIndicator is returned when an indicator name is not registered.
var ErrUnknownIndicator = errors.New("unknown indicator")

// Engine computes a named indicator column from a cleaned price series.
// The column has the same length as the series; positions inside the warm-up
// window hold zero.
type Engine interface {
	Compute(series marketdata.Series, name string) ([]float64, error)
}

// TalibEngine implements Engine with go-talib computations, registered under
// the indicator names the analyst toolkit exposes.
type TalibEngine struct {
	registry map[string]func(marketdata.Series) []float64
}

// NewTalibEngine creates the production indicator engine.
func NewTalibEngine() *TalibEngine {
	e := &TalibEngine{}
	e.registry = map[string]func(marketdata.Series) []float64{
		// Moving averages
		"close_50_sma":  func(s marketdata.Series) []float64 { return sma(s.Closes(), 50) },
		"close_200_sma": func(s marketdata.Series) []float64 { return sma(s.Closes(), 200) },
		"close_10_ema":  func(s marketdata.Series) []float64 { return ema(s.Closes(), 10) },

		// MACD family
		"macd":  func(s marketdata.Series) []float64 { m, _, _ := macd(s.Closes()); return m },
		"macds": func(s marketdata.Series) []float64 { _, sig, _ := macd(s.Closes()); return sig },
		"macdh": func(s marketdata.Series) []float64 { _, _, h := macd(s.Closes()); return h },

		// Momentum
		"rsi": func(s marketdata.Series) []float64 { return rsi(s.Closes(), 14) },
		"mfi": func(s marketdata.Series) []float64 { return mfi(s, 14) },

		// Bollinger bands
		"boll":    func(s marketdata.Series) []float64 { _, mid, _ := bbands(s.Closes()); return mid },
		"boll_ub": func(s marketdata.Series) []float64 { ub, _, _ := bbands(s.Closes()); return ub },
		"boll_lb": func(s marketdata.Series) []float64 { _, _, lb := bbands(s.Closes()); return lb },

		// Volatility
		"atr":        func(s marketdata.Series) []float64 { return atr(s, 14) },
		"volatility": func(s marketdata.Series) []float64 { return rollingVolatility(s.Closes(), 20) },

		// Volume
		"vwma": func(s marketdata.Series) []float64 { return vwma(s, 20) },
	}
	return e
}

// Compute calculates the named indicator column for the series.
func (e *TalibEngine) Compute(series marketdata.Series, name string) ([]float64, error) {
	fn, ok := e.registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIndicator, name)
	}
	return fn(series), nil
}

// Supported returns the registered indicator names, sorted.
func (e *TalibEngine) Supported() []string {
	names := make([]string, 0, len(e.registry))
	for name := range e.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Wrappers around go-talib with short-input guards: talib assumes at least one
// full period of data.

func sma(closes []float64, period int) []float64 {
	if len(closes) < period {
		return make([]float64, len(closes))
	}
	return talib.Sma(closes, period)
}

func ema(closes []float64, period int) []float64 {
	if len(closes) < period {
		return make([]float64, len(closes))
	}
	return talib.Ema(closes, period)
}

func rsi(closes []float64, period int) []float64 {
	if len(closes) < period+1 {
		return make([]float64, len(closes))
	}
	return talib.Rsi(closes, period)
}

func macd(closes []float64) ([]float64, []float64, []float64) {
	// Standard 12/26/9 parameters; the signal line needs a full slow+signal
	// window before any value is defined.
	if len(closes) < 26+9 {
		zeros := make([]float64, len(closes))
		return zeros, zeros, zeros
	}
	return talib.Macd(closes, 12, 26, 9)
}

func bbands(closes []float64) ([]float64, []float64, []float64) {
	if len(closes) < 20 {
		zeros := make([]float64, len(closes))
		return zeros, zeros, zeros
	}
	return talib.BBands(closes, 20, 2, 2, talib.SMA)
}

func atr(s marketdata.Series, period int) []float64 {
	if len(s) < period+1 {
		return make([]float64, len(s))
	}
	return talib.Atr(s.Highs(), s.Lows(), s.Closes(), period)
}

func mfi(s marketdata.Series, period int) []float64 {
	if len(s) < period+1 {
		return make([]float64, len(s))
	}
	return talib.Mfi(s.Highs(), s.Lows(), s.Closes(), s.Volumes(), period)
}

// vwma is a volume-weighted moving average; go-talib has no native one.
func vwma(s marketdata.Series, period int) []float64 {
	out := make([]float64, len(s))
	for i := period - 1; i < len(s); i++ {
		var pv, v float64
		for j := i - period + 1; j <= i; j++ {
			pv += s[j].Close * float64(s[j].Volume)
			v += float64(s[j].Volume)
		}
		if v != 0 {
			out[i] = pv / v
		}
	}
	return out
}

// rollingVolatility is the annualized standard deviation of daily returns
// over a trailing window.
func rollingVolatility(closes []float64, window int) []float64 {
	out := make([]float64, len(closes))
	returns := formulas.CalculateReturns(closes)
	for i := window; i < len(closes); i++ {
		out[i] = formulas.AnnualizedVolatility(returns[i-window : i])
	}
	return out
}
