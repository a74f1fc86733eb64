package ta

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// PctChangeSeries returns the period-over-period fractional change of values.
// The first element, and any element with a zero or missing base, is NaN.
func PctChangeSeries(values []float64) []float64 {
	out := nanSeries(len(values))
	for i := 1; i < len(values); i++ {
		base := values[i-1]
		if base == 0 || math.IsNaN(base) || math.IsNaN(values[i]) {
			continue
		}
		out[i] = (values[i] - base) / base
	}
	return out
}

// RollingMeanSeries is the trailing arithmetic mean over window elements, inclusive of
// the current one. Positions without a full window of finite values are NaN.
func RollingMeanSeries(values []float64, window int) []float64 {
	return rolling(values, window, func(w []float64) float64 {
		return stat.Mean(w, nil)
	})
}

// RollingStdSeries is the trailing sample standard deviation (n-1 denominator).
func RollingStdSeries(values []float64, window int) []float64 {
	if window < 2 {
		return nanSeries(len(values))
	}
	return rolling(values, window, func(w []float64) float64 {
		return stat.StdDev(w, nil)
	})
}

func rolling(values []float64, window int, fn func([]float64) float64) []float64 {
	out := nanSeries(len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		w := values[i-window+1 : i+1]
		if anyNaN(w) {
			continue
		}
		out[i] = fn(w)
	}
	return out
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func anyNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
