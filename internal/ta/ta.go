package ta

import (
	"math"

	"stock-advisor/internal/types"
)

func SMA(closes []float64, n int) float64 {
	if len(closes) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(closes) - n; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(n)
}

// MovingAverage returns the trailing n-period SMA at every index of closes.
// Indexes with fewer than n points behind them are unknown.
func MovingAverage(closes []float64, n int) []types.Value {
	out := make([]types.Value, len(closes))
	if n <= 0 {
		return out
	}
	sum := 0.0
	for i, c := range closes {
		sum += c
		if i >= n {
			sum -= closes[i-n]
		}
		if i >= n-1 {
			out[i] = types.Known(sum / float64(n))
		}
	}
	return out
}

// Extremes returns the highest and lowest value in vals. ok is false for an empty slice.
func Extremes(vals []float64) (high, low float64, ok bool) {
	if len(vals) == 0 {
		return 0, 0, false
	}
	high, low = vals[0], vals[0]
	for _, v := range vals[1:] {
		high = math.Max(high, v)
		low = math.Min(low, v)
	}
	return high, low, true
}
