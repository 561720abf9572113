package engine

import (
	"stock-advisor/internal/ta"
	"stock-advisor/internal/types"
)

const (
	shortMA = 7
	longMA  = 30
)

// BuildChart lines up the close series with its 7- and 30-period moving averages.
// Returns nil when there is nothing to plot.
func BuildChart(snap types.Snapshot) *types.Chart {
	if len(snap.Closes) == 0 {
		return nil
	}
	closes := snap.CloseValues()
	ma7 := ta.MovingAverage(closes, shortMA)
	ma30 := ta.MovingAverage(closes, longMA)

	points := make([]types.ChartPoint, len(closes))
	for i, p := range snap.Closes {
		points[i] = types.ChartPoint{Time: p.Time, Close: p.Close, MA7: ma7[i], MA30: ma30[i]}
	}
	return &types.Chart{Points: points}
}
