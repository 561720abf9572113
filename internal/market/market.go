// Package market turns provider bars into a types.Snapshot.
package market

import (
	"sort"
	"time"

	"stock-advisor/internal/ta"
	"stock-advisor/internal/types"
)

// HistoryDays is how far back providers fetch so the 52-week range can be derived from bars.
const HistoryDays = 365

// coverage slack for weekends and holidays at the start of a one-year window
const yearSlack = 10 * 24 * time.Hour

// Bar is one daily candle as returned by any provider. Zero fields are treated as missing.
type Bar struct {
	Time   time.Time
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// FetchDays is the number of calendar days a provider should request for a lookback window.
func FetchDays(lookbackDays int) int {
	if lookbackDays > HistoryDays {
		return lookbackDays
	}
	return HistoryDays
}

// BuildSnapshot derives price, volume and the 52-week range from bars and keeps the closes
// that fall inside the lookback window. Anything the bars cannot support stays unknown.
func BuildSnapshot(ticker, source string, bars []Bar, lookbackDays int) types.Snapshot {
	snap := types.EmptySnapshot(ticker)
	snap.Source = source

	clean := make([]Bar, 0, len(bars))
	for _, b := range bars {
		if b.Close > 0 && !b.Time.IsZero() {
			clean = append(clean, b)
		}
	}
	if len(clean) == 0 {
		return snap
	}
	sort.Slice(clean, func(i, j int) bool { return clean[i].Time.Before(clean[j].Time) })

	last := clean[len(clean)-1]
	snap.Price = types.Known(last.Close)
	snap.Volume = types.KnownIf(last.Volume, last.Volume > 0)

	yearAgo := last.Time.AddDate(-1, 0, 0)
	if !clean[0].Time.After(yearAgo.Add(yearSlack)) {
		var highs, lows []float64
		for _, b := range clean {
			if b.Time.Before(yearAgo) {
				continue
			}
			highs = append(highs, pick(b.High, b.Close))
			lows = append(lows, pick(b.Low, b.Close))
		}
		if hi, _, ok := ta.Extremes(highs); ok {
			snap.High52w = types.Known(hi)
		}
		if _, lo, ok := ta.Extremes(lows); ok {
			snap.Low52w = types.Known(lo)
		}
	}

	from := last.Time.AddDate(0, 0, -lookbackDays)
	for _, b := range clean {
		if b.Time.After(from) {
			snap.Closes = append(snap.Closes, types.PricePoint{Time: b.Time, Close: b.Close})
		}
	}
	return snap
}

func pick(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}
