package finnhub

import (
	"context"
	"fmt"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/market"
	"stock-advisor/internal/store"
	"stock-advisor/internal/types"
)

// Provider combines Finnhub quote, profile, metric and candle endpoints into one snapshot.
// Only the quote is required; the rest degrade to unknown.
type Provider struct {
	client *finnhub.DefaultApiService
}

var _ interfaces.SnapshotProvider = (*Provider)(nil)

func New(apiKey string) *Provider {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	return &Provider{client: finnhub.NewAPIClient(cfg).DefaultApi}
}

func (p *Provider) Name() string { return "finnhub" }

func metric(m map[string]interface{}, key string) types.Value {
	if v, ok := m[key].(float64); ok && v > 0 {
		return types.Known(v)
	}
	return types.Unknown()
}

func (p *Provider) Snapshot(ctx context.Context, ticker, lookback string) (types.Snapshot, error) {
	days, err := store.LookbackDays(lookback)
	if err != nil {
		return types.EmptySnapshot(ticker), err
	}

	quote, _, err := p.client.Quote(ctx).Symbol(ticker).Execute()
	if err != nil {
		return types.EmptySnapshot(ticker), fmt.Errorf("finnhub quote %s: %w", ticker, err)
	}
	if quote.GetC() == 0 {
		return types.EmptySnapshot(ticker), fmt.Errorf("finnhub quote %s: %w", ticker, types.ErrNoData)
	}

	to := time.Now()
	from := to.AddDate(0, 0, -market.FetchDays(days))
	var bars []market.Bar
	candles, _, err := p.client.StockCandles(ctx).Symbol(ticker).Resolution("D").From(from.Unix()).To(to.Unix()).Execute()
	if err != nil {
		// candles need a paid plan; the quote alone still makes a usable snapshot
		logger.Warn(ctx, "Finnhub candles unavailable", "ticker", ticker, "error", err)
	} else if candles.GetS() == "ok" {
		ts, c, h, l, v := candles.GetT(), candles.GetC(), candles.GetH(), candles.GetL(), candles.GetV()
		for i := range ts {
			if i >= len(c) {
				break
			}
			b := market.Bar{Time: time.Unix(ts[i], 0).UTC(), Close: float64(c[i])}
			if i < len(h) {
				b.High = float64(h[i])
			}
			if i < len(l) {
				b.Low = float64(l[i])
			}
			if i < len(v) {
				b.Volume = float64(v[i])
			}
			bars = append(bars, b)
		}
	}

	snap := market.BuildSnapshot(ticker, p.Name(), bars, days)
	snap.Price = types.Known(float64(quote.GetC()))

	if fin, _, err := p.client.CompanyBasicFinancials(ctx).Symbol(ticker).Metric("all").Execute(); err != nil {
		logger.Warn(ctx, "Finnhub basic financials unavailable", "ticker", ticker, "error", err)
	} else {
		m := fin.GetMetric()
		if v := metric(m, "52WeekHigh"); v.IsKnown() {
			snap.High52w = v
		}
		if v := metric(m, "52WeekLow"); v.IsKnown() {
			snap.Low52w = v
		}
	}

	if profile, _, err := p.client.CompanyProfile2(ctx).Symbol(ticker).Execute(); err != nil {
		logger.Warn(ctx, "Finnhub profile unavailable", "ticker", ticker, "error", err)
	} else if mc := profile.GetMarketCapitalization(); mc > 0 {
		// reported in millions
		snap.MarketCap = types.Known(float64(mc) * 1e6)
	}

	return snap, nil
}
