package alpaca

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/market"
	"stock-advisor/internal/store"
	"stock-advisor/internal/types"
)

type Params struct {
	APIKey    string
	APISecret string
	Feed      string // iex or sip
	BaseURL   string
}

// Provider builds snapshots from Alpaca daily bars plus the latest trade.
type Provider struct {
	md   *marketdata.Client
	feed string
}

var _ interfaces.SnapshotProvider = (*Provider)(nil)

func New(p Params) *Provider {
	return &Provider{
		md: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    p.APIKey,
			APISecret: p.APISecret,
			BaseURL:   p.BaseURL,
		}),
		feed: p.Feed,
	}
}

func (p *Provider) Name() string { return "alpaca" }

// Snapshot ignores ctx cancellation mid-request: the marketdata client has no context-aware calls.
func (p *Provider) Snapshot(ctx context.Context, ticker, lookback string) (types.Snapshot, error) {
	days, err := store.LookbackDays(lookback)
	if err != nil {
		return types.EmptySnapshot(ticker), err
	}
	if err := ctx.Err(); err != nil {
		return types.EmptySnapshot(ticker), err
	}

	end := time.Now()
	raw, err := p.md.GetBars(ticker, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     end.AddDate(0, 0, -market.FetchDays(days)),
		End:       end,
		Feed:      marketdata.Feed(p.feed),
	})
	if err != nil {
		return types.EmptySnapshot(ticker), fmt.Errorf("alpaca bars %s: %w", ticker, err)
	}

	bars := make([]market.Bar, 0, len(raw))
	for _, b := range raw {
		bars = append(bars, market.Bar{
			Time:   b.Timestamp,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		})
	}
	snap := market.BuildSnapshot(ticker, p.Name(), bars, days)

	if trade, err := p.md.GetLatestTrade(ticker, marketdata.GetLatestTradeRequest{Feed: marketdata.Feed(p.feed)}); err == nil && trade != nil && trade.Price > 0 {
		snap.Price = types.Known(trade.Price)
	}

	if !snap.Price.IsKnown() {
		return snap, fmt.Errorf("alpaca %s: %w", ticker, types.ErrNoData)
	}
	return snap, nil
}
