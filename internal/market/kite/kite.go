// Package kite reads NSE/BSE snapshots through the Zerodha Kite Connect API.
package kite

import (
	"context"
	"fmt"
	"strings"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/market"
	"stock-advisor/internal/store"
	"stock-advisor/internal/types"
)

type Params struct {
	APIKey      string
	AccessToken string
	Exchange    string // NSE or BSE
}

type Provider struct {
	kc       *kiteconnect.Client
	exchange string
}

var _ interfaces.SnapshotProvider = (*Provider)(nil)

func New(p Params) *Provider {
	kc := kiteconnect.New(p.APIKey)
	kc.SetAccessToken(p.AccessToken)
	return &Provider{kc: kc, exchange: p.Exchange}
}

func (p *Provider) Name() string { return "kite" }

// instrument qualifies a bare symbol with the configured exchange ("INFY" -> "NSE:INFY").
func (p *Provider) instrument(ticker string) string {
	if strings.Contains(ticker, ":") {
		return ticker
	}
	return p.exchange + ":" + ticker
}

func (p *Provider) Snapshot(ctx context.Context, ticker, lookback string) (types.Snapshot, error) {
	days, err := store.LookbackDays(lookback)
	if err != nil {
		return types.EmptySnapshot(ticker), err
	}
	if err := ctx.Err(); err != nil {
		return types.EmptySnapshot(ticker), err
	}

	inst := p.instrument(ticker)
	quotes, err := p.kc.GetQuote(inst)
	if err != nil {
		return types.EmptySnapshot(ticker), fmt.Errorf("kite quote %s: %w", inst, err)
	}
	q, ok := quotes[inst]
	if !ok || q.InstrumentToken == 0 {
		return types.EmptySnapshot(ticker), fmt.Errorf("kite quote %s: %w", inst, types.ErrNoData)
	}

	to := time.Now()
	from := to.AddDate(0, 0, -market.FetchDays(days))
	hist, err := p.kc.GetHistoricalData(q.InstrumentToken, "day", from, to, false, false)
	if err != nil {
		return types.EmptySnapshot(ticker), fmt.Errorf("kite history %s: %w", inst, err)
	}

	bars := make([]market.Bar, 0, len(hist))
	for _, h := range hist {
		bars = append(bars, market.Bar{
			Time:   h.Date.Time,
			High:   h.High,
			Low:    h.Low,
			Close:  h.Close,
			Volume: float64(h.Volume),
		})
	}

	snap := market.BuildSnapshot(ticker, p.Name(), bars, days)
	if q.LastPrice > 0 {
		snap.Price = types.Known(q.LastPrice)
	}
	if q.Volume > 0 {
		snap.Volume = types.Known(float64(q.Volume))
	}
	return snap, nil
}
