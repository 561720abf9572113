package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"stock-advisor/internal/api"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/market"
	"stock-advisor/internal/store"
	"stock-advisor/internal/types"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Provider reads daily bars and quote metadata from the Yahoo v8 chart endpoint.
type Provider struct {
	client *api.Client
	retry  *api.RetryConfig
}

var _ interfaces.SnapshotProvider = (*Provider)(nil)

// New builds a provider. Options override the base URL or timeout (tests use an httptest server).
func New(opts ...api.ClientOption) *Provider {
	base := []api.ClientOption{
		api.WithBaseURL(DefaultBaseURL),
		api.WithTimeout(15 * time.Second),
		api.WithHeaders(api.YahooFinanceHeaders()),
		api.WithLogging(true),
	}
	return &Provider{
		client: api.NewClient(append(base, opts...)...),
		retry:  &api.RetryConfig{MaxAttempts: 2, InitialWait: 500 * time.Millisecond, MaxWait: time.Second},
	}
}

func (p *Provider) Name() string { return "yahoo" }

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol              string   `json:"symbol"`
				RegularMarketPrice  *float64 `json:"regularMarketPrice"`
				RegularMarketVolume *float64 `json:"regularMarketVolume"`
				FiftyTwoWeekHigh    *float64 `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow     *float64 `json:"fiftyTwoWeekLow"`
				MarketCap           *float64 `json:"marketCap"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooRange maps a day count onto the closest range the chart API accepts.
func yahooRange(days int) string {
	switch {
	case days <= 5:
		return "5d"
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	case days <= 730:
		return "2y"
	default:
		return "5y"
	}
}

func at(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}

func override(dst *types.Value, v *float64) {
	if v != nil && *v > 0 {
		*dst = types.Known(*v)
	}
}

func (p *Provider) Snapshot(ctx context.Context, ticker, lookback string) (types.Snapshot, error) {
	days, err := store.LookbackDays(lookback)
	if err != nil {
		return types.EmptySnapshot(ticker), err
	}

	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("range", yahooRange(market.FetchDays(days)))

	req := api.NewRequest("GET", "/v8/finance/chart/"+url.PathEscape(ticker)).
		WithContext(ctx).
		WithQuery(q)
	resp, err := p.client.DoWithRetry(req, p.retry)
	if err != nil {
		return types.EmptySnapshot(ticker), fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}

	var chart chartResponse
	if err := resp.ParseJSON(&chart); err != nil {
		return types.EmptySnapshot(ticker), fmt.Errorf("yahoo chart %s: %w", ticker, err)
	}
	if chart.Chart.Error != nil {
		return types.EmptySnapshot(ticker), fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return types.EmptySnapshot(ticker), fmt.Errorf("yahoo chart %s: %w", ticker, types.ErrNoData)
	}

	result := chart.Chart.Result[0]
	var bars []market.Bar
	if len(result.Indicators.Quote) > 0 {
		quote := result.Indicators.Quote[0]
		bars = make([]market.Bar, 0, len(result.Timestamp))
		for i, ts := range result.Timestamp {
			// null closes are holidays or halted sessions
			if at(quote.Close, i) == 0 {
				continue
			}
			bars = append(bars, market.Bar{
				Time:   time.Unix(ts, 0).UTC(),
				High:   at(quote.High, i),
				Low:    at(quote.Low, i),
				Close:  at(quote.Close, i),
				Volume: at(quote.Volume, i),
			})
		}
	}

	snap := market.BuildSnapshot(ticker, p.Name(), bars, days)
	meta := result.Meta
	override(&snap.Price, meta.RegularMarketPrice)
	override(&snap.Volume, meta.RegularMarketVolume)
	override(&snap.High52w, meta.FiftyTwoWeekHigh)
	override(&snap.Low52w, meta.FiftyTwoWeekLow)
	override(&snap.MarketCap, meta.MarketCap)

	if !snap.Price.IsKnown() && len(snap.Closes) == 0 {
		return snap, fmt.Errorf("yahoo chart %s: %w", ticker, types.ErrNoData)
	}
	return snap, nil
}
