package news

import (
	"context"
	"fmt"
	"sort"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

// FinnHub reads company news for a ticker.
type FinnHub struct {
	client       *finnhub.DefaultApiService
	lookbackDays int
}

var _ interfaces.NewsProvider = (*FinnHub)(nil)

func NewFinnHub(apiKey string, lookbackDays int) *FinnHub {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return &FinnHub{client: client, lookbackDays: lookbackDays}
}

func (c *FinnHub) Name() string { return "finnhub" }

func (c *FinnHub) Fetch(ctx context.Context, query string, limit int) ([]types.NewsArticle, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -c.lookbackDays)
	res, _, err := c.client.CompanyNews(ctx).
		Symbol(query).
		From(from.Format("2006-01-02")).
		To(to.Format("2006-01-02")).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub company news %s: %w", query, err)
	}

	articles := make([]types.NewsArticle, 0, len(res))
	for _, news := range res {
		a := types.NewsArticle{Source: c.Name()}
		if news.Headline != nil {
			a.Title = *news.Headline
		}
		if news.Url != nil {
			a.URL = *news.Url
		}
		if news.Source != nil {
			a.Source = *news.Source
		}
		if news.Datetime != nil {
			a.PublishedAt = time.Unix(*news.Datetime, 0)
		}
		articles = append(articles, a)
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	if len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}
