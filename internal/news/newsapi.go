package news

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"stock-advisor/internal/api"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/types"
)

const NewsAPIBaseURL = "https://newsapi.org"

// NewsAPI queries newsapi.org /v2/everything sorted by publish time.
type NewsAPI struct {
	client       *api.Client
	apiKey       string
	language     string
	lookbackDays int
	now          func() time.Time
}

var _ interfaces.NewsProvider = (*NewsAPI)(nil)

func NewNewsAPI(apiKey, language string, lookbackDays int, opts ...api.ClientOption) *NewsAPI {
	base := []api.ClientOption{
		api.WithBaseURL(NewsAPIBaseURL),
		api.WithTimeout(15 * time.Second),
		api.WithHeader("User-Agent", "stock-advisor/1.0"),
		api.WithLogging(true),
	}
	return &NewsAPI{
		client:       api.NewClient(append(base, opts...)...),
		apiKey:       apiKey,
		language:     language,
		lookbackDays: lookbackDays,
		now:          time.Now,
	}
}

func (n *NewsAPI) Name() string { return "newsapi" }

type everythingResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

func (n *NewsAPI) Fetch(ctx context.Context, query string, limit int) ([]types.NewsArticle, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("sortBy", "publishedAt")
	q.Set("language", n.language)
	q.Set("pageSize", strconv.Itoa(limit))
	if n.lookbackDays > 0 {
		q.Set("from", n.now().AddDate(0, 0, -n.lookbackDays).Format("2006-01-02"))
	}
	q.Set("apiKey", n.apiKey)

	resp, err := n.client.GET(ctx, "/v2/everything", q)
	if err != nil {
		return nil, fmt.Errorf("newsapi %q: %w", query, err)
	}

	var body everythingResponse
	if err := resp.ParseJSON(&body); err != nil {
		return nil, fmt.Errorf("newsapi %q: %w", query, err)
	}
	if body.Status != "ok" {
		return nil, fmt.Errorf("newsapi %q: %s: %s", query, body.Code, body.Message)
	}

	out := make([]types.NewsArticle, 0, len(body.Articles))
	for _, a := range body.Articles {
		out = append(out, types.NewsArticle{
			Title:       a.Title,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
