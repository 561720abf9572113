package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"stock-advisor/internal/api"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

const GoogleNewsBaseURL = "https://news.google.com"

// GoogleNews scrapes the Google News RSS search feed. It needs no key and is the fallback
// when the configured provider has nothing.
type GoogleNews struct {
	baseURL  string
	language string
	region   string
	timeout  time.Duration
}

var _ interfaces.NewsProvider = (*GoogleNews)(nil)

func NewGoogleNews(language, region string, timeout time.Duration) *GoogleNews {
	return &GoogleNews{
		baseURL:  GoogleNewsBaseURL,
		language: language,
		region:   region,
		timeout:  timeout,
	}
}

// WithBaseURL points the scraper at another host (tests).
func (g *GoogleNews) WithBaseURL(u string) *GoogleNews {
	g.baseURL = strings.TrimRight(u, "/")
	return g
}

func (g *GoogleNews) Name() string { return "googlenews" }

func (g *GoogleNews) searchURL(query string) string {
	q := url.Values{}
	q.Set("q", query+" stock")
	q.Set("hl", g.language+"-"+g.region)
	q.Set("gl", g.region)
	q.Set("ceid", g.region+":"+g.language)
	return g.baseURL + "/rss/search?" + q.Encode()
}

func (g *GoogleNews) Fetch(ctx context.Context, query string, limit int) ([]types.NewsArticle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	articles := []types.NewsArticle{}

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(g.baseURL)),
		colly.MaxDepth(1),
		colly.Async(false),
	)
	c.SetRequestTimeout(g.timeout)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		for k, v := range api.BrowserHeaders() {
			r.Headers.Set(k, v)
		}
	})

	// items are already newest first
	c.OnXML("//item", func(e *colly.XMLElement) {
		if len(articles) >= limit {
			return
		}
		title := strings.TrimSpace(e.ChildText("title"))
		if title == "" {
			return
		}
		a := types.NewsArticle{
			Title:  title,
			URL:    strings.TrimSpace(e.ChildText("link")),
			Source: strings.TrimSpace(e.ChildText("source")),
		}
		if ts, err := time.Parse(time.RFC1123, strings.TrimSpace(e.ChildText("pubDate"))); err == nil {
			a.PublishedAt = ts
		}
		articles = append(articles, a)
	})

	var scrapeErr error
	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = err
		logger.ErrorWithErr(ctx, "Google News scraping error", err, "url", r.Request.URL.Path, "status", r.StatusCode)
	})

	if err := c.Visit(g.searchURL(query)); err != nil {
		return nil, fmt.Errorf("failed to scrape Google News: %w", err)
	}
	c.Wait()

	if scrapeErr != nil && len(articles) == 0 {
		return nil, fmt.Errorf("failed to scrape Google News: %w", scrapeErr)
	}

	logger.Debug(ctx, "Google News scraping completed", "query", query, "articles", len(articles))
	return articles, nil
}

// getDomain extracts domain from URL
func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
