package interfaces

import (
	"context"

	"stock-advisor/internal/types"
)

// NewsProvider returns articles for a free-text query, newest first.
type NewsProvider interface {
	Fetch(ctx context.Context, query string, limit int) ([]types.NewsArticle, error)
	Name() string
}

// HeadlineSource turns a ticker into the headline set the prompt embeds.
type HeadlineSource interface {
	Headlines(ctx context.Context, ticker string) (types.HeadlineSet, error)
}
