package news

import (
	"context"
	"errors"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

// fetchLimit over-fetches so removed or duplicate titles still leave MaxHeadlines usable ones
const fetchLimit = 10

// Service turns a ticker into a HeadlineSet. Nothing is cached: every analysis sees fresh news.
type Service struct {
	primary  interfaces.NewsProvider
	fallback interfaces.NewsProvider
}

var _ interfaces.HeadlineSource = (*Service)(nil)

// NewService creates a headline service. fallback may be nil.
func NewService(primary, fallback interfaces.NewsProvider) *Service {
	return &Service{primary: primary, fallback: fallback}
}

// Headlines returns up to three headlines for ticker. An empty set with a nil error
// means the providers answered but had nothing.
func (s *Service) Headlines(ctx context.Context, ticker string) (types.HeadlineSet, error) {
	ctx, span := trace.StartSpan(ctx, "news.Headlines")
	defer span.End()

	set, err := s.fetch(ctx, s.primary, ticker)
	if err == nil && len(set) > 0 {
		return set, nil
	}
	if err != nil {
		logger.ErrorWithErr(ctx, "Primary news provider failed", err, "provider", s.primary.Name(), "ticker", ticker)
	}

	if s.fallback == nil || s.fallback == s.primary {
		if err != nil {
			return types.HeadlineSet{}, err
		}
		return set, nil
	}

	logger.Info(ctx, "No headlines from primary source, trying fallback",
		"primary", s.primary.Name(), "fallback", s.fallback.Name(), "ticker", ticker)
	fbSet, fbErr := s.fetch(ctx, s.fallback, ticker)
	if fbErr != nil {
		logger.ErrorWithErr(ctx, "Fallback news provider failed", fbErr, "provider", s.fallback.Name(), "ticker", ticker)
		return types.HeadlineSet{}, errors.Join(err, fbErr)
	}
	return fbSet, nil
}

func (s *Service) fetch(ctx context.Context, p interfaces.NewsProvider, ticker string) (types.HeadlineSet, error) {
	articles, err := p.Fetch(ctx, ticker, fetchLimit)
	if err != nil {
		return types.HeadlineSet{}, err
	}
	set := Headlines(articles)
	logger.Debug(ctx, "Headlines fetched", "provider", p.Name(), "ticker", ticker, "articles", len(articles), "headlines", len(set))
	return set, nil
}
