package news

import (
	"context"
	"errors"
	"testing"

	"stock-advisor/internal/types"
)

type fakeProvider struct {
	name     string
	articles []types.NewsArticle
	err      error
	calls    int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Fetch(ctx context.Context, query string, limit int) ([]types.NewsArticle, error) {
	f.calls++
	return f.articles, f.err
}

func TestServiceUsesPrimary(t *testing.T) {
	primary := &fakeProvider{name: "primary", articles: articles("p1", "p2")}
	fallback := &fakeProvider{name: "fallback", articles: articles("f1")}

	got, err := NewService(primary, fallback).Headlines(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "p1" {
		t.Errorf("expected primary headlines, got %v", got)
	}
	if fallback.calls != 0 {
		t.Error("fallback should not be called when primary has headlines")
	}
}

func TestServiceFallsBackOnEmpty(t *testing.T) {
	primary := &fakeProvider{name: "primary", articles: articles("[Removed]")}
	fallback := &fakeProvider{name: "fallback", articles: articles("f1")}

	got, err := NewService(primary, fallback).Headlines(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "f1" {
		t.Errorf("expected fallback headlines, got %v", got)
	}
}

func TestServiceFallsBackOnError(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("boom")}
	fallback := &fakeProvider{name: "fallback", articles: articles("f1", "f2", "f3", "f4")}

	got, err := NewService(primary, fallback).Headlines(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 headlines, got %d", len(got))
	}
}

func TestServiceBothFail(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("primary down")}
	fallback := &fakeProvider{name: "fallback", err: errors.New("fallback down")}

	got, err := NewService(primary, fallback).Headlines(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected error when both providers fail")
	}
	if len(got) != 0 {
		t.Errorf("expected empty set, got %v", got)
	}
}

func TestServiceNoFallbackEmpty(t *testing.T) {
	primary := &fakeProvider{name: "primary"}
	got, err := NewService(primary, nil).Headlines(context.Background(), "AAPL")
	if err != nil || len(got) != 0 {
		t.Errorf("expected empty set and nil error, got %v %v", got, err)
	}
}
