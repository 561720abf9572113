package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"

	"stock-advisor/internal/types"
)

func newTestCompletion(t *testing.T, h http.HandlerFunc) *Completion {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Params{APIKey: "sk-test", Model: "gpt-4", BaseURL: srv.URL + "/", MaxRetries: 0})
}

func TestRecommend(t *testing.T) {
	var body struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	c := newTestCompletion(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-1","object":"chat.completion","created":1700000000,"model":"gpt-4-0613",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  Neutral outlook. HOLD.  "}}]}`))
	})

	rec, err := c.Recommend(context.Background(), types.Prompt("Should I buy?"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assert.Equal(t, body.Model, "gpt-4")
	assert.Equal(t, len(body.Messages), 1)
	assert.Equal(t, body.Messages[0].Role, "user")
	assert.Equal(t, body.Messages[0].Content, "Should I buy?")
	assert.Equal(t, rec.Text, "Neutral outlook. HOLD.")
	assert.Equal(t, rec.Action, "HOLD")
	assert.Equal(t, rec.Model, "gpt-4-0613")
	assert.Equal(t, rec.Status, types.JobCompleted)
}

func TestRecommendRateLimited(t *testing.T) {
	c := newTestCompletion(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`))
	})

	_, err := c.Recommend(context.Background(), types.Prompt("p"))
	assert.Equal(t, errors.Is(err, types.ErrRateLimited), true)
}

func TestRecommendNoChoices(t *testing.T) {
	c := newTestCompletion(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-2","object":"chat.completion","created":1,"model":"gpt-4","choices":[]}`))
	})

	_, err := c.Recommend(context.Background(), types.Prompt("p"))
	assert.Equal(t, errors.Is(err, types.ErrNoData), true)
}

func TestRecommendServerError(t *testing.T) {
	c := newTestCompletion(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom"}}`))
	})

	_, err := c.Recommend(context.Background(), types.Prompt("p"))
	if err == nil {
		t.Fatal("expected error")
	}
	assert.Equal(t, errors.Is(err, types.ErrRateLimited), false)
}
