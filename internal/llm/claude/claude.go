package claude

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/llm"
	"stock-advisor/internal/trace"
	"stock-advisor/internal/types"
)

type Params struct {
	APIKey     string
	Model      string
	MaxTokens  int
	MaxRetries int
	BaseURL    string
	Timeout    time.Duration
}

// Completion asks Claude for a recommendation with a single Messages call.
type Completion struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

var _ interfaces.Advisor = (*Completion)(nil)

func New(p Params) *Completion {
	opts := []option.RequestOption{
		option.WithAPIKey(p.APIKey),
		option.WithMaxRetries(p.MaxRetries),
	}
	if p.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(p.BaseURL))
	}
	if p.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(p.Timeout))
	}
	maxTokens := int64(p.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	client := anthropic.NewClient(opts...)
	return &Completion{
		client:    &client,
		model:     anthropic.Model(p.Model),
		maxTokens: maxTokens,
	}
}

func (c *Completion) Recommend(ctx context.Context, prompt types.Prompt) (types.Recommendation, error) {
	ctx, span := trace.StartSpan(ctx, "claude-api-call")
	defer span.End()

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.String())),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return types.Recommendation{}, fmt.Errorf("anthropic API error: %w: %v", types.ErrRateLimited, err)
		}
		return types.Recommendation{}, fmt.Errorf("anthropic API error: %w", err)
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return types.Recommendation{}, fmt.Errorf("no response from anthropic: %w", types.ErrNoData)
	}

	text := strings.TrimSpace(strings.Join(parts, "\n"))
	return types.Recommendation{
		Text:   text,
		Action: llm.ParseAction(text),
		Model:  string(resp.Model),
		JobID:  resp.ID,
		Status: types.JobCompleted,
	}, nil
}
