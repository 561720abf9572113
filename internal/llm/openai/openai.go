package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

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

// Completion sends the prompt as the only user message of a single chat completion.
type Completion struct {
	client    *openai.Client
	model     openai.ChatModel
	maxTokens int
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
	client := openai.NewClient(opts...)
	return &Completion{
		client:    &client,
		model:     openai.ChatModel(p.Model),
		maxTokens: p.MaxTokens,
	}
}

func (c *Completion) Recommend(ctx context.Context, prompt types.Prompt) (types.Recommendation, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt.String()),
		},
	}
	if c.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(c.maxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return types.Recommendation{}, fmt.Errorf("openai API error: %w: %v", types.ErrRateLimited, err)
		}
		return types.Recommendation{}, fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return types.Recommendation{}, fmt.Errorf("no response from openai: %w", types.ErrNoData)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	return types.Recommendation{
		Text:   text,
		Action: llm.ParseAction(text),
		Model:  resp.Model,
		JobID:  resp.ID,
		Status: types.JobCompleted,
	}, nil
}
