// Package assistant runs a prompt as a threaded assistant job: create a thread, post the
// prompt, start a run, poll it to a terminal state and read the newest assistant reply.
package assistant

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stock-advisor/internal/api"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/llm"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

const DefaultBaseURL = "https://api.openai.com/v1"

// cancelTimeout bounds the best-effort remote cancel issued after a timeout or cancellation
const cancelTimeout = 5 * time.Second

type Params struct {
	APIKey      string
	AssistantID string
	BaseURL     string
	Timeout     time.Duration // per HTTP call
	Poll        PollPolicy
}

// Runner implements interfaces.Advisor against the Assistants REST protocol.
type Runner struct {
	client      *api.Client
	assistantID string
	poll        PollPolicy
}

var _ interfaces.Advisor = (*Runner)(nil)

func New(p Params) *Runner {
	base := p.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Runner{
		client: api.NewClient(
			api.WithBaseURL(strings.TrimRight(base, "/")),
			api.WithTimeout(timeout),
			api.WithHeader("Authorization", "Bearer "+p.APIKey),
			api.WithHeader("OpenAI-Beta", "assistants=v2"),
			api.WithLogging(true),
		),
		assistantID: p.AssistantID,
		poll:        p.Poll.withDefaults(),
	}
}

type threadObject struct {
	ID string `json:"id"`
}

type runObject struct {
	ID        string `json:"id"`
	ThreadID  string `json:"thread_id"`
	Status    string `json:"status"`
	Model     string `json:"model"`
	LastError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"last_error"`
}

type messageList struct {
	Data []struct {
		ID        string `json:"id"`
		Role      string `json:"role"`
		RunID     string `json:"run_id"`
		CreatedAt int64  `json:"created_at"`
		Content   []struct {
			Type string `json:"type"`
			Text struct {
				Value string `json:"value"`
			} `json:"text"`
		} `json:"content"`
	} `json:"data"`
}

// MapStatus normalizes a remote run status onto JobStatus. Statuses that need caller
// input (requires_action) or stopped short (incomplete) count as failed.
func MapStatus(remote string) types.JobStatus {
	switch remote {
	case "queued":
		return types.JobQueued
	case "in_progress", "cancelling":
		return types.JobRunning
	case "completed":
		return types.JobCompleted
	case "cancelled":
		return types.JobCancelled
	case "expired":
		return types.JobExpired
	default:
		return types.JobFailed
	}
}

// classify turns an HTTP 429 into ErrRateLimited and wraps everything else with op.
func classify(op string, err error) error {
	if api.IsStatus(err, http.StatusTooManyRequests) {
		return fmt.Errorf("%s: %w: %v", op, types.ErrRateLimited, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *Runner) post(ctx context.Context, path string, body, out any) error {
	resp, err := r.client.POST(ctx, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.ParseJSON(out)
}

func (r *Runner) get(ctx context.Context, path string, q url.Values, out any) error {
	resp, err := r.client.GET(ctx, path, q)
	if err != nil {
		return err
	}
	return resp.ParseJSON(out)
}

// Recommend registers a job for prompt and blocks until it is terminal, the poll policy's
// max wait elapses (ErrJobTimeout) or ctx is done.
func (r *Runner) Recommend(ctx context.Context, prompt types.Prompt) (types.Recommendation, error) {
	job, model, err := r.create(ctx, prompt)
	if err != nil {
		return types.Recommendation{}, err
	}

	job, err = r.wait(ctx, job)
	if err != nil {
		return types.Recommendation{JobID: job.ID, Status: job.Status}, err
	}

	if job.Status != types.JobCompleted {
		return types.FailedRecommendation(job), nil
	}

	text, err := r.latestReply(ctx, job)
	if err != nil {
		return types.Recommendation{JobID: job.ID, Status: job.Status}, err
	}
	return types.Recommendation{
		Text:   text,
		Action: llm.ParseAction(text),
		Model:  model,
		JobID:  job.ID,
		Status: job.Status,
	}, nil
}

// create opens a thread, attaches prompt as its only user message and starts a run.
func (r *Runner) create(ctx context.Context, prompt types.Prompt) (types.Job, string, error) {
	var thread threadObject
	if err := r.post(ctx, "/threads", map[string]any{}, &thread); err != nil {
		return types.Job{}, "", classify("create thread", err)
	}

	msg := map[string]any{"role": "user", "content": prompt.String()}
	if err := r.post(ctx, "/threads/"+thread.ID+"/messages", msg, nil); err != nil {
		return types.Job{}, "", classify("add message", err)
	}

	var run runObject
	if err := r.post(ctx, "/threads/"+thread.ID+"/runs", map[string]any{"assistant_id": r.assistantID}, &run); err != nil {
		return types.Job{}, "", classify("start run", err)
	}

	job := types.Job{ID: run.ID, ThreadID: thread.ID, Status: MapStatus(run.Status)}
	logger.JobTransition(ctx, job.ID, "", string(job.Status), "thread_id", job.ThreadID)
	return job, run.Model, nil
}

// wait polls the run until it is terminal.
func (r *Runner) wait(ctx context.Context, job types.Job) (types.Job, error) {
	deadline := time.NewTimer(r.poll.MaxWait)
	defer deadline.Stop()

	interval := r.poll.Interval
	pollErrors := 0

	for !job.Status.Terminal() {
		wait := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			wait.Stop()
			r.cancel(job)
			return job, ctx.Err()
		case <-deadline.C:
			wait.Stop()
			r.cancel(job)
			return job, fmt.Errorf("run %s still %s after %s: %w", job.ID, job.Status, r.poll.MaxWait, types.ErrJobTimeout)
		case <-wait.C:
		}
		interval = r.poll.next(interval)

		var run runObject
		if err := r.get(ctx, "/threads/"+job.ThreadID+"/runs/"+job.ID, nil, &run); err != nil {
			if api.IsStatus(err, http.StatusTooManyRequests) {
				r.cancel(job)
				return job, classify("poll run", err)
			}
			if ctx.Err() != nil {
				r.cancel(job)
				return job, ctx.Err()
			}
			pollErrors++
			logger.Warn(ctx, "Run poll failed", "job_id", job.ID, "attempt", pollErrors, "error", err)
			if pollErrors > r.poll.MaxPollErrors {
				r.cancel(job)
				return job, classify("poll run", err)
			}
			continue
		}
		pollErrors = 0

		next := MapStatus(run.Status)
		if next != job.Status {
			fields := []any{"thread_id", job.ThreadID, "remote_status", run.Status}
			if run.LastError != nil {
				fields = append(fields, "error_code", run.LastError.Code, "error_message", run.LastError.Message)
			}
			logger.JobTransition(ctx, job.ID, string(job.Status), string(next), fields...)
			job.Status = next
		}
	}
	return job, nil
}

// latestReply returns the text of the newest assistant message produced by job.
func (r *Runner) latestReply(ctx context.Context, job types.Job) (string, error) {
	q := url.Values{}
	q.Set("order", "desc")
	q.Set("limit", "20")
	q.Set("run_id", job.ID)

	var list messageList
	if err := r.get(ctx, "/threads/"+job.ThreadID+"/messages", q, &list); err != nil {
		return "", classify("list messages", err)
	}

	best := -1
	for i, m := range list.Data {
		if m.Role != "assistant" || (m.RunID != "" && m.RunID != job.ID) {
			continue
		}
		if best < 0 || m.CreatedAt > list.Data[best].CreatedAt {
			best = i
		}
	}
	if best < 0 {
		return "", fmt.Errorf("run %s completed without an assistant reply: %w", job.ID, types.ErrNoData)
	}

	var parts []string
	for _, c := range list.Data[best].Content {
		if c.Type == "text" && c.Text.Value != "" {
			parts = append(parts, c.Text.Value)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("run %s reply has no text: %w", job.ID, types.ErrNoData)
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

// cancel asks the service to stop the run. It is best effort: the caller has already given up.
func (r *Runner) cancel(job types.Job) {
	if job.ID == "" || job.Status.Terminal() {
		return
	}
	ctx, done := context.WithTimeout(context.Background(), cancelTimeout)
	defer done()

	err := r.post(ctx, "/threads/"+job.ThreadID+"/runs/"+job.ID+"/cancel", map[string]any{}, nil)
	if err != nil {
		logger.Warn(ctx, "Run cancel failed", "job_id", job.ID, "error", err)
		return
	}
	logger.JobTransition(ctx, job.ID, string(job.Status), "cancelling")
}
