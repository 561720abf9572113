package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"stock-advisor/internal/types"
)

// fakeService plays the remote side: each poll pops the next status, the last one repeats.
type fakeService struct {
	mu        sync.Mutex
	statuses  []string
	polls     int
	messages  string
	cancelled bool
	prompt    string
	authHdr   string
	betaHdr   string
	// status code returned for every request on this path suffix, if set
	failPath string
	failCode int
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.authHdr = r.Header.Get("Authorization")
	f.betaHdr = r.Header.Get("OpenAI-Beta")
	w.Header().Set("Content-Type", "application/json")

	if f.failPath != "" && strings.HasSuffix(r.URL.Path, f.failPath) {
		w.WriteHeader(f.failCode)
		w.Write([]byte(`{"error":{"message":"nope"}}`))
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/threads":
		w.Write([]byte(`{"id":"thread_1","object":"thread"}`))
	case r.Method == http.MethodPost && r.URL.Path == "/threads/thread_1/messages":
		var body struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.prompt = body.Content
		w.Write([]byte(`{"id":"msg_user","role":"user"}`))
	case r.Method == http.MethodPost && r.URL.Path == "/threads/thread_1/runs":
		w.Write([]byte(`{"id":"run_1","thread_id":"thread_1","status":"queued","model":"gpt-4"}`))
	case r.Method == http.MethodGet && r.URL.Path == "/threads/thread_1/runs/run_1":
		i := f.polls
		if i >= len(f.statuses) {
			i = len(f.statuses) - 1
		}
		f.polls++
		json.NewEncoder(w).Encode(map[string]any{"id": "run_1", "thread_id": "thread_1", "status": f.statuses[i]})
	case r.Method == http.MethodPost && r.URL.Path == "/threads/thread_1/runs/run_1/cancel":
		f.cancelled = true
		w.Write([]byte(`{"id":"run_1","status":"cancelling"}`))
	case r.Method == http.MethodGet && r.URL.Path == "/threads/thread_1/messages":
		w.Write([]byte(f.messages))
	default:
		http.NotFound(w, r)
	}
}

const twoReplies = `{"object":"list","data":[
 {"id":"msg_old","role":"assistant","run_id":"run_1","created_at":100,"content":[{"type":"text","text":{"value":"HOLD for now."}}]},
 {"id":"msg_new","role":"assistant","run_id":"run_1","created_at":200,"content":[{"type":"text","text":{"value":"Sentiment is bullish. BUY."}}]},
 {"id":"msg_user","role":"user","run_id":"","created_at":50,"content":[{"type":"text","text":{"value":"prompt"}}]}
]}`

func fastPolicy() PollPolicy {
	return PollPolicy{
		Interval:      time.Millisecond,
		MaxInterval:   5 * time.Millisecond,
		Backoff:       2,
		MaxWait:       2 * time.Second,
		MaxPollErrors: 1,
	}
}

func newRunner(t *testing.T, f *fakeService, policy PollPolicy) *Runner {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return New(Params{APIKey: "sk-test", AssistantID: "asst_1", BaseURL: srv.URL, Poll: policy})
}

func TestRecommendCompletedReturnsNewestReply(t *testing.T) {
	f := &fakeService{statuses: []string{"queued", "in_progress", "completed"}, messages: twoReplies}
	r := newRunner(t, f, fastPolicy())

	rec, err := r.Recommend(context.Background(), types.Prompt("Should I BUY AAPL?"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Text != "Sentiment is bullish. BUY." {
		t.Errorf("expected newest assistant reply, got %q", rec.Text)
	}
	if rec.Action != "BUY" || rec.Failed || rec.Status != types.JobCompleted {
		t.Errorf("unexpected recommendation %+v", rec)
	}
	if rec.JobID != "run_1" || rec.Model != "gpt-4" {
		t.Errorf("expected job/model to be carried, got %+v", rec)
	}
	if f.prompt != "Should I BUY AAPL?" {
		t.Errorf("prompt not posted as the sole user message: %q", f.prompt)
	}
	if f.authHdr != "Bearer sk-test" || f.betaHdr != "assistants=v2" {
		t.Errorf("missing auth or beta header: %q %q", f.authHdr, f.betaHdr)
	}
	if f.polls != 3 {
		t.Errorf("expected 3 polls, got %d", f.polls)
	}
}

func TestRecommendTerminalFailures(t *testing.T) {
	for _, remote := range []string{"failed", "cancelled", "expired", "requires_action", "incomplete"} {
		t.Run(remote, func(t *testing.T) {
			f := &fakeService{statuses: []string{"in_progress", remote}, messages: twoReplies}
			r := newRunner(t, f, fastPolicy())

			rec, err := r.Recommend(context.Background(), types.Prompt("p"))
			if err != nil {
				t.Fatalf("terminal failure should not be an error, got %v", err)
			}
			if !rec.Failed || rec.Text != types.FailureMessage {
				t.Errorf("expected failure recommendation, got %+v", rec)
			}
			if rec.Status != MapStatus(remote) {
				t.Errorf("expected status %s, got %s", MapStatus(remote), rec.Status)
			}
			if f.cancelled {
				t.Error("a terminal job must not be cancelled")
			}
		})
	}
}

func TestRecommendTimeoutCancelsRun(t *testing.T) {
	f := &fakeService{statuses: []string{"in_progress"}}
	policy := fastPolicy()
	policy.MaxWait = 30 * time.Millisecond
	r := newRunner(t, f, policy)

	_, err := r.Recommend(context.Background(), types.Prompt("p"))
	if !errors.Is(err, types.ErrJobTimeout) {
		t.Fatalf("expected ErrJobTimeout, got %v", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.cancelled {
		t.Error("expected a remote cancel after timeout")
	}
}

func TestRecommendContextCancel(t *testing.T) {
	f := &fakeService{statuses: []string{"in_progress"}}
	policy := fastPolicy()
	policy.MaxWait = time.Minute
	r := newRunner(t, f, policy)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := r.Recommend(ctx, types.Prompt("p"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline, got %v", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.cancelled {
		t.Error("expected a remote cancel after context cancellation")
	}
}

func TestRecommendRateLimited(t *testing.T) {
	for _, path := range []string{"/threads", "/runs", "/runs/run_1"} {
		t.Run(path, func(t *testing.T) {
			f := &fakeService{statuses: []string{"completed"}, messages: twoReplies, failPath: path, failCode: http.StatusTooManyRequests}
			r := newRunner(t, f, fastPolicy())

			_, err := r.Recommend(context.Background(), types.Prompt("p"))
			if !errors.Is(err, types.ErrRateLimited) {
				t.Fatalf("expected ErrRateLimited, got %v", err)
			}
		})
	}
}

func TestRecommendPollErrorsExhausted(t *testing.T) {
	f := &fakeService{statuses: []string{"in_progress"}, failPath: "/runs/run_1", failCode: http.StatusInternalServerError}
	r := newRunner(t, f, fastPolicy())

	_, err := r.Recommend(context.Background(), types.Prompt("p"))
	if err == nil || errors.Is(err, types.ErrRateLimited) || errors.Is(err, types.ErrJobTimeout) {
		t.Fatalf("expected a plain poll error, got %v", err)
	}
}

func TestRecommendCompletedWithoutReply(t *testing.T) {
	f := &fakeService{statuses: []string{"completed"}, messages: `{"data":[]}`}
	r := newRunner(t, f, fastPolicy())

	_, err := r.Recommend(context.Background(), types.Prompt("p"))
	if !errors.Is(err, types.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestMapStatus(t *testing.T) {
	tests := map[string]types.JobStatus{
		"queued":          types.JobQueued,
		"in_progress":     types.JobRunning,
		"cancelling":      types.JobRunning,
		"completed":       types.JobCompleted,
		"failed":          types.JobFailed,
		"cancelled":       types.JobCancelled,
		"expired":         types.JobExpired,
		"requires_action": types.JobFailed,
		"incomplete":      types.JobFailed,
	}
	for remote, want := range tests {
		if got := MapStatus(remote); got != want {
			t.Errorf("MapStatus(%q) = %s, want %s", remote, got, want)
		}
	}
}

func TestPollPolicyBackoff(t *testing.T) {
	p := PollPolicy{Interval: time.Second, MaxInterval: 3 * time.Second, Backoff: 2, MaxWait: time.Minute}.withDefaults()
	d := p.Interval
	var got []time.Duration
	for i := 0; i < 4; i++ {
		d = p.next(d)
		got = append(got, d)
	}
	want := []time.Duration{2 * time.Second, 3 * time.Second, 3 * time.Second, 3 * time.Second}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("step %d: got %s want %s", i, got[i], want[i])
		}
	}
}

func TestPollPolicyDefaults(t *testing.T) {
	p := PollPolicy{}.withDefaults()
	if p.Interval != time.Second || p.MaxWait != 2*time.Minute || p.Backoff != 1 {
		t.Errorf("unexpected defaults %+v", p)
	}
	if p.next(p.Interval) != time.Second {
		t.Error("backoff 1.0 should keep a fixed interval")
	}
}
