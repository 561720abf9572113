package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"

	"stock-advisor/internal/store"
	"stock-advisor/internal/types"
)

type fakeEngine struct {
	analysis *types.Analysis
	err      error
	started  chan struct{}
	release  chan struct{}
	ticker   string
	deadline bool
}

func (f *fakeEngine) Analyze(ctx context.Context, ticker string) (*types.Analysis, error) {
	f.ticker = ticker
	_, f.deadline = ctx.Deadline()
	if f.started != nil {
		close(f.started)
		<-f.release
	}
	return f.analysis, f.err
}

func newTestRouter(eng *fakeEngine) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(store.ServerConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
		RequestTimeout: time.Minute,
	}, eng)
}

func postAnalyze(r http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestAnalyze_Success(t *testing.T) {
	eng := &fakeEngine{analysis: &types.Analysis{
		ID: "a1", Ticker: "AAPL", Status: types.StatusSuccess, Message: types.MsgComplete,
		Recommendation: &types.Recommendation{Text: "BUY", Action: "BUY"},
	}}
	r := newTestRouter(eng)

	w := postAnalyze(r, `{"ticker":"aapl"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "aapl", eng.ticker)
	assert.Equal(t, true, eng.deadline)

	var res types.Analysis
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, types.StatusSuccess, res.Status)
	assert.Equal(t, "BUY", res.Recommendation.Action)
}

func TestAnalyze_WarningIsOK(t *testing.T) {
	eng := &fakeEngine{analysis: &types.Analysis{Status: types.StatusWarning, Message: types.MsgMissingTicker}}
	r := newTestRouter(eng)

	w := postAnalyze(r, `{"ticker":""}`)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAnalyze_ErrorIsBadGateway(t *testing.T) {
	eng := &fakeEngine{
		analysis: &types.Analysis{Status: types.StatusError, Message: types.MsgTimedOut},
		err:      types.ErrJobTimeout,
	}
	r := newTestRouter(eng)

	w := postAnalyze(r, `{"ticker":"AAPL"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestAnalyze_NilAnalysis(t *testing.T) {
	r := newTestRouter(&fakeEngine{err: errors.New("boom")})

	w := postAnalyze(r, `{"ticker":"AAPL"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAnalyze_BadBody(t *testing.T) {
	r := newTestRouter(&fakeEngine{})

	w := postAnalyze(r, `not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyze_BusyGate(t *testing.T) {
	eng := &fakeEngine{
		analysis: &types.Analysis{Status: types.StatusSuccess},
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	r := newTestRouter(eng)

	done := make(chan *httptest.ResponseRecorder)
	go func() { done <- postAnalyze(r, `{"ticker":"AAPL"}`) }()
	<-eng.started

	w := postAnalyze(r, `{"ticker":"MSFT"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, `{"status":"busy"}`, w.Body.String())

	s := httptest.NewRecorder()
	r.ServeHTTP(s, httptest.NewRequest("GET", "/api/status", nil))
	assert.Equal(t, `{"status":"busy"}`, s.Body.String())

	close(eng.release)
	first := <-done
	assert.Equal(t, http.StatusOK, first.Code)

	s = httptest.NewRecorder()
	r.ServeHTTP(s, httptest.NewRequest("GET", "/api/status", nil))
	assert.Equal(t, `{"status":"idle"}`, s.Body.String())
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&fakeEngine{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
