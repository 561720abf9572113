// Package server exposes the analysis workflow over a small JSON API.
package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

type AnalyzeRequest struct {
	Ticker string `json:"ticker"`
}

type StatusResponse struct {
	Status types.Status `json:"status"`
}

// Handler serves analyses one at a time. A request arriving while another
// analysis is running gets 409 instead of queueing.
type Handler struct {
	engine  interfaces.Engine
	timeout time.Duration

	gate sync.Mutex
	busy atomic.Bool
}

func NewHandler(engine interfaces.Engine, timeout time.Duration) *Handler {
	return &Handler{engine: engine, timeout: timeout}
}

func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !h.gate.TryLock() {
		c.JSON(http.StatusConflict, StatusResponse{Status: types.StatusBusy})
		return
	}
	h.busy.Store(true)
	defer func() {
		h.busy.Store(false)
		h.gate.Unlock()
	}()

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	a, err := h.engine.Analyze(ctx, req.Ticker)
	if a == nil {
		logger.ErrorWithErr(ctx, "Analysis returned nothing", err, "ticker", req.Ticker)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed"})
		return
	}

	code := http.StatusOK
	if a.Status == types.StatusError {
		code = http.StatusBadGateway
	}
	c.JSON(code, a)
}

func (h *Handler) Status(c *gin.Context) {
	s := types.StatusIdle
	if h.busy.Load() {
		s = types.StatusBusy
	}
	c.JSON(http.StatusOK, StatusResponse{Status: s})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
