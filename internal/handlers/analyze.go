package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/moodstream/internal/clients"
	"github.com/spacesedan/moodstream/internal/models"
	"github.com/spacesedan/moodstream/internal/service"
)

type AnalyzeHandler struct {
	analyzer       *service.Analyzer
	backendHealthy *atomic.Bool
}

func NewAnalyzeHandler(analyzer *service.Analyzer, backendHealthy *atomic.Bool) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:       analyzer,
		backendHealthy: backendHealthy,
	}
}

func (h *AnalyzeHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/analyze", h.Analyze)
	r.GET("/healthz", h.Healthz)
}

func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.ApplyDefaults()

	analysis, err := h.analyzer.Prepare(c.Request.Context(), req)
	if err != nil {
		h.writePrepareError(c, err)
		return
	}

	if req.Stream {
		h.streamSummary(c, analysis)
		return
	}

	c.JSON(http.StatusOK, h.analyzer.Summarize(c.Request.Context(), analysis))
}

func (h *AnalyzeHandler) writePrepareError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidSubreddit):
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidSubreddit.Error()})
	case errors.Is(err, clients.ErrSubredditEmpty):
		c.JSON(http.StatusNotFound, gin.H{"error": clients.ErrSubredditEmpty.Error()})
	default:
		slog.Error("[AnalyzeHandler] Analysis failed",
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
	}
}

// streamSummary relays sentences as newline-terminated text/plain lines. The
// relay goroutine owns the channel; a client disconnect cancels the request
// context, which stops it and releases the backend connection.
func (h *AnalyzeHandler) streamSummary(c *gin.Context, analysis *service.Analysis) {
	ctx := c.Request.Context()
	out := make(chan string)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		errCh <- h.analyzer.StreamSummary(ctx, analysis, out)
	}()

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	c.Stream(func(w io.Writer) bool {
		sentence, ok := <-out
		if !ok {
			return false
		}
		fmt.Fprintf(w, "%s\n", sentence)
		return true
	})

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("[AnalyzeHandler] Stream ended with error",
			slog.String("error", err.Error()))
	}
}

func (h *AnalyzeHandler) Healthz(c *gin.Context) {
	if !h.backendHealthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "backend": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
