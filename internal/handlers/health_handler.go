package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"roadside-rescue/internal/utils"
)

// Pinger is any backing store that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	version  string
	pingers  map[string]Pinger
	timeout  time.Duration
	registry http.Handler
}

func NewHealthHandler(version string, pingers map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		version:  version,
		pingers:  pingers,
		timeout:  2 * time.Second,
		registry: promhttp.Handler(),
	}
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, utils.MessageBody{Message: "Welcome to roadside rescue API"})
}

// Health pings each dependency and reports 503 if any is down.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	checks := make(map[string]string, len(h.pingers))
	status := http.StatusOK
	for name, p := range h.pingers {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{
		"status":  state,
		"version": h.version,
		"checks":  checks,
	})
}

func (h *HealthHandler) Metrics(c *gin.Context) {
	h.registry.ServeHTTP(c.Writer, c.Request)
}
