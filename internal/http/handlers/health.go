package handlers

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is anything whose reachability can be probed (pgxpool, redis).
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Check is one dependency probed by the health endpoints. A failing critical
// check makes the service unavailable; any other failure only degrades it.
type Check struct {
	Name     string
	Pinger   Pinger
	Critical bool
}

type HealthHandler struct {
	checks  []Check
	version string
	started time.Time
	timeout time.Duration
}

func NewHealthHandler(version string, checks ...Check) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		version: version,
		started: time.Now(),
		timeout: 3 * time.Second,
	}
}

type checkResult struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
	critical  bool
}

type readinessResponse struct {
	Status     string                 `json:"status"`
	Version    string                 `json:"version,omitempty"`
	Uptime     string                 `json:"uptime"`
	Timestamp  time.Time              `json:"timestamp"`
	Goroutines int                    `json:"goroutines"`
	Checks     map[string]checkResult `json:"checks"`
}

// probe runs every check concurrently under one deadline.
func (h *HealthHandler) probe(ctx context.Context, criticalOnly bool) map[string]checkResult {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	results := make([]checkResult, len(h.checks))
	var wg sync.WaitGroup
	for i, chk := range h.checks {
		if criticalOnly && !chk.Critical {
			continue
		}
		wg.Add(1)
		go func(i int, chk Check) {
			defer wg.Done()
			start := time.Now()
			err := chk.Pinger.Ping(ctx)
			r := checkResult{Status: "up", LatencyMS: time.Since(start).Milliseconds(), critical: chk.Critical}
			if err != nil {
				r.Status, r.Error = "down", err.Error()
			}
			results[i] = r
		}(i, chk)
	}
	wg.Wait()

	out := make(map[string]checkResult, len(h.checks))
	for i, chk := range h.checks {
		if criticalOnly && !chk.Critical {
			continue
		}
		out[chk.Name] = results[i]
	}
	return out
}

// overall folds check results into ok, degraded or unavailable.
func overall(results map[string]checkResult) (string, int) {
	status, code := "ok", http.StatusOK
	for _, r := range results {
		if r.Status == "up" {
			continue
		}
		if r.critical {
			return "unavailable", http.StatusServiceUnavailable
		}
		status = "degraded"
	}
	return status, code
}

// Liveness only says the process is serving requests.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness probes every dependency and reports each one.
func (h *HealthHandler) Readiness(c *gin.Context) {
	results := h.probe(c.Request.Context(), false)
	status, code := overall(results)
	c.JSON(code, readinessResponse{
		Status:     status,
		Version:    h.version,
		Uptime:     time.Since(h.started).Round(time.Second).String(),
		Timestamp:  time.Now().UTC(),
		Goroutines: runtime.NumGoroutine(),
		Checks:     results,
	})
}

// Health is the cheap variant for load balancers: critical checks only.
func (h *HealthHandler) Health(c *gin.Context) {
	results := h.probe(c.Request.Context(), true)
	status, code := overall(results)
	body := gin.H{"status": status, "version": h.version}
	for name, r := range results {
		if r.Status != "up" {
			body["error"] = name + " unavailable"
			break
		}
	}
	c.JSON(code, body)
}
