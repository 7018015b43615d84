package health

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"alert-bridge/internal/broker"
	"alert-bridge/internal/httputil"
)

const exchangeCheckTimeout = 5 * time.Second

type Handler struct {
	adapter   broker.Adapter
	startedAt time.Time
	httpAddr  string
	baseURL   string
	enabled   bool
}

func NewHandler(adapter broker.Adapter, startedAt time.Time, httpAddr, baseURL string, enabled bool) *Handler {
	start := startedAt.UTC()
	if start.IsZero() {
		start = time.Now().UTC()
	}
	return &Handler{
		adapter:   adapter,
		startedAt: start,
		httpAddr:  strings.TrimSpace(httpAddr),
		baseURL:   strings.TrimSpace(baseURL),
		enabled:   enabled,
	}
}

type liveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	UptimeSec int64  `json:"uptime_sec"`
	Uptime    string `json:"uptime"`
}

type healthResponse struct {
	Status    string        `json:"status"`
	Timestamp string        `json:"timestamp"`
	UptimeSec int64         `json:"uptime_sec"`
	Uptime    string        `json:"uptime"`
	App       appStats      `json:"app"`
	Process   processStats  `json:"process"`
	Runtime   runtimeStats  `json:"runtime"`
	Exchange  exchangeStats `json:"exchange"`
	Build     buildStats    `json:"build"`
}

type appStats struct {
	HTTPAddr string `json:"http_addr"`
}

type processStats struct {
	PID      int    `json:"pid"`
	Hostname string `json:"hostname"`
	GoOS     string `json:"go_os"`
	GoArch   string `json:"go_arch"`
}

type runtimeStats struct {
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
	GoMaxProcs int    `json:"gomaxprocs"`
	HeapAlloc  uint64 `json:"heap_alloc_bytes"`
	NumGC      uint32 `json:"num_gc"`
}

type exchangeStats struct {
	Enabled    bool   `json:"enabled"`
	BaseURL    string `json:"base_url"`
	Reachable  bool   `json:"reachable"`
	PingMs     int64  `json:"ping_ms"`
	Error      string `json:"error,omitempty"`
	CheckedAt  string `json:"checked_at"`
	TimeoutSec int    `json:"timeout_sec"`
}

type buildStats struct {
	MainPath string `json:"main_path"`
	Version  string `json:"version"`
}

func (h *Handler) uptime(now time.Time) time.Duration {
	uptime := now.Sub(h.startedAt)
	if uptime < 0 {
		return 0
	}
	return uptime
}

func (h *Handler) collectExchange(ctx context.Context) exchangeStats {
	stats := exchangeStats{
		Enabled:    h.enabled,
		BaseURL:    h.baseURL,
		TimeoutSec: int(exchangeCheckTimeout.Seconds()),
	}
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, exchangeCheckTimeout)
	resp, err := h.adapter.ServerTime(ctx)
	cancel()
	stats.PingMs = time.Since(start).Milliseconds()
	stats.CheckedAt = time.Now().UTC().Format(time.RFC3339)
	switch {
	case err != nil:
		stats.Error = err.Error()
	case !resp.Success:
		stats.Error = resp.RetMsg
	default:
		stats.Reachable = true
	}
	return stats
}

// Live is a lightweight liveness endpoint and does not contact the exchange.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	uptime := h.uptime(now)
	httputil.WriteJSON(w, http.StatusOK, liveResponse{
		Status:    "ok",
		Timestamp: now.Format(time.RFC3339),
		UptimeSec: int64(uptime.Seconds()),
		Uptime:    uptime.String(),
	})
}

// Full reports process diagnostics and whether the exchange answers.
func (h *Handler) Full(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	uptime := h.uptime(now)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	build := buildStats{}
	if info, ok := debug.ReadBuildInfo(); ok && info != nil {
		build.MainPath = strings.TrimSpace(info.Main.Path)
		build.Version = strings.TrimSpace(info.Main.Version)
	}
	host := ""
	if h, err := os.Hostname(); err == nil {
		host = h
	}

	exchange := h.collectExchange(r.Context())
	status := "ok"
	httpStatus := http.StatusOK
	if !exchange.Reachable {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, httpStatus, healthResponse{
		Status:    status,
		Timestamp: now.Format(time.RFC3339),
		UptimeSec: int64(uptime.Seconds()),
		Uptime:    uptime.String(),
		App:       appStats{HTTPAddr: h.httpAddr},
		Process: processStats{
			PID:      os.Getpid(),
			Hostname: host,
			GoOS:     runtime.GOOS,
			GoArch:   runtime.GOARCH,
		},
		Runtime: runtimeStats{
			GoVersion:  runtime.Version(),
			Goroutines: runtime.NumGoroutine(),
			GoMaxProcs: runtime.GOMAXPROCS(0),
			HeapAlloc:  mem.HeapAlloc,
			NumGC:      mem.NumGC,
		},
		Exchange: exchange,
		Build:    build,
	})
}

// TestConnection relays the exchange server-time answer unchanged.
func (h *Handler) TestConnection(w http.ResponseWriter, r *http.Request) {
	resp, err := h.adapter.ServerTime(r.Context())
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadGateway, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(resp.Raw)
}
