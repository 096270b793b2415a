package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	service "github.com/okian/pricetrack/internal/app"
	"github.com/okian/pricetrack/pkg/metrics"
)

// StatsProvider reports session registry statistics.
type StatsProvider interface {
	Stats() service.Stats
}

// OpsHandler serves liveness, registry statistics and Prometheus metrics.
type OpsHandler struct {
	stats   StatsProvider
	metrics http.Handler
}

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

// NewOpsHandler creates an operations handler over the registry.
func NewOpsHandler(stats StatsProvider) *OpsHandler {
	return &OpsHandler{
		stats:   stats,
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz. It answers 503 until the registry has
// been started.
func (h *OpsHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	st := h.stats.Stats()
	if !st.Started {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "starting"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Sessions: st.Sessions})
}

// HandleStats handles GET /stats.
func (h *OpsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.stats.Stats())
}

// HandleMetrics handles GET /metrics in the Prometheus exposition format.
func (h *OpsHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}
