package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/config"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/constants"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/ratelimit"
	"github.com/MarmikShah634/ZipLens-From-ZIP-to-Readable-Markdown/internal/session"
)

// HealthStatus represents the health status of a component.
type HealthStatus string

const (
	// StatusHealthy indicates the component is healthy.
	StatusHealthy HealthStatus = "healthy"
)

// HealthResponse represents the overall health check response.
type HealthResponse struct {
	Status     HealthStatus               `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Uptime     string                     `json:"uptime,omitempty"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// ComponentHealth represents the health of an individual component.
type ComponentHealth struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Metrics holds Prometheus metrics for monitoring.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Domain metrics
	RateLimitRejections *prometheus.CounterVec
	ActiveSessions      prometheus.GaugeFunc
	TrackedClients      prometheus.GaugeFunc
}

// NewMetrics creates and registers the service metrics. The gauges read
// live counts from the session store and rate limiter.
func NewMetrics(sessions *session.Store, limiter *ratelimit.Limiter) *Metrics {
	metrics := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ziplens_requests_total",
			Help: "Total number of requests by operation and status code.",
		}, []string{"operation", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ziplens_request_duration_seconds",
			Help:    "Request processing duration by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		RateLimitRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ziplens_rate_limit_rejections_total",
			Help: "Requests rejected by the rate limiter, by operation.",
		}, []string{"operation"}),
		ActiveSessions: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "ziplens_active_sessions",
			Help: "Number of sessions currently held in memory.",
		}, func() float64 { return float64(sessions.Count()) }),
		TrackedClients: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "ziplens_rate_limit_tracked_clients",
			Help: "Number of client keys tracked by the rate limiter.",
		}, func() float64 { return float64(limiter.Keys()) }),
	}

	prometheus.MustRegister(
		metrics.HTTPRequestsTotal,
		metrics.HTTPRequestDuration,
		metrics.RateLimitRejections,
		metrics.ActiveSessions,
		metrics.TrackedClients,
	)

	return metrics
}

// HealthHandler provides health check and monitoring endpoints.
type HealthHandler struct {
	config    *config.Config
	sessions  *session.Store
	limiter   *ratelimit.Limiter
	logger    *logrus.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(
	cfg *config.Config,
	sessions *session.Store,
	limiter *ratelimit.Limiter,
	logger *logrus.Logger,
) *HealthHandler {
	return &HealthHandler{
		config:    cfg,
		sessions:  sessions,
		limiter:   limiter,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Health handles GET /health with component-level detail. Both components
// are in-process, so the check reports counts rather than connectivity.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    StatusHealthy,
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Uptime:    time.Since(h.startTime).String(),
		Components: map[string]ComponentHealth{
			"session_store": {
				Status:  StatusHealthy,
				Message: "sessions held: " + strconv.Itoa(h.sessions.Count()),
			},
			"rate_limiter": {
				Status:  StatusHealthy,
				Message: "clients tracked: " + strconv.Itoa(h.limiter.Keys()),
			},
		},
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// Liveness handles GET /health/live.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
	})
}

// Readiness handles GET /health/ready. All state is in-memory, so the
// service is ready as soon as it is serving.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"ready":     true,
		"timestamp": time.Now().UTC(),
	})
}

func (h *HealthHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithError(err).Error("Failed to encode health response")
	}
}
