package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "platter_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	permissionResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platter_permission_resolutions_total",
			Help: "Total permission resolver invocations by entity type and action",
		},
		[]string{"entity_type", "action"},
	)
	groupsProvisioned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platter_groups_provisioned_total",
			Help: "Total access groups provisioned by entity type",
		},
		[]string{"entity_type"},
	)
)

// PrometheusMiddleware records request duration.
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(ww.Status())
		path := r.URL.Path
		if path == "" {
			path = "/"
		}
		httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
	})
}

// RecordPermissionResolution records one resolver invocation.
func RecordPermissionResolution(entityType, action string) {
	permissionResolutions.WithLabelValues(entityType, action).Inc()
}

// RecordGroupsProvisioned records a provisioning run for an entity type.
func RecordGroupsProvisioned(entityType string) {
	groupsProvisioned.WithLabelValues(entityType).Inc()
}
