// Package observability owns the Prometheus collectors shared by the server
// and the export worker.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"daylog/internal/core"
)

var (
	activitiesAdded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "daylog",
		Subsystem: "activities",
		Name:      "added_total",
		Help:      "Number of activities stored.",
	})
	activitiesDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "daylog",
		Subsystem: "activities",
		Name:      "deleted_total",
		Help:      "Number of activities removed.",
	})
	validationRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daylog",
		Subsystem: "activities",
		Name:      "validation_rejections_total",
		Help:      "Proposed activities refused before reaching the store, by reason.",
	}, []string{"kind"})
	storeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daylog",
		Subsystem: "store",
		Name:      "errors_total",
		Help:      "Failed day store calls by operation.",
	}, []string{"op"})
	publishFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daylog",
		Subsystem: "events",
		Name:      "publish_failures_total",
		Help:      "Activity events that could not be handed to a transport.",
	}, []string{"transport"})
	eventsExported = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "daylog",
		Subsystem: "export",
		Name:      "events_total",
		Help:      "Activity events applied to the spreadsheet, by type.",
	}, []string{"type"})
	exportFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "daylog",
		Subsystem: "export",
		Name:      "failures_total",
		Help:      "Activity events the exporter failed to apply.",
	})
	lastExportGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "daylog",
		Subsystem: "export",
		Name:      "last_event_timestamp_seconds",
		Help:      "Unix timestamp of the most recent exported event.",
	})
	httpRequests = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "daylog",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and status class.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status"})
	rateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "daylog",
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests refused by the per-client rate limiter.",
	})
	suspiciousRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "daylog",
		Subsystem: "http",
		Name:      "suspicious_requests_total",
		Help:      "Requests matching a known probing pattern.",
	})
)

func init() {
	prometheus.MustRegister(
		activitiesAdded,
		activitiesDeleted,
		validationRejections,
		storeErrors,
		publishFailures,
		eventsExported,
		exportFailures,
		lastExportGauge,
		httpRequests,
		rateLimited,
		suspiciousRequests,
	)
}

func RecordActivityAdded()   { activitiesAdded.Inc() }
func RecordActivityDeleted() { activitiesDeleted.Inc() }

func RecordValidationRejection(kind core.ValidationKind) {
	validationRejections.WithLabelValues(string(kind)).Inc()
}

func RecordStoreError(op string) {
	storeErrors.WithLabelValues(op).Inc()
}

func RecordPublishFailure(transport string) {
	publishFailures.WithLabelValues(transport).Inc()
}

// RecordExported counts an applied event and moves the export watermark.
func RecordExported(eventType string, occurredAt time.Time) {
	eventsExported.WithLabelValues(eventType).Inc()
	if !occurredAt.IsZero() {
		lastExportGauge.Set(float64(occurredAt.Unix()))
	}
}

func RecordExportFailure() { exportFailures.Inc() }

// PublishFailures exposes the per-transport failure counter.
func PublishFailures(transport string) prometheus.Counter {
	return publishFailures.WithLabelValues(transport)
}

// ObserveHTTPRequest records one served request. Status is bucketed by class
// ("2xx", "4xx", ...) to keep the label set small.
func ObserveHTTPRequest(method string, status int, d time.Duration) {
	httpRequests.WithLabelValues(method, statusClass(status)).Observe(d.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

func RecordRateLimited()       { rateLimited.Inc() }
func RecordSuspiciousRequest() { suspiciousRequests.Inc() }

// RateLimited exposes the rate limiter counter.
func RateLimited() prometheus.Counter { return rateLimited }

// SuspiciousRequests exposes the probe detection counter.
func SuspiciousRequests() prometheus.Counter { return suspiciousRequests }
