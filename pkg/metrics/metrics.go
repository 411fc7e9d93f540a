package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry holds every collector exposed on /api/metrics
	Registry = prometheus.NewRegistry()

	// Histogram buckets for request durations, from milliseconds up to the Telegram client timeout
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13}

	// HTTP Metrics
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Telegram Bot API client metrics
	TelegramRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "telegram_client_operation_duration_seconds",
			Help:    "Telegram Bot API call duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	TelegramRequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_client_operation_total",
			Help: "Total number of Telegram Bot API calls",
		},
		[]string{"operation", "status"},
	)

	// Business Metrics
	WebhooksReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_webhooks_total",
			Help: "Total number of Notion webhooks by outcome",
		},
		[]string{"outcome"},
	)

	Deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_deliveries_total",
			Help: "Total number of message deliveries by destination and status",
		},
		[]string{"destination", "status"},
	)

	// Infrastructure Metrics
	GoRoutines = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

func init() {
	Registry.MustRegister(
		HTTPRequestDuration,
		HTTPRequestTotal,
		ActiveRequests,
		TelegramRequestDuration,
		TelegramRequestTotal,
		WebhooksReceived,
		Deliveries,
		GoRoutines,
		HeapAlloc,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
