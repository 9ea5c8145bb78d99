package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnify_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_class"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "learnify_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "path", "status_class"},
	)

	HTTPInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "learnify_http_inflight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Streaming
	StreamsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnify_streams_started_total",
			Help: "Total number of chunk streams started",
		},
		[]string{"source", "format"},
	)

	StreamsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnify_streams_finished_total",
			Help: "Total number of chunk streams finished by outcome",
		},
		[]string{"source", "outcome"},
	)

	EnvelopesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnify_envelopes_sent_total",
			Help: "Total number of envelopes written to clients",
		},
		[]string{"source", "type"},
	)

	StreamChunks = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "learnify_stream_chunks",
			Help:    "Number of chunks produced per stream",
			Buckets: []float64{1, 2, 5, 10, 15, 20, 30, 50, 100},
		},
		[]string{"source"},
	)

	StreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "learnify_stream_duration_seconds",
			Help:    "Wall time from first to last envelope",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"source"},
	)

	// Agent relay
	AgentEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnify_agent_events_total",
			Help: "Total number of agent events by kind",
		},
		[]string{"kind"},
	)

	// Diagram repair and rendering
	DiagramRepairsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnify_diagram_repairs_total",
			Help: "Diagram repair outcomes by final state",
		},
		[]string{"state"},
	)

	DiagramRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "learnify_diagram_render_duration_seconds",
			Help:    "Diagram render latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"result"},
	)

	RenderCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnify_render_cache_lookups_total",
			Help: "Render cache lookups by result",
		},
		[]string{"result"},
	)

	// Rate limiting
	RateLimitKeys = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "learnify_ratelimit_keys",
			Help: "Number of active rate limit keys",
		},
	)

	RateLimitSweeps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "learnify_ratelimit_sweeps_total",
			Help: "Total number of rate limiter sweeps",
		},
	)

	RateLimitRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnify_ratelimit_rejected_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"path"},
	)

	// Config reloads
	ConfigReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnify_config_reloads_total",
			Help: "Config reload attempts by result",
		},
		[]string{"result"},
	)
)

// StatusClass buckets an HTTP status into 2xx/3xx/4xx/5xx.
func StatusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
