package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors exposed on /metrics.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mockraft",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mockraft",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mockraft",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	aiCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mockraft",
			Subsystem: "ai",
			Name:      "calls_total",
			Help:      "AI proxy calls by operation and outcome.",
		},
		[]string{"op", "outcome"},
	)

	aiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mockraft",
			Subsystem: "ai",
			Name:      "call_duration_seconds",
			Help:      "Duration of AI proxy calls.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"op"},
	)

	payments = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mockraft",
			Subsystem: "payments",
			Name:      "total",
			Help:      "Payment records by resulting status.",
		},
		[]string{"status"},
	)

	pointsAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mockraft",
			Subsystem: "points",
			Name:      "awarded_total",
			Help:      "Points awarded by reason.",
		},
		[]string{"reason"},
	)

	chatClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mockraft",
			Subsystem: "chat",
			Name:      "connected_clients",
			Help:      "Current number of connected chat clients.",
		},
	)

	chatMessages = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mockraft",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Chat messages accepted.",
		},
	)

	schedulerRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mockraft",
			Subsystem: "scheduler",
			Name:      "runs_total",
			Help:      "Scheduled job runs by job and success.",
		},
		[]string{"job", "success"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		aiCalls,
		aiDuration,
		payments,
		pointsAwarded,
		chatClients,
		chatMessages,
		schedulerRuns,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RequestStarted() func(method, route string, status int) {
	start := time.Now()
	httpInFlight.Inc()
	return func(method, route string, status int) {
		httpInFlight.Dec()
		if route == "" {
			route = "unmatched"
		}
		method = strings.ToUpper(method)
		httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func RecordAICall(op, outcome string, d time.Duration) {
	aiCalls.WithLabelValues(op, outcome).Inc()
	aiDuration.WithLabelValues(op).Observe(d.Seconds())
}

func RecordPayment(status string) {
	payments.WithLabelValues(status).Inc()
}

func RecordPayments(status string, n int) {
	if n <= 0 {
		return
	}
	payments.WithLabelValues(status).Add(float64(n))
}

func RecordPoints(reason string, n int) {
	if n <= 0 {
		return
	}
	pointsAwarded.WithLabelValues(reason).Add(float64(n))
}

func ChatClientConnected()    { chatClients.Inc() }
func ChatClientDisconnected() { chatClients.Dec() }
func ChatMessageAccepted()    { chatMessages.Inc() }

func RecordSchedulerRun(job string, success bool) {
	schedulerRuns.WithLabelValues(job, strconv.FormatBool(success)).Inc()
}
