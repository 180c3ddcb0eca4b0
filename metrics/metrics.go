// Package metrics registers the process's Prometheus collectors. Every
// collector is created once at package init and mutated through small
// package-level functions, the same shape the teacher used for its single
// request-duration histogram.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dpetrov/elevator-cab/internal/constants"
)

const cabIDLabel = constants.CabIDLabel

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: constants.MetricsNamespace + "_http_requests_total",
			Help: "Count of HTTP requests by method, path and status code.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    constants.MetricsNamespace + "_http_request_duration_seconds",
			Help:    "Duration of HTTP request handling.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "path"},
	)

	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: constants.MetricsNamespace + "_errors_total",
			Help: "Count of errors by type and originating component.",
		},
		[]string{"type", "component"},
	)

	ticksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: constants.MetricsNamespace + "_engine_ticks_total",
			Help: "Count of control engine tick iterations.",
		},
		[]string{cabIDLabel},
	)

	floorsServedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: constants.MetricsNamespace + "_floors_served_total",
			Help: "Count of floor stops served, by direction.",
		},
		[]string{cabIDLabel, "direction"},
	)

	circuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: constants.MetricsNamespace + "_circuit_breaker_state",
			Help: "Driver circuit breaker state: 0=closed, 1=open, 2=half-open.",
		},
		[]string{cabIDLabel},
	)

	heartbeatAgeSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: constants.MetricsNamespace + "_heartbeat_age_seconds",
			Help: "Seconds since the control engine's tick loop last beat its watchdog.",
		},
		[]string{cabIDLabel},
	)

	commandQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: constants.MetricsNamespace + "_command_queue_depth",
			Help: "Number of commands currently buffered in the inbound queue.",
		},
		[]string{cabIDLabel},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		errorsTotal,
		ticksTotal,
		floorsServedTotal,
		circuitBreakerState,
		heartbeatAgeSeconds,
		commandQueueDepth,
	)
}

func RecordHTTPRequest(method, path, status string, seconds float64) {
	httpRequestsTotal.With(prometheus.Labels{"method": method, "path": path, "status": status}).Inc()
	httpRequestDuration.With(prometheus.Labels{"method": method, "path": path}).Observe(seconds)
}

func IncError(errType, component string) {
	errorsTotal.With(prometheus.Labels{"type": errType, "component": component}).Inc()
}

func IncTick(cabID int) {
	ticksTotal.With(prometheus.Labels{cabIDLabel: strconv.Itoa(cabID)}).Inc()
}

func IncFloorServed(cabID int, direction string) {
	floorsServedTotal.With(prometheus.Labels{cabIDLabel: strconv.Itoa(cabID), "direction": direction}).Inc()
}

func SetCircuitBreakerState(cabID int, state float64) {
	circuitBreakerState.With(prometheus.Labels{cabIDLabel: strconv.Itoa(cabID)}).Set(state)
}

func SetHeartbeatAge(cabID int, seconds float64) {
	heartbeatAgeSeconds.With(prometheus.Labels{cabIDLabel: strconv.Itoa(cabID)}).Set(seconds)
}

func SetCommandQueueDepth(cabID int, depth float64) {
	commandQueueDepth.With(prometheus.Labels{cabIDLabel: strconv.Itoa(cabID)}).Set(depth)
}
