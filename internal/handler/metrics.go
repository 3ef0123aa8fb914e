package handler

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrewwphillips/castnet/internal/errs"
)

// Metrics holds Prometheus metrics for requests and the queries they run.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec   // by method and status
	compileErrors *prometheus.CounterVec   // by error kind
	dbDuration    *prometheus.HistogramVec // by mode (read/write)
}

// NewMetrics creates the metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "castnet",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled",
		}, []string{"method", "status"}),

		compileErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "castnet",
			Name:      "compile_errors_total",
			Help:      "Total number of requests refused because they could not be compiled",
		}, []string{"kind"}), // kind: VALIDATION, SCHEMA_MISMATCH, SYNTAX

		dbDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "castnet",
			Name:      "db_duration_seconds",
			Help:      "Time taken running queries in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"mode"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.compileErrors, m.dbDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) request(method string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func (m *Metrics) compileError(kind errs.Kind) {
	if m == nil {
		return
	}
	m.compileErrors.WithLabelValues(kind.String()).Inc()
}

// ObserveDB records how long a query took, where mode is "read" or "write"
func (m *Metrics) ObserveDB(mode string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.dbDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}
