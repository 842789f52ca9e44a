package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the terminal's prometheus instruments.
type Metrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec

	SessionsCreated   prometheus.Counter
	SessionsExpired   prometheus.Counter
	PaymentsConfirmed *prometheus.CounterVec
	SalesRecorded     prometheus.Counter
}

// New registers the instruments on reg. Pass prometheus.DefaultRegisterer
// in production; tests use their own registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pos",
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "qr_sessions_created_total",
			Help:      "QR payment sessions created.",
		}),
		SessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "qr_sessions_expired_total",
			Help:      "QR payment sessions that expired unpaid.",
		}),
		PaymentsConfirmed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "payments_confirmed_total",
			Help:      "Confirmed payments by method.",
		}, []string{"method"}),
		SalesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pos",
			Name:      "sales_recorded_total",
			Help:      "Sales successfully recorded upstream.",
		}),
	}
	reg.MustRegister(m.Requests, m.LatencyMS, m.SessionsCreated,
		m.SessionsExpired, m.PaymentsConfirmed, m.SalesRecorded)
	return m
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
