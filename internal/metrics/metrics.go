package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts wire-server activity for the ops endpoint.
type Metrics struct {
	FramesReceived     prometheus.Counter
	FramesSent         prometheus.Counter
	ProtocolErrors     prometheus.Counter
	SessionsActive     prometheus.Gauge
	RequestsTotal      *prometheus.CounterVec
	RequestErrors      *prometheus.CounterVec
	BookingsTotal      prometheus.Counter
	CancellationsTotal prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		FramesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flightgate_frames_received_total",
			Help: "Total number of complete frames read from clients",
		}),

		FramesSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flightgate_frames_sent_total",
			Help: "Total number of frames written to clients",
		}),

		ProtocolErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flightgate_protocol_errors_total",
			Help: "Total number of framing or registration failures",
		}),

		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "flightgate_sessions_active",
			Help: "Number of currently registered sessions",
		}),

		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "flightgate_requests_total",
			Help: "Total number of dispatched requests by action",
		}, []string{"action"}),

		RequestErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "flightgate_request_errors_total",
			Help: "Total number of error responses by action",
		}, []string{"action"}),

		BookingsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flightgate_bookings_total",
			Help: "Total number of successful bookings",
		}),

		CancellationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flightgate_cancellations_total",
			Help: "Total number of successful cancellations",
		}),
	}
}
