package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts lifecycle outcomes.  A nil *Metrics records nothing.
type Metrics struct {
	transitions   *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	notifyFailure prometheus.Counter
}

// NewMetrics registers the reservation counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reservation_transitions_total",
			Help: "Committed reservation lifecycle transitions.",
		}, []string{"event"}),
		rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reservation_rejections_total",
			Help: "Reservation operations rejected or failed, by operation and kind.",
		}, []string{"operation", "kind"}),
		notifyFailure: f.NewCounter(prometheus.CounterOpts{
			Name: "reservation_notification_failures_total",
			Help: "Reservation events that could not be published.",
		}),
	}
}

func (m *Metrics) transitioned(event string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(event).Inc()
}

func (m *Metrics) rejected(op string, err error) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(op, errorKind(err)).Inc()
}

func (m *Metrics) notificationFailed() {
	if m == nil {
		return
	}
	m.notifyFailure.Inc()
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrCarUnavailable):
		return "car_unavailable"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}
