package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics carries its own registry so parallel test servers never
// collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	ticketsIssued *prometheus.CounterVec
	validations   *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		ticketsIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cas",
			Name:      "tickets_issued_total",
			Help:      "Tickets issued, by ticket type.",
		}, []string{"type"}),
		validations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cas",
			Name:      "validations_total",
			Help:      "Ticket validations, by outcome (ok or failure code).",
		}, []string{"result"}),
	}
}

func (m *Metrics) TicketIssued(kind string) {
	m.ticketsIssued.WithLabelValues(kind).Inc()
}

func (m *Metrics) Validation(result string) {
	m.validations.WithLabelValues(result).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
