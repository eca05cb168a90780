package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application counters on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	ProductsCreated prometheus.Counter
	ProductsUpdated prometheus.Counter
	Verifications   *prometheus.CounterVec
	Logins          *prometheus.CounterVec
	Registrations   prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ProductsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authentiq_products_created_total",
			Help: "Total number of products registered",
		}),
		ProductsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authentiq_products_updated_total",
			Help: "Total number of product updates",
		}),
		Verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authentiq_verifications_total",
			Help: "Verification lookups by result",
		}, []string{"result"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authentiq_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		Registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authentiq_registrations_total",
			Help: "Total number of accounts created",
		}),
	}
	reg.MustRegister(
		m.ProductsCreated, m.ProductsUpdated, m.Verifications, m.Logins, m.Registrations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) IncrementProductsCreated() {
	if m != nil {
		m.ProductsCreated.Inc()
	}
}

func (m *Metrics) IncrementProductsUpdated() {
	if m != nil {
		m.ProductsUpdated.Inc()
	}
}

func (m *Metrics) ObserveVerification(result string) {
	if m != nil {
		m.Verifications.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) ObserveLogin(outcome string) {
	if m != nil {
		m.Logins.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementRegistrations() {
	if m != nil {
		m.Registrations.Inc()
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
