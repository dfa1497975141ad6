package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the client and the mock API.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Transitions         *prometheus.CounterVec
	RejectedTransitions *prometheus.CounterVec
	APICallDuration     *prometheus.HistogramVec
	UsersRegistered     *prometheus.CounterVec
	EventsPublished     *prometheus.CounterVec
	EndpointLatency     *prometheus.HistogramVec
}

// New registers every collector on reg. Pass prometheus.NewRegistry() in
// tests so runs do not collide on the default registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "neoquiz_flow_transitions_total",
			Help: "Screen transitions applied, by origin, destination and stack operation",
		}, []string{"from", "to", "kind"}),
		RejectedTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "neoquiz_flow_rejected_transitions_total",
			Help: "Actions refused with an inline notice, by screen",
		}, []string{"screen"}),
		APICallDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "neoquiz_api_call_duration_seconds",
			Help:    "Latency of backend calls made by the auth client",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
		UsersRegistered: f.NewCounterVec(prometheus.CounterOpts{
			Name: "neoquiz_mockapi_users_registered_total",
			Help: "Accounts created on the mock API, by role",
		}, []string{"role"}),
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "neoquiz_mockapi_events_total",
			Help: "Account events emitted, by type and sink",
		}, []string{"type", "sink"}),
		EndpointLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "neoquiz_mockapi_request_duration_seconds",
			Help:    "Mock API request latency by route",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route", "status"}),
	}
}

func (m *Metrics) IncTransition(from, to, kind string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to, kind).Inc()
}

func (m *Metrics) IncRejected(screen string) {
	if m == nil {
		return
	}
	m.RejectedTransitions.WithLabelValues(screen).Inc()
}

// ObserveAPICall records one auth client call started at start.
func (m *Metrics) ObserveAPICall(operation, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.APICallDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncUsersRegistered(role string) {
	if m == nil {
		return
	}
	m.UsersRegistered.WithLabelValues(role).Inc()
}

func (m *Metrics) IncEventsPublished(eventType, sink string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(eventType, sink).Inc()
}

func (m *Metrics) ObserveEndpoint(route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.EndpointLatency.WithLabelValues(route, status).Observe(d.Seconds())
}
