package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes recorded for protocol actions.
const (
	OutcomeSuccess     = "success"
	OutcomeClientError = "client_error"
	OutcomeServerError = "server_error"
)

// Metrics provides observability for the protocol actions and the catalog mapper.
type Metrics struct {
	// Protocol actions by action and outcome
	Actions *prometheus.CounterVec

	// Time spent mapping records to catalog items by action
	MappingLatency *prometheus.HistogramVec

	// Records mapped by action
	MappedRecords *prometheus.CounterVec

	// Content repository calls by endpoint and status code
	UpstreamRequests *prometheus.CounterVec
}

// New registers the metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Actions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bpp_protocol_actions_total",
			Help: "Total protocol actions handled by action and outcome",
		}, []string{"action", "outcome"}),

		MappingLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bpp_catalog_mapping_duration_seconds",
			Help:    "Duration of mapping benefit records to catalog items",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}, []string{"action"}),

		MappedRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bpp_catalog_mapped_records_total",
			Help: "Total benefit records mapped to catalog items by action",
		}, []string{"action"}),

		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bpp_content_requests_total",
			Help: "Total requests made to the content repository by endpoint and status code",
		}, []string{"endpoint", "code"}),
	}
}

// ObserveMapping records the duration of mapping a set of records.
func (m *Metrics) ObserveMapping(action string, records int, d time.Duration) {
	if m != nil {
		m.MappingLatency.WithLabelValues(action).Observe(d.Seconds())
		m.MappedRecords.WithLabelValues(action).Add(float64(records))
	}
}

// IncrementAction records the outcome of a protocol action.
func (m *Metrics) IncrementAction(action, outcome string) {
	if m != nil {
		m.Actions.WithLabelValues(action, outcome).Inc()
	}
}

// IncrementUpstream records a content repository response. code is "error" when no response arrived.
func (m *Metrics) IncrementUpstream(endpoint, code string) {
	if m != nil {
		m.UpstreamRequests.WithLabelValues(endpoint, code).Inc()
	}
}
