package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementAction("search", OutcomeSuccess)
	m.IncrementAction("search", OutcomeSuccess)
	m.IncrementAction("init", OutcomeServerError)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Actions.WithLabelValues("search", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Actions.WithLabelValues("init", OutcomeServerError)))

	m.ObserveMapping("on_search", 3, 5*time.Millisecond)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.MappedRecords.WithLabelValues("on_search")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.MappingLatency))

	m.IncrementUpstream("benefits", "200")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("benefits", "200")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementAction("search", OutcomeSuccess)
		m.ObserveMapping("on_search", 1, time.Millisecond)
		m.IncrementUpstream("benefits", "error")
	})
}

func TestRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
