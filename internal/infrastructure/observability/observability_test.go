package observability

import (
	"testing"

	"github.com/Zhima-Mochi/petstore-core/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/petstore-core/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderFallsBackToNop(t *testing.T) {
	p := New(Options{})

	assert.NotNil(t, p.Tracer())
	assert.NotNil(t, p.Logger())
	assert.NotPanics(t, func() {
		p.Metrics().Counter(observability.MDomainEvents).Add(1, observability.L("event", "order.created"))
		p.Metrics().Histogram(observability.MUsecaseDuration).Observe(0.1)
	})
	assert.NoError(t, p.Sync())
}

func TestProviderUsesRegisteredInstruments(t *testing.T) {
	reg := prometheus.NewRegistry()
	counters, histograms := prometrics.RegisterDefaults(prometrics.New(reg, "", ""))
	p := New(Options{Counters: counters, Histograms: histograms})

	p.Metrics().Counter(observability.MDomainEvents).Add(2, observability.L("event", "payment.processed"))

	families, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() == string(observability.MDomainEvents) {
			found = true
			assert.Equal(t, 2.0, f.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found)
}
