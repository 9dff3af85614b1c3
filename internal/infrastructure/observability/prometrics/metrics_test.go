package prometrics

import (
	"testing"

	"github.com/Zhima-Mochi/petstore-core/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCounterIsRegisteredOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg, "", "")

	c1 := r.Counter("orders_total", "help", "outcome")
	c2 := r.Counter("orders_total", "help", "outcome")

	c1.Add(1, observability.L("outcome", "success"))
	c2.Add(2, observability.L("outcome", "success"))

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	require.Len(t, families[0].GetMetric(), 1)
	assert.Equal(t, 3.0, families[0].GetMetric()[0].GetCounter().GetValue())
}

func TestRegisterDefaults(t *testing.T) {
	reg := prometheus.NewRegistry()
	counters, histograms := RegisterDefaults(New(reg, "petstore", ""))

	require.Len(t, counters, 4)
	require.Len(t, histograms, 3)

	counters[observability.MUsecaseRequests].Add(1,
		observability.L("use_case", "order.create"),
		observability.L("outcome", "success"),
	)
	histograms[observability.MUsecaseDuration].Observe(0.01,
		observability.L("use_case", "order.create"),
	)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "petstore_usecase_requests_total")
	assert.Contains(t, names, "petstore_usecase_duration_seconds")
}
