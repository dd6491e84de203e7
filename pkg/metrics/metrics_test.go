package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { RegisterCollectors(reg) })

	RecordsInserted.WithLabelValues("service").Inc()
	n, err := testutil.GatherAndCount(reg, "portfolio_records_inserted_total")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// a second registration on the same registry must fail loudly
	require.Panics(t, func() { RegisterCollectors(reg) })
}
