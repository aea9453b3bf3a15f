package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func sumsBy(t *testing.T, m metricdata.Metrics, key attribute.Key) map[string]int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	out := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(key)
		out[v.AsString()] += dp.Value
	}
	return out
}

func TestIdentityMetrics(t *testing.T) {
	reader, mp := newManualMeter(t)
	ctx := context.Background()

	m, err := NewIdentityMetrics(mp.Meter(MeterName))
	require.NoError(t, err)

	m.RecordRutCheck(ctx, true)
	m.RecordRutCheck(ctx, true)
	m.RecordRutCheck(ctx, false)
	m.RecordPhoneCheck(ctx, false)
	m.RecordClientsCreated(ctx, "api", 1)
	m.RecordClientsCreated(ctx, "import", 12)
	m.RecordClientsCreated(ctx, "import", 0)
	m.RecordImport(ctx, 12, 3, 150*time.Millisecond)

	assert.Equal(t, map[string]int64{ResultValid: 2, ResultInvalid: 1},
		sumsBy(t, collect(t, reader, "identity.rut.checks"), AttrResult))
	assert.Equal(t, map[string]int64{ResultInvalid: 1},
		sumsBy(t, collect(t, reader, "identity.phone.checks"), AttrResult))
	assert.Equal(t, map[string]int64{"api": 1, "import": 12},
		sumsBy(t, collect(t, reader, "clients.created"), AttrSource))
	assert.Equal(t, map[string]int64{ResultValid: 12, ResultInvalid: 3},
		sumsBy(t, collect(t, reader, "clients.import.rows"), AttrResult))

	hist, ok := collect(t, reader, "clients.import.duration").Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}

func TestIdentityMetrics_Nil(t *testing.T) {
	var m *IdentityMetrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordRutCheck(ctx, true)
		m.RecordPhoneCheck(ctx, true)
		m.RecordClientsCreated(ctx, "api", 1)
		m.RecordImport(ctx, 1, 0, time.Second)
	})
}
