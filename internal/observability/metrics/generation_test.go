package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationMetricsRecording(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewGenerationMetrics(registry)
	require.NoError(t, err)

	m.RecordGeneration(true, 2*time.Second)
	m.RecordGeneration(false, time.Second)
	m.RecordImageFetch("pexels", true, 300*time.Millisecond)
	m.RecordImageFetch("pexels", true, 200*time.Millisecond)
	m.RecordImageFetch("pexels", false, 100*time.Millisecond)
	m.RecordInline(true)
	m.RecordInline(false)
	m.RecordInline(false)

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.MenusGenerated), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.MenusFailed), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.ImageFetches.WithLabelValues("pexels", LabelSuccess)), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.ImageFetches.WithLabelValues("pexels", LabelError)), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.InlineResults.WithLabelValues(LabelSuccess)), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.InlineResults.WithLabelValues(LabelError)), 0)

	families, err := registry.Gather()
	require.NoError(t, err)

	var fetchHist *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "menumaker_image_fetch_duration_seconds" {
			fetchHist = mf
		}
	}
	require.NotNil(t, fetchHist)
	require.Len(t, fetchHist.GetMetric(), 1)
	assert.Equal(t, uint64(3), fetchHist.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestGenerationMetricsDoubleRegistrationFails(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewGenerationMetrics(registry)
	require.NoError(t, err)

	_, err = NewGenerationMetrics(registry)
	require.Error(t, err)
}

func TestHTTPMetricsOutboundStatus(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewHTTPMetrics(registry)
	require.NoError(t, err)

	m.RecordOutboundRequest("api.pexels.com", 200)
	m.RecordOutboundRequest("api.pexels.com", 0)
	m.RecordHTTPRequest("GET", "/health", 200, 0.01)

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.outboundRequestsTotal.WithLabelValues("api.pexels.com", "200")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.outboundRequestsTotal.WithLabelValues("api.pexels.com", LabelError)), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/health", "200")), 0)
}
