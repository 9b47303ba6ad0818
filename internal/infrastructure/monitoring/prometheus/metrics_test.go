package prometheus

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)
	return m, c
}

func TestNewAppMetrics_AllMetricsRegistered(t *testing.T) {
	m, _ := newTestAppMetrics(t)
	require.NotNil(t, m)

	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.HTTPActiveRequests)
	assert.NotNil(t, m.AnalysesTotal)
	assert.NotNil(t, m.AnalysisDuration)
	assert.NotNil(t, m.DetectorDuration)
	assert.NotNil(t, m.DetectorFailures)
	assert.NotNil(t, m.PatternsFound)
	assert.NotNil(t, m.AnalysisRiskScore)
	assert.NotNil(t, m.CentralityIterations)
	assert.NotNil(t, m.GraphQueryDuration)
	assert.NotNil(t, m.GraphNodesExtracted)
	assert.NotNil(t, m.GraphEdgesExtracted)
	assert.NotNil(t, m.MalformedEdgesTotal)
	assert.NotNil(t, m.CacheHitsTotal)
	assert.NotNil(t, m.CacheMissesTotal)
	assert.NotNil(t, m.AlertsPublishedTotal)
	assert.NotNil(t, m.MessageProcessDuration)
	assert.NotNil(t, m.HealthCheckStatus)
	assert.NotNil(t, m.ErrorsTotal)
}

func TestRecordHTTPRequest(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordHTTPRequest(m, "POST", "/api/v1/analyses", 201, 100*time.Millisecond)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_http_requests_total{method="POST",path="/api/v1/analyses",status_code="201"} 1`)
	assert.Contains(t, output, `test_unit_http_request_duration_seconds_count{method="POST",path="/api/v1/analyses"} 1`)
}

func TestRecordDetectorRun_Success(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordDetectorRun(m, "shell_chain", 50*time.Millisecond, nil, "")

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_detector_duration_seconds_count{detector="shell_chain"} 1`)
	assert.NotContains(t, output, "test_unit_detector_failures_total")
}

func TestRecordDetectorRun_Failure(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordDetectorRun(m, "circular_trade", 5*time.Millisecond, errors.New("boom"), "FRD_002")

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_detector_failures_total{code="FRD_002",detector="circular_trade"} 1`)
}

func TestRecordGraphQuery_Error(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordGraphQuery(m, "neighborhood", 10*time.Millisecond, errors.New("store down"))

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_graph_query_duration_seconds_count{query="neighborhood"} 1`)
	assert.Contains(t, output, `test_unit_errors_total{component="graph_store",error_type="query_error",severity="error"} 1`)
}

func TestRecordCacheAccess(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordCacheAccess(m, "analysis_result", true)
	RecordCacheAccess(m, "analysis_result", false)
	RecordCacheAccess(m, "analysis_result", false)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_cache_hits_total{cache="analysis_result"} 1`)
	assert.Contains(t, output, `test_unit_cache_misses_total{cache="analysis_result"} 2`)
}

func TestRecordError(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordError(m, "alert_publisher", "publish_failed", "warning")

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_errors_total{component="alert_publisher",error_type="publish_failed",severity="warning"} 1`)
}

func TestDefaultBuckets_Defined(t *testing.T) {
	assert.NotEmpty(t, DefaultHTTPDurationBuckets)
	assert.NotEmpty(t, DefaultAnalysisDurationBuckets)
	assert.NotEmpty(t, DefaultDBDurationBuckets)
	assert.NotEmpty(t, DefaultScoreBuckets)
	assert.NotEmpty(t, DefaultCountBuckets)

	// Risk scores are bounded, so the score buckets must cover [0, 1].
	assert.Equal(t, 0.0, DefaultScoreBuckets[0])
	assert.Equal(t, 1.0, DefaultScoreBuckets[len(DefaultScoreBuckets)-1])
}

func TestConcurrentMetricRecording(t *testing.T) {
	m, c := newTestAppMetrics(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				RecordHTTPRequest(m, "GET", "/path", 200, time.Millisecond)
			}
		}()
	}
	wg.Wait()

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_http_requests_total{method="GET",path="/path",status_code="200"} 1000`)
}
