package prometheus

import (
	"fmt"
	"time"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP Layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Analysis Layer
	AnalysesTotal        CounterVec
	AnalysisDuration     HistogramVec
	DetectorDuration     HistogramVec
	DetectorFailures     CounterVec
	PatternsFound        CounterVec
	AnalysisRiskScore    HistogramVec
	CentralityIterations HistogramVec

	// Graph Layer
	GraphQueryDuration  HistogramVec
	GraphNodesExtracted HistogramVec
	GraphEdgesExtracted HistogramVec
	MalformedEdgesTotal CounterVec

	// Infrastructure Layer
	CacheHitsTotal         CounterVec
	CacheMissesTotal       CounterVec
	AlertsPublishedTotal   CounterVec
	MessageProcessDuration HistogramVec

	// System Health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default Buckets
var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultAnalysisDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}
	DefaultDBDurationBuckets       = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
	DefaultScoreBuckets            = []float64{0, .1, .2, .3, .4, .5, .6, .7, .8, .9, .95, 1}
	DefaultCountBuckets            = []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000}
)

// NewAppMetrics registers all metrics and returns AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	// Analysis
	m.AnalysesTotal = collector.RegisterCounter("analyses_total", "Completed entity analyses", "status")
	m.AnalysisDuration = collector.RegisterHistogram("analysis_duration_seconds", "End-to-end analysis duration", DefaultAnalysisDurationBuckets, "source")
	m.DetectorDuration = collector.RegisterHistogram("detector_duration_seconds", "Per-detector run duration", DefaultAnalysisDurationBuckets, "detector")
	m.DetectorFailures = collector.RegisterCounter("detector_failures_total", "Detector failures isolated from the analysis result", "detector", "code")
	m.PatternsFound = collector.RegisterCounter("patterns_found_total", "Fraud patterns reported", "pattern_type")
	m.AnalysisRiskScore = collector.RegisterHistogram("analysis_risk_score", "Aggregated entity risk scores", DefaultScoreBuckets, "source")
	m.CentralityIterations = collector.RegisterHistogram("centrality_iterations", "PageRank iterations until convergence", []float64{1, 2, 5, 10, 15, 20}, "detector")

	// Graph
	m.GraphQueryDuration = collector.RegisterHistogram("graph_query_duration_seconds", "Graph store query duration", DefaultDBDurationBuckets, "query")
	m.GraphNodesExtracted = collector.RegisterHistogram("graph_nodes_extracted", "Nodes per extracted neighborhood", DefaultCountBuckets, "hops")
	m.GraphEdgesExtracted = collector.RegisterHistogram("graph_edges_extracted", "Edges per extracted neighborhood", DefaultCountBuckets, "hops")
	m.MalformedEdgesTotal = collector.RegisterCounter("malformed_edges_total", "Edges skipped due to malformed attributes", "edge_type")

	// Infrastructure
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.AlertsPublishedTotal = collector.RegisterCounter("alerts_published_total", "Fraud alerts published to the broker", "topic", "status")
	m.MessageProcessDuration = collector.RegisterHistogram("mq_process_duration_seconds", "Message processing duration", DefaultHTTPDurationBuckets, "queue", "message_type")

	// System Health
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type", "severity")

	return m
}

// RegisterAppMetrics is an alias for NewAppMetrics.
func RegisterAppMetrics(collector MetricsCollector) *AppMetrics {
	return NewAppMetrics(collector)
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	status := fmt.Sprintf("%d", statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordDetectorRun(metrics *AppMetrics, detector string, duration time.Duration, err error, errCode string) {
	metrics.DetectorDuration.WithLabelValues(detector).Observe(duration.Seconds())
	if err != nil {
		metrics.DetectorFailures.WithLabelValues(detector, errCode).Inc()
	}
}

func RecordGraphQuery(metrics *AppMetrics, query string, duration time.Duration, err error) {
	metrics.GraphQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("graph_store", "query_error", "error").Inc()
	}
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordError(metrics *AppMetrics, component, errorType, severity string) {
	metrics.ErrorsTotal.WithLabelValues(component, errorType, severity).Inc()
}
