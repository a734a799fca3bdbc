// Package metrics provides the centralized Prometheus metrics registry for the analyser.
package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "overtake"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analyses_total",
		Help:      "Total number of overtaking analyses by mode and status",
	}, []string{"mode", "status"})
	WebhookDeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_deliveries_total",
		Help:      "Total number of result webhook deliveries by status",
	}, []string{"status"})
	ScheduledRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduled_runs_total",
		Help:      "Total number of scheduled scenario runs by scenario and status",
	}, []string{"scenario", "status"})
)

// Gauge metrics
var (
	SectionProbability = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "section_probability",
		Help:      "Mean overtake probability per section from the latest analysis",
	}, []string{"section"})
	MeanProbability = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mean_probability",
		Help:      "Mean overtake probability across sections from the latest analysis",
	})
	CacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cache_hit_ratio",
		Help:      "Hit ratio of the analysis result cache",
	})
	StreamClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_clients",
		Help:      "Number of connected websocket stream clients",
	})
)

// Histogram metrics
var (
	AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "analysis_duration_seconds",
		Help:      "Duration of overtaking analyses in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(AnalysesTotal)
		registry.MustRegister(WebhookDeliveriesTotal)
		registry.MustRegister(ScheduledRunsTotal)

		registry.MustRegister(SectionProbability)
		registry.MustRegister(MeanProbability)
		registry.MustRegister(CacheHitRatio)
		registry.MustRegister(StreamClients)

		registry.MustRegister(AnalysisDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordAnalysis records a finished analysis and its duration.
func RecordAnalysis(mode, status string, durationSeconds float64) {
	AnalysesTotal.WithLabelValues(mode, status).Inc()
	if status == StatusSuccess {
		AnalysisDuration.Observe(durationSeconds)
	}
}

// RecordSectionProbabilities replaces the per-section gauges with the latest run.
func RecordSectionProbabilities(probabilities []float64, mean float64) {
	SectionProbability.Reset()
	for i, p := range probabilities {
		SectionProbability.WithLabelValues(strconv.Itoa(i)).Set(p)
	}
	MeanProbability.Set(mean)
}

// RecordWebhookDelivery records a webhook delivery outcome.
func RecordWebhookDelivery(status string) {
	WebhookDeliveriesTotal.WithLabelValues(status).Inc()
}

// RecordScheduledRun records a scheduled scenario outcome.
func RecordScheduledRun(scenario, status string) {
	ScheduledRunsTotal.WithLabelValues(scenario, status).Inc()
}

// UpdateCacheHitRatio updates the cache hit ratio gauge.
func UpdateCacheHitRatio(ratio float64) {
	CacheHitRatio.Set(ratio)
}

// UpdateStreamClients updates the connected stream clients gauge.
func UpdateStreamClients(count int) {
	StreamClients.Set(float64(count))
}

// Status label values
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusCached  = "cached"
)
