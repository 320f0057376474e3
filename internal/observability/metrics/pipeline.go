package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics observes per-product enhancement runs. It satisfies the
// orchestrator's StageObserver contract.
type PipelineMetrics struct {
	registry *prometheus.Registry
	service  string

	enhanceTotal     *prometheus.CounterVec
	enhanceDuration  *prometheus.HistogramVec
	enhanceInFlight  prometheus.Gauge
	stageSourceTotal *prometheus.CounterVec
	overallScore     *prometheus.HistogramVec
	queueLag         *prometheus.HistogramVec
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	enhanceTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "listing",
			Subsystem: "pipeline",
			Name:      "products_enhanced_total",
			Help:      "Total products run through the pipeline by marketplace and status.",
		},
		[]string{"service", "marketplace", "status"},
	)
	enhanceDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "listing",
			Subsystem: "pipeline",
			Name:      "enhance_duration_seconds",
			Help:      "Full pipeline duration per product.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "marketplace"},
	)
	enhanceInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "listing",
			Subsystem: "pipeline",
			Name:      "enhance_in_flight",
			Help:      "Number of products currently in the pipeline.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	stageSourceTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "listing",
			Subsystem: "pipeline",
			Name:      "stage_source_total",
			Help:      "Per-stage result source: model output vs deterministic fallback.",
		},
		[]string{"service", "stage", "source"},
	)
	overallScore := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "listing",
			Subsystem: "pipeline",
			Name:      "overall_score",
			Help:      "Distribution of overall readiness scores.",
			Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"service", "marketplace"},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "listing",
			Subsystem: "pipeline",
			Name:      "queue_lag_seconds",
			Help:      "Delay between enhance request publication and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(enhanceTotal, enhanceDuration, enhanceInFlight, stageSourceTotal, overallScore, queueLag)

	return &PipelineMetrics{
		registry:         registry,
		service:          service,
		enhanceTotal:     enhanceTotal,
		enhanceDuration:  enhanceDuration,
		enhanceInFlight:  enhanceInFlight,
		stageSourceTotal: stageSourceTotal,
		overallScore:     overallScore,
		queueLag:         queueLag,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *PipelineMetrics) StartProduct() {
	m.enhanceInFlight.Inc()
}

func (m *PipelineMetrics) FinishProduct() {
	m.enhanceInFlight.Dec()
}

// ObserveStage implements the orchestrator's StageObserver.
func (m *PipelineMetrics) ObserveStage(stage string, usedAI bool) {
	source := "fallback"
	if usedAI {
		source = "model"
	}
	m.stageSourceTotal.WithLabelValues(m.service, stage, source).Inc()
}

// ObserveProduct implements the orchestrator's StageObserver.
func (m *PipelineMetrics) ObserveProduct(marketplace string, overallScore int, failed bool, duration time.Duration) {
	status := "success"
	if failed {
		status = "error"
	}
	m.enhanceTotal.WithLabelValues(m.service, marketplace, status).Inc()
	if !failed {
		m.enhanceDuration.WithLabelValues(m.service, marketplace).Observe(duration.Seconds())
		m.overallScore.WithLabelValues(m.service, marketplace).Observe(float64(overallScore))
	}
}

func (m *PipelineMetrics) ObserveQueueLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(m.service).Observe(lag.Seconds())
}
