package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder forwards build metrics to a Prometheus registry.
type PrometheusRecorder struct {
	stageDuration   *prometheus.HistogramVec
	buildDuration   prometheus.Histogram
	stageResults    *prometheus.CounterVec
	buildOutcomes   *prometheus.CounterVec
	pagesTotal      *prometheus.CounterVec
	assetsProcessed prometheus.Counter
}

// NewPrometheusRecorder registers the build metric collectors with reg.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sitesmith_stage_duration_seconds",
			Help:    "Duration of individual build stages.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		buildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sitesmith_build_duration_seconds",
			Help:    "Total build duration.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
		stageResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sitesmith_stage_results_total",
			Help: "Stage completions by result.",
		}, []string{"stage", "result"}),
		buildOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sitesmith_build_outcomes_total",
			Help: "Build completions by outcome.",
		}, []string{"outcome"}),
		pagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sitesmith_pages_total",
			Help: "Pages produced, by whether they were rendered or reused.",
		}, []string{"result"}),
		assetsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitesmith_assets_processed_total",
			Help: "Unique assets copied or transformed.",
		}),
	}
}

func (r *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (r *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	r.buildDuration.Observe(d.Seconds())
}

func (r *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	r.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (r *PrometheusRecorder) IncBuildOutcome(outcome string) {
	r.buildOutcomes.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRecorder) AddPagesRendered(n int) {
	r.pagesTotal.WithLabelValues("rendered").Add(float64(n))
}

func (r *PrometheusRecorder) AddPagesSkipped(n int) {
	r.pagesTotal.WithLabelValues("skipped").Add(float64(n))
}

func (r *PrometheusRecorder) AddAssetsProcessed(n int) {
	r.assetsProcessed.Add(float64(n))
}
