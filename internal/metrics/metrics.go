// Package metrics provides the centralized Prometheus metrics registry for
// the prediction pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PipelineRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "longball",
		Name:      "pipeline_runs_total",
		Help:      "Total number of prediction pipeline runs",
	})
	PipelineFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "longball",
		Name:      "pipeline_failures_total",
		Help:      "Total number of failed pipeline runs",
	})
	ModelsTrainedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "longball",
		Name:      "models_trained_total",
		Help:      "Total number of classifier variants trained successfully",
	})
	ModelsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "longball",
		Name:      "models_failed_total",
		Help:      "Total number of classifier variants that failed to fit",
	})
	RowsScoredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "longball",
		Name:      "rows_scored_total",
		Help:      "Total number of prediction rows scored",
	})
	TablesLoadedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "longball",
		Name:      "tables_loaded_total",
		Help:      "Total number of input tables loaded",
	}, []string{"table", "format"})
)

// Gauge metrics
var (
	FeaturesRetained = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "longball",
		Name:      "features_retained",
		Help:      "Number of features retained after correlation pruning",
	})
	FeaturesDropped = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "longball",
		Name:      "features_dropped",
		Help:      "Number of features dropped by correlation pruning",
	})
	EnsembleMembers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "longball",
		Name:      "ensemble_members",
		Help:      "Number of classifiers in the soft-voting ensemble",
	})
	ValidationAUC = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "longball",
		Name:      "validation_auc",
		Help:      "Ensemble AUC on the holdout validation split",
	})
	ValidationLogLoss = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "longball",
		Name:      "validation_log_loss",
		Help:      "Ensemble log loss on the holdout validation split",
	})
)

// Histogram metrics
var (
	StageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "longball",
		Name:      "stage_duration_seconds",
		Help:      "Duration of each pipeline stage in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
	}, []string{"stage"})
	TableLoadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "longball",
		Name:      "table_load_duration_seconds",
		Help:      "Duration of table fetch and normalization in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(PipelineRunsTotal)
		registry.MustRegister(PipelineFailuresTotal)
		registry.MustRegister(ModelsTrainedTotal)
		registry.MustRegister(ModelsFailedTotal)
		registry.MustRegister(RowsScoredTotal)
		registry.MustRegister(TablesLoadedTotal)

		// Register gauge metrics
		registry.MustRegister(FeaturesRetained)
		registry.MustRegister(FeaturesDropped)
		registry.MustRegister(EnsembleMembers)
		registry.MustRegister(ValidationAUC)
		registry.MustRegister(ValidationLogLoss)

		// Register histogram metrics
		registry.MustRegister(StageDuration)
		registry.MustRegister(TableLoadDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordRun records a completed pipeline run.
func RecordRun(failed bool) {
	PipelineRunsTotal.Inc()
	if failed {
		PipelineFailuresTotal.Inc()
	}
}

// RecordModelFit records one classifier variant fit outcome.
func RecordModelFit(ok bool) {
	if ok {
		ModelsTrainedTotal.Inc()
		return
	}
	ModelsFailedTotal.Inc()
}

// RecordTableLoaded records a loaded input table.
func RecordTableLoaded(table, format string, durationSeconds float64) {
	TablesLoadedTotal.WithLabelValues(table, format).Inc()
	TableLoadDuration.Observe(durationSeconds)
}

// RecordRowsScored adds to the scored-rows counter.
func RecordRowsScored(n int) {
	RowsScoredTotal.Add(float64(n))
}

// RecordStageDuration records one pipeline stage's duration.
func RecordStageDuration(stage string, durationSeconds float64) {
	StageDuration.WithLabelValues(stage).Observe(durationSeconds)
}

// UpdateFeatureCounts updates the reconciliation gauges.
func UpdateFeatureCounts(retained, dropped int) {
	FeaturesRetained.Set(float64(retained))
	FeaturesDropped.Set(float64(dropped))
}

// UpdateValidation updates the ensemble quality gauges.
func UpdateValidation(members int, auc, logLoss float64) {
	EnsembleMembers.Set(float64(members))
	ValidationAUC.Set(auc)
	ValidationLogLoss.Set(logLoss)
}
