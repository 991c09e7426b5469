package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pndinxx/courserank/config"
)

// Telemetry records pipeline metrics on a prometheus registry. A nil
// *Telemetry is valid and records nothing, so callers never need to guard.
type Telemetry struct {
	pipelineRuns     *prometheus.CounterVec
	pipelineDuration *prometheus.HistogramVec
	modelCalls       *prometheus.CounterVec
	fallbacks        *prometheus.CounterVec
	repairs          *prometheus.CounterVec
	searches         *prometheus.CounterVec
	searchResults    *prometheus.HistogramVec
	placements       *prometheus.CounterVec
	rejections       *prometheus.CounterVec
}

// New creates a telemetry instance and registers its collectors. Returns nil
// when telemetry is disabled.
func New(cfg config.TelemetryConfig, reg prometheus.Registerer) *Telemetry {
	if !cfg.Enabled {
		return nil
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = "courserank"
	}
	t := &Telemetry{
		pipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "pipeline_runs_total",
			Help: "Completed pipeline runs by mode and outcome.",
		}, []string{"mode", "outcome"}),
		pipelineDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Name: "pipeline_duration_seconds",
			Help:    "Wall time of a full pipeline run.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"mode"}),
		modelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "model_calls_total",
			Help: "Model invocations by role, model and outcome.",
		}, []string{"role", "model", "outcome"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "model_fallbacks_total",
			Help: "Escalations past a role's primary model.",
		}, []string{"role"}),
		repairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "guardrail_repairs_total",
			Help: "JSON guardrail repair attempts by outcome.",
		}, []string{"outcome"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "searches_total",
			Help: "Search provider calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		searchResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Name: "search_results",
			Help:    "Result count per search call.",
			Buckets: prometheus.LinearBuckets(0, 2, 8),
		}, []string{"provider"}),
		placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "tier_placements_total",
			Help: "Successful card placements by list and tier.",
		}, []string{"list", "tier"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "tier_placements_rejected_total",
			Help: "Placements rejected because the tier row was full.",
		}, []string{"list", "tier"}),
	}
	if reg != nil {
		reg.MustRegister(
			t.pipelineRuns, t.pipelineDuration, t.modelCalls, t.fallbacks,
			t.repairs, t.searches, t.searchResults, t.placements, t.rejections,
		)
	}
	return t
}

func (t *Telemetry) RecordPipeline(mode, outcome string, d time.Duration) {
	if t == nil {
		return
	}
	t.pipelineRuns.WithLabelValues(mode, outcome).Inc()
	t.pipelineDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (t *Telemetry) RecordModelCall(role, model, outcome string) {
	if t == nil {
		return
	}
	t.modelCalls.WithLabelValues(role, model, outcome).Inc()
}

func (t *Telemetry) RecordFallback(role string) {
	if t == nil {
		return
	}
	t.fallbacks.WithLabelValues(role).Inc()
}

func (t *Telemetry) RecordRepair(outcome string) {
	if t == nil {
		return
	}
	t.repairs.WithLabelValues(outcome).Inc()
}

func (t *Telemetry) RecordSearch(provider, outcome string, results int) {
	if t == nil {
		return
	}
	t.searches.WithLabelValues(provider, outcome).Inc()
	if outcome == "ok" {
		t.searchResults.WithLabelValues(provider).Observe(float64(results))
	}
}

func (t *Telemetry) RecordPlacement(list, tier string) {
	if t == nil {
		return
	}
	t.placements.WithLabelValues(list, tier).Inc()
}

func (t *Telemetry) RecordRejection(list, tier string) {
	if t == nil {
		return
	}
	t.rejections.WithLabelValues(list, tier).Inc()
}
