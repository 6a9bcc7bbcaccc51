package metrics

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// Recorder collects run outcomes in its own registry and writes them in the
// node_exporter textfile format
type Recorder struct {
	mu       sync.Mutex
	registry *prometheus.Registry

	runs            *prometheus.CounterVec
	components      *prometheus.CounterVec
	initializations *prometheus.CounterVec
	verifications   *prometheus.CounterVec
	deployDuration  *prometheus.HistogramVec
	lastRun         *prometheus.GaugeVec
}

var _ usecase.MetricsRecorder = (*Recorder)(nil)

// NewRecorder creates a recorder with a private registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catapult_runs_total",
			Help: "Deployment runs by chain and outcome",
		}, []string{"chain", "outcome"}),
		components: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catapult_components_total",
			Help: "Component results by chain and status",
		}, []string{"chain", "status"}),
		initializations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catapult_initializations_total",
			Help: "Initialization step results by chain and status",
		}, []string{"chain", "status"}),
		verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "catapult_verifications_total",
			Help: "Verification results by chain and protocol",
		}, []string{"chain", "protocol", "verified"}),
		deployDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catapult_deploy_duration_seconds",
			Help:    "Time to deploy one component, settle delay included",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		}, []string{"chain"}),
		lastRun: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "catapult_last_run_timestamp_seconds",
			Help: "Unix time the last run on a chain finished",
		}, []string{"chain"}),
	}
}

// RecordRun adds the outcome of a run. Dry runs are not recorded.
func (r *Recorder) RecordRun(result *domain.RunResult) {
	if result == nil || result.DryRun {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	outcome := "success"
	for _, c := range result.Components {
		r.components.WithLabelValues(result.Chain, string(c.Status)).Inc()
		if c.Status == domain.StatusDeployed {
			r.deployDuration.WithLabelValues(result.Chain).Observe(c.Duration.Seconds())
		}
		if !c.Status.HasAddress() {
			outcome = "partial"
		}
		if c.Verification != nil {
			verified := "false"
			if c.Verification.Verified {
				verified = "true"
			}
			r.verifications.WithLabelValues(result.Chain, string(c.Verification.Protocol), verified).Inc()
		}
	}
	for _, init := range result.Initializations {
		r.initializations.WithLabelValues(result.Chain, string(init.Status)).Inc()
		if init.Status == domain.InitFailed || init.Status == domain.InitSkipped {
			outcome = "partial"
		}
	}
	if result.Cancelled {
		outcome = "cancelled"
	}

	r.runs.WithLabelValues(result.Chain, outcome).Inc()
	r.lastRun.WithLabelValues(result.Chain).Set(float64(result.FinishedAt.Unix()))
}

// Flush writes every collected metric to path
func (r *Recorder) Flush(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
