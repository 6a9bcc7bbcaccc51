package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/catapult/internal/domain"
)

func sampleRun() *domain.RunResult {
	return &domain.RunResult{
		RunID:      "run-1",
		Chain:      "base",
		FinishedAt: time.Unix(1_700_000_000, 0),
		Components: []domain.ComponentResult{
			{Name: "vault", Status: domain.StatusDeployed, Duration: 12 * time.Second, Verification: &domain.VerifyResult{Protocol: domain.ProtocolCompileAndMatch, Verified: true}},
			{Name: "configManager", Status: domain.StatusReused},
			{Name: "vaultFactory", Status: domain.StatusFailed},
			{Name: "lpValidator", Status: domain.StatusSkipped},
		},
		Initializations: []domain.InitResult{
			{Step: "vaultFactory.initialize", Status: domain.InitSkipped},
		},
	}
}

func TestRecorder_RecordRun(t *testing.T) {
	r := NewRecorder()
	r.RecordRun(sampleRun())

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("base", "partial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.components.WithLabelValues("base", "deployed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.components.WithLabelValues("base", "skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.initializations.WithLabelValues("base", "skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.verifications.WithLabelValues("base", "compile-and-match", "true")))
	assert.Equal(t, 1_700_000_000.0, testutil.ToFloat64(r.lastRun.WithLabelValues("base")))
}

func TestRecorder_SkipsDryRun(t *testing.T) {
	r := NewRecorder()
	run := sampleRun()
	run.DryRun = true
	r.RecordRun(run)

	assert.Equal(t, 0, testutil.CollectAndCount(r.runs))
}

func TestRecorder_Flush(t *testing.T) {
	r := NewRecorder()
	r.RecordRun(sampleRun())

	path := filepath.Join(t.TempDir(), "metrics", "catapult.prom")
	require.NoError(t, r.Flush(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `catapult_runs_total{chain="base",outcome="partial"} 1`)
	assert.Contains(t, string(data), "catapult_deploy_duration_seconds_count")
}
