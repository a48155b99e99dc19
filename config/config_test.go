package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.7, cfg.DecisionThreshold)
	assert.Equal(t, 0.95, cfg.Emergency.OrchestrationGate)
	assert.Equal(t, 0.8, cfg.Emergency.PendingFloor)
	assert.Equal(t, 3, cfg.Retry.Attempts)
}

func TestValidateNormalizesZeroValues(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.Validate())

	def := Default()
	assert.Equal(t, def.DecisionThreshold, cfg.DecisionThreshold)
	assert.Equal(t, def.MaxAgentsPerBatch, cfg.MaxAgentsPerBatch)
	assert.Equal(t, def.Retry, cfg.Retry)
	assert.Equal(t, def.Monitoring, cfg.Monitoring)
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	cfg := Default()
	cfg.DecisionThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Emergency.PendingFloor = 0.99 // above the gate
	assert.Error(t, cfg.Validate())
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
decision_threshold: 0.6
retry:
  attempts: 5
  delay: 500ms
monitoring:
  max_latency_ms: 80
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.6, cfg.DecisionThreshold)
	assert.Equal(t, 5, cfg.Retry.Attempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.Delay)
	assert.Equal(t, float64(80), cfg.Monitoring.MaxLatencyMs)
	// Untouched knobs keep their defaults.
	assert.Equal(t, Default().Retry.Timeout, cfg.Retry.Timeout)
	assert.Equal(t, Default().Emergency, cfg.Emergency)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
