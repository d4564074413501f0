package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "processed.mp4", cfg.OutputName)
	assert.Equal(t, "resize", cfg.Operation)
	assert.Zero(t, cfg.Scale)
	assert.Equal(t, 5, cfg.KSize)
	assert.Equal(t, 1, cfg.Parallel)
	assert.Equal(t, "mp4v", cfg.FourCC)
	assert.Empty(t, cfg.S3Endpoint)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("VIDEOPROC_OPERATION", "blur")
	t.Setenv("VIDEOPROC_KSIZE", "9")
	t.Setenv("METRICS_PORT", "9100")
	t.Setenv("S3_USE_SSL", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "blur", cfg.Operation)
	assert.Equal(t, 9, cfg.KSize)
	assert.Equal(t, 9100, cfg.MetricsPort)
	assert.True(t, cfg.S3UseSSL)
}

func TestLoadRejectsBadNumber(t *testing.T) {
	t.Setenv("VIDEOPROC_SCALE", "half")
	_, err := Load()
	assert.Error(t, err)
}
