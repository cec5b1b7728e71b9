package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 8089, cfg.Server.ListenPort)
	assert.False(t, cfg.Ledger.EnsureFundedEnabled)
	assert.Equal(t, int64(7*24*60*60), cfg.Escrow.RescueDelaySeconds)
}

func TestLoadEnvOverride(t *testing.T) {
	os.Setenv("ESCROWD_ESCROW_RESCUE_DELAY_SECONDS", "1800")
	defer os.Unsetenv("ESCROWD_ESCROW_RESCUE_DELAY_SECONDS")

	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, int64(1800), cfg.Escrow.RescueDelaySeconds)
}
