package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	assert.NoError(t, Defaults().Validate())
}

func TestLoadWithNoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults().ListenAddr, cfg.ListenAddr)
	assert.Equal(t, Defaults().MaxRetries, cfg.MaxRetries)
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orcd.yaml")
	contents := "listen_addr: \":9090\"\nmax_retries: 5\ncpu_eligibility_threshold: 70\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 70.0, cfg.CPUEligibilityThreshold)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Defaults()
	cfg.ListenAddr = ""
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.CPUEligibilityThreshold = 150
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.FailureThreshold = 0
	assert.Error(t, cfg.Validate())
}
