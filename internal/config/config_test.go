package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.EqualValues(t, 100, cfg.Billing.FeePerInterval)
	require.Equal(t, 10, cfg.Billing.IntervalMinutes)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "http:\n  addr: \":9999\"\nbilling:\n  fee_per_interval: 250\n  interval_minutes: 15\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, ":9999", cfg.HTTP.Addr)
	require.EqualValues(t, 250, cfg.Billing.FeePerInterval)
	require.Equal(t, 15, cfg.Billing.IntervalMinutes)
}

func TestLoadRejectsNonPositiveBilling(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("billing:\n  interval_minutes: 0\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
