package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_ExplicitMissingFileIsAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err, "expected an error for an explicit missing file")
	require.Nil(t, cfg)
}

func TestLoad_EmptyFilenameFallsBackToDefaultsWhenNothingOnDisk(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 30, cfg.DefaultExpectTimeoutSeconds)
	require.NotEmpty(t, cfg.ExpectRetryIntervalsMs)
	require.Equal(t, 8791, cfg.Server.Port)
}

func TestLoad_MergesOverridesOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
defaultExpectTimeoutSeconds: 10
visionModel:
  endpoint: https://vision.example.com
  model: gpt-vision-test
remoteDesktop:
  host: 10.0.0.9
  port: 3390
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 10, cfg.DefaultExpectTimeoutSeconds)
	require.Equal(t, "https://vision.example.com", cfg.VisionModel.Endpoint)
	require.Equal(t, "gpt-vision-test", cfg.VisionModel.Model)
	require.Equal(t, "10.0.0.9", cfg.RemoteDesktop.Host)
	require.Equal(t, 3390, cfg.RemoteDesktop.Port)

	// Untouched defaults still apply.
	require.Equal(t, 200, cfg.PostActionDelayMs, "default PostActionDelayMs")
	require.Equal(t, 1920, cfg.RemoteDesktop.Width, "default RemoteDesktop.Width")
}
