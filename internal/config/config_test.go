package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geofencer/internal/monitor"
)

func chtemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "geofencer.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "native", cfg.Monitor.Mode)
	assert.Equal(t, monitor.DefaultCapacity, cfg.Monitor.Capacity)
	assert.Equal(t, "continuous", cfg.Monitor.Strategy)
	assert.Equal(t, 1000, cfg.Replay.IntervalMS)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chtemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/geofencer
monitor:
  mode: software
  capacity: 10
  strategy: coarse
  distance_filter_m: 25.5
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "software", cfg.Monitor.Mode)
	assert.Equal(t, 10, cfg.Monitor.Capacity)
	assert.Equal(t, "coarse", cfg.Monitor.Strategy)
	assert.InDelta(t, 25.5, cfg.Monitor.DistanceFilterM, 0.001)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 1000, cfg.Replay.IntervalMS)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chtemp(t)

	yaml := `
monitor:
  mode: native
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("GEOFENCER_MONITOR_MODE", "software")
	t.Setenv("GEOFENCER_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "software", cfg.Monitor.Mode)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestToMonitor(t *testing.T) {
	mc := MonitorConfig{
		Mode:             "software",
		Capacity:         5,
		Strategy:         "continuous",
		Authorization:    "always",
		DistanceFilterM:  10,
		DesiredAccuracyM: 50,
		ActivityType:     "fitness",
		AutoPause:        true,
		AllowBackground:  true,
	}

	got, err := mc.ToMonitor()
	require.NoError(t, err)
	assert.Equal(t, monitor.ModeSoftware, got.Mode)
	assert.Equal(t, 5, got.Capacity)
	assert.Equal(t, monitor.StrategyContinuous, got.Strategy)
	assert.Equal(t, monitor.AuthorizationAlways, got.RequiredAuthorization)
	assert.Equal(t, 10.0, got.Continuous.DistanceFilter)
	assert.Equal(t, "fitness", got.Continuous.ActivityType)
	assert.True(t, got.Continuous.AutoPause)
	assert.True(t, got.Continuous.AllowBackground)
}

func TestToMonitorUnknownAuthorization(t *testing.T) {
	_, err := MonitorConfig{Mode: "native", Authorization: "sometimes"}.ToMonitor()
	assert.Error(t, err)
}

func TestToMonitorEmptyAuthorizationDerived(t *testing.T) {
	got, err := MonitorConfig{Mode: "native"}.ToMonitor()
	require.NoError(t, err)
	assert.Equal(t, monitor.AuthorizationNotDetermined, got.RequiredAuthorization)
}

func TestInitLoggerVerbosity(t *testing.T) {
	tests := []struct {
		name      string
		cfg       LogConfig
		wantError bool
	}{
		{name: "defaults", cfg: LogConfig{Level: "info", Format: "json"}},
		{name: "console format", cfg: LogConfig{Level: "debug", Format: "console"}},
		{name: "silent verbosity", cfg: LogConfig{Level: "info", Verbosity: "silent"}},
		{name: "verbose verbosity", cfg: LogConfig{Level: "warn", Verbosity: "verbose"}},
		{name: "bad level", cfg: LogConfig{Level: "chatty"}, wantError: true},
		{name: "bad verbosity", cfg: LogConfig{Level: "info", Verbosity: "loud"}, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitLogger(tt.cfg)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
