package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "Airbnb_Open_Data.csv", cfg.Data.Source)

	assert.Equal(t, 0.99, cfg.Thresholds.MinNightsQuantile)
	assert.Equal(t, 0.15, cfg.Thresholds.BudgetTolerance)
	assert.Equal(t, 2, cfg.Thresholds.NightsTolerance)
	assert.Equal(t, 5, cfg.Thresholds.TopN)
	assert.Equal(t, 30, cfg.Thresholds.PriceBins)
	assert.Equal(t, 20, cfg.Thresholds.AvailabilityBins)
	assert.Equal(t, 20, cfg.Thresholds.ReviewsBins)

	assert.Equal(t, "none", cfg.Telemetry.TracesExporter)
	assert.Equal(t, 1024, cfg.WebSocket.ReadBufferSize)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
  read_timeout: 20s
data:
  source: /srv/listings.xlsx
  sheet: Listings
thresholds:
  top_n: 10
  budget_tolerance: 0.2
`)

	t.Run("file overrides defaults", func(t *testing.T) {
		cfg, err := LoadFrom(path)
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, 20*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout, "keys missing from the file keep defaults")
		assert.Equal(t, "/srv/listings.xlsx", cfg.Data.Source)
		assert.Equal(t, "Listings", cfg.Data.Sheet)
		assert.Equal(t, 10, cfg.Thresholds.TopN)
		assert.Equal(t, 0.2, cfg.Thresholds.BudgetTolerance)
		assert.Equal(t, 0.99, cfg.Thresholds.MinNightsQuantile)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("STAYPULSE_SERVER_PORT", "7070")
		t.Setenv("STAYPULSE_THRESHOLDS_TOP_N", "3")
		t.Setenv("STAYPULSE_SECURITY_ALLOWED_ORIGINS", "http://a.example,https://b.example")

		cfg, err := LoadFrom(path)
		require.NoError(t, err)

		assert.Equal(t, 7070, cfg.Server.Port)
		assert.Equal(t, 3, cfg.Thresholds.TopN)
		assert.Equal(t, 20*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, []string{"http://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
	})

	t.Run("file from environment", func(t *testing.T) {
		t.Setenv(ConfigFileEnv, path)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Server.Port)
	})
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "port out of range", env: map[string]string{"STAYPULSE_SERVER_PORT": "99999"}},
		{name: "port not a number", env: map[string]string{"STAYPULSE_SERVER_PORT": "eighty"}},
		{name: "quantile above one", env: map[string]string{"STAYPULSE_THRESHOLDS_MIN_NIGHTS_QUANTILE": "1.5"}},
		{name: "negative nights tolerance", env: map[string]string{"STAYPULSE_THRESHOLDS_NIGHTS_TOLERANCE": "-1"}},
		{name: "zero top n", env: map[string]string{"STAYPULSE_THRESHOLDS_TOP_N": "0"}},
		{name: "unknown traces exporter", env: map[string]string{"STAYPULSE_TELEMETRY_TRACES_EXPORTER": "jaeger"}},
		{name: "empty source", file: "data:\n  source: \"\"\n"},
		{name: "malformed file", file: "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(ConfigFileEnv, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFrom(path)
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidateNormalisesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestServerAddr(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8080", ServerConfig{Host: "127.0.0.1", Port: 8080}.Addr())
	assert.Equal(t, ":9090", ServerConfig{Port: 9090}.Addr())
}
