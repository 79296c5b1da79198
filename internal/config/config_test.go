package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mstanek/fitsite/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testConfig = `
[development]
environment = "development"
host = "localhost"
port = 8080
metrics_port = 2112
log_level = "trace"
log_to_stdout = true
data_dir = "data"
hugo_data_dir = "site/data"

[production]
environment = "production"
host = ""
port = 9000
metrics_port = 2112
log_level = "debug"
logs_path = "/var/log/fitsite/service.log"
sentry_enabled = true
data_dir = "/var/lib/fitsite/data"
hugo_data_dir = "/var/www/site/data"
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeTestConfig(t)

	t.Run("development", func(t *testing.T) {
		cfg, err := config.Load("development", path)
		require.NoError(t, err)
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "trace", cfg.LogLevel)
		assert.True(t, cfg.LogToStdout)
		assert.False(t, cfg.SentryEnabled)
	})

	t.Run("short env names work too", func(t *testing.T) {
		cfg, err := config.Load("prod", path)
		require.NoError(t, err)
		assert.Equal(t, 9000, cfg.Port)
		assert.True(t, cfg.SentryEnabled)
		assert.Equal(t, "/var/lib/fitsite/data", cfg.DataDir)
	})

	t.Run("unknown env", func(t *testing.T) {
		_, err := config.Load("staging", path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load("development", filepath.Join(t.TempDir(), "nope.toml"))
		assert.Error(t, err)
	})

	t.Run("missing section", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[development]\nport = 8080\n"), 0o644))
		_, err := config.Load("production", path)
		assert.Error(t, err)
	})
}

func TestSecretsFromEnv(t *testing.T) {
	t.Setenv("STRAVA_CLIENT_ID", "12345")
	t.Setenv("STRAVA_CLIENT_SECRET", "shh")
	t.Setenv("STRAVA_REFRESH_TOKEN", "refresh-me")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS", `{"type":"service_account"}`)
	t.Setenv("SENTRY_DSN", "")

	secrets := config.SecretsFromEnv()

	assert.Equal(t, "12345", secrets.StravaClientID)
	assert.Equal(t, "shh", secrets.StravaClientSecret)
	assert.Equal(t, "refresh-me", secrets.StravaRefreshToken)
	assert.NotEmpty(t, secrets.SheetsCredentials)
	assert.Empty(t, secrets.SentryDSN)
}
