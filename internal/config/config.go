package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the per-environment service settings. Secrets never
// live here, they come from the environment.
type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	MetricsPort int    `toml:"metrics_port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// strava
	StravaAPIBase  string `toml:"strava_api_base"`
	StravaTokenURL string `toml:"strava_token_url"`

	// google sheets
	SheetID         string `toml:"sheet_id"`
	SheetRange      string `toml:"sheet_range"`
	CredentialsFile string `toml:"credentials_file"`

	// data locations
	DataDir         string `toml:"data_dir"`
	HugoDataDir     string `toml:"hugo_data_dir"`
	WorkoutsFile    string `toml:"workouts_file"`
	PrometheusScope string `toml:"prometheus_scope"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML config file and returns the section for the
// given environment.
func Load(env, path string) (*Config, error) {
	configBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var configToml Toml
	if err := toml.Unmarshal(configBytes, &configToml); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg, err := configToml.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section for env %s is empty", env)
	}

	return cfg, nil
}

// Secrets holds the credentials read from the environment.
type Secrets struct {
	StravaClientID     string
	StravaClientSecret string
	StravaRefreshToken string
	SheetsCredentials  string
	SentryDSN          string
}

// SecretsFromEnv reads all secrets from the environment. Missing
// values stay empty, callers decide what is required.
func SecretsFromEnv() Secrets {
	return Secrets{
		StravaClientID:     os.Getenv("STRAVA_CLIENT_ID"),
		StravaClientSecret: os.Getenv("STRAVA_CLIENT_SECRET"),
		StravaRefreshToken: os.Getenv("STRAVA_REFRESH_TOKEN"),
		SheetsCredentials:  os.Getenv("GOOGLE_SHEETS_CREDENTIALS"),
		SentryDSN:          os.Getenv("SENTRY_DSN"),
	}
}
