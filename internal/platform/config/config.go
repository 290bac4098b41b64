// Package config provides application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Port     int
	LogLevel string

	// Analysis limits
	CacheSize             int
	MaxUploadBytes        int64
	MaxConcurrentAnalyses int

	// Layout overrides; zero keeps the built-in default.
	LayoutVerticalSpacing float64
	LayoutGroupPadding    float64

	// Synced chart repository (optional)
	ChartRepoURL          string        // Git repo containing the chart (e.g., "https://github.com/org/charts")
	ChartRepoLocalPath    string        // Local path for clone (e.g., "/tmp/chart-graph-repo")
	ChartRepoChartPath    string        // Chart directory inside the repo (e.g., "charts/app")
	ChartRepoSyncInterval time.Duration // How often to pull (e.g., 10m); 0 disables background sync

	// GitHub access for github: sources (optional). A token wins over app credentials.
	GitHubToken          string
	GitHubAppID          int64
	GitHubInstallationID int64
	GitHubPrivateKey     string // PEM file contents

	// OpenTelemetry (optional)
	OTelEnabled bool // OTEL_ENABLED feature flag
}

// Load reads an optional .env file, then configuration from environment
// variables, applying defaults for everything that is unset.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:                  8080,
		LogLevel:              "info",
		CacheSize:             128,
		MaxUploadBytes:        10 << 20,
		MaxConcurrentAnalyses: 4,
	}

	if err := loadCoreConfig(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadLayoutConfig(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadRepoConfig(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadGitHubConfig(&cfg); err != nil {
		return Config{}, err
	}
	loadOTelConfig(&cfg)

	return cfg, nil
}

func loadCoreConfig(cfg *Config) error {
	var err error
	if cfg.Port, err = parseIntOrDefault("PORT", cfg.Port); err != nil {
		return err
	}
	if cfg.CacheSize, err = parseIntOrDefault("CACHE_SIZE", cfg.CacheSize); err != nil {
		return err
	}
	if cfg.MaxConcurrentAnalyses, err = parseIntOrDefault("MAX_CONCURRENT_ANALYSES", cfg.MaxConcurrentAnalyses); err != nil {
		return err
	}
	maxUpload, err := parseIntOrDefault("MAX_UPLOAD_BYTES", int(cfg.MaxUploadBytes))
	if err != nil {
		return err
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	if cfg.CacheSize <= 0 || cfg.MaxConcurrentAnalyses <= 0 || cfg.MaxUploadBytes <= 0 {
		return errors.New("CACHE_SIZE, MAX_CONCURRENT_ANALYSES and MAX_UPLOAD_BYTES must be positive")
	}

	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	return nil
}

func loadLayoutConfig(cfg *Config) error {
	var err error
	if cfg.LayoutVerticalSpacing, err = parseFloatOrDefault("LAYOUT_VERTICAL_SPACING", 0); err != nil {
		return err
	}
	if cfg.LayoutGroupPadding, err = parseFloatOrDefault("LAYOUT_GROUP_PADDING", 0); err != nil {
		return err
	}
	return nil
}

func loadRepoConfig(cfg *Config) error {
	cfg.ChartRepoURL = os.Getenv("CHART_REPO_URL")
	if cfg.ChartRepoURL == "" {
		return nil // repo sync is optional
	}

	cfg.ChartRepoLocalPath = getEnvOrDefault("CHART_REPO_LOCAL_PATH", "/tmp/chart-graph-repo")
	cfg.ChartRepoChartPath = getEnvOrDefault("CHART_REPO_CHART_PATH", ".")

	dur, err := parseDurationOrDefault("CHART_REPO_SYNC_INTERVAL", 10*time.Minute)
	if err != nil {
		return err
	}
	cfg.ChartRepoSyncInterval = dur
	return nil
}

func loadGitHubConfig(cfg *Config) error {
	cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	if os.Getenv("GITHUB_APP_ID") == "" {
		return nil // app credentials are optional
	}

	var err error
	cfg.GitHubAppID, err = parseRequiredInt64("GITHUB_APP_ID")
	if err != nil {
		return err
	}
	cfg.GitHubInstallationID, err = parseRequiredInt64("GITHUB_INSTALLATION_ID")
	if err != nil {
		return err
	}
	cfg.GitHubPrivateKey = os.Getenv("GITHUB_PRIVATE_KEY")
	if cfg.GitHubPrivateKey == "" {
		return errors.New("GITHUB_PRIVATE_KEY is required when GITHUB_APP_ID is set")
	}
	return nil
}

func loadOTelConfig(cfg *Config) {
	cfg.OTelEnabled = os.Getenv("OTEL_ENABLED") == "true"
}

func parseRequiredInt64(envKey string) (int64, error) {
	v := os.Getenv(envKey)
	if v == "" {
		return 0, fmt.Errorf("%s is required", envKey)
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, v, err)
	}
	return id, nil
}

func parseIntOrDefault(envKey string, defaultValue int) (int, error) {
	v := os.Getenv(envKey)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, v, err)
	}
	return n, nil
}

func parseFloatOrDefault(envKey string, defaultValue float64) (float64, error) {
	v := os.Getenv(envKey)
	if v == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, v, err)
	}
	if f < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %q", envKey, v)
	}
	return f, nil
}

func getEnvOrDefault(envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return defaultValue
}

func parseDurationOrDefault(envKey string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(envKey)
	if v == "" {
		return defaultValue, nil
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, v, err)
	}
	return dur, nil
}
