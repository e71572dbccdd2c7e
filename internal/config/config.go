package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Artifacts ArtifactConfig
	LogLevel  string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ShutdownSeconds int
}

// DatabaseConfig holds database connection settings. An empty URL means
// configs are not persisted; the API still resolves and returns them.
type DatabaseConfig struct {
	URL string
}

// ArtifactConfig holds file system paths for persisted model artifacts
type ArtifactConfig struct {
	Dir string
}

// Load reads configuration from environment variables with defaults
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ShutdownSeconds: 10,
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Artifacts: ArtifactConfig{
			Dir: getEnv("ARTIFACT_DIR", "artifacts"),
		},
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
	}

	if s := os.Getenv("SHUTDOWN_SECONDS"); s != "" {
		secs, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid SHUTDOWN_SECONDS %q: %w", s, err)
		}
		cfg.Server.ShutdownSeconds = secs
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
