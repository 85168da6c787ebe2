package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig holds all application-level configuration loaded from environment variables.
type AppConfig struct {
	// Port is the HTTP server port. Defaults to 8991.
	Port int `envconfig:"PORT" default:"8991"`

	// DataDir is the root data directory. Defaults to ~/.mailcast.
	DataDir string `envconfig:"MAILCAST_DATA_DIR"`

	// LogLevel sets the minimum log level (debug, info, warn, error). Defaults to info.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// ProcessorFile is the path to the processor YAML configuration.
	// Defaults to <DataDir>/processor.yaml when unset.
	ProcessorFile string `envconfig:"MAILCAST_PROCESSOR_FILE"`

	// DirectoryBaseURL is the base URL of the entity directory service.
	DirectoryBaseURL string `envconfig:"MAILCAST_DIRECTORY_URL" default:"http://localhost:7007/api/catalog"`

	// DirectoryToken is the bearer token presented to the directory service.
	// Optional — requests are sent unauthenticated if not provided.
	DirectoryToken string `envconfig:"MAILCAST_DIRECTORY_TOKEN"`
}

// Load reads AppConfig from environment variables using envconfig.
// DataDir defaults to ~/.mailcast if not set.
func Load() (*AppConfig, error) {
	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".mailcast")
	}
	if c.ProcessorFile == "" {
		c.ProcessorFile = filepath.Join(c.DataDir, "processor.yaml")
	}
	return &c, nil
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *AppConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogDir returns the path to the log directory (<DataDir>/logs).
func (c *AppConfig) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// DBPath returns the path to the SQLite database file.
func (c *AppConfig) DBPath() string {
	return filepath.Join(c.DataDir, "mailcast.db")
}
