// Package cli provides common initialization shared by the fintrack
// binaries.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger initializes structured logging at the given level.
func SetupLogger(level string) *log.Logger {
	return log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: log.ComponentApp,
	})
}

// LoadAndValidateConfig loads configuration, builds the logger at the
// configured level and validates. Exits the process on validation
// failure.
func LoadAndValidateConfig() (*config.Config, *log.Logger) {
	cfg := config.Load()
	logger := SetupLogger(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg, logger
}

// InitBackend assembles the configured data backend.
// Returns the result or exits the process on failure.
func InitBackend(logger *log.Logger, cfg *config.Config) *backend.Result {
	result, err := backend.NewFactory(logger).CreateBackend(cfg)
	if err != nil {
		logger.Error("Failed to initialize data backend",
			log.FieldError, err.Error(),
			log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	return result
}
