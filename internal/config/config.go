package config

import (
	"encoding/json"
	"fmt"
	"os"

	"invoicewa/internal/constants"
	"invoicewa/internal/models"
	"invoicewa/internal/security"
)

var (
	ErrMissingGatewayURL = models.ConfigError{Message: "missing WhatsApp gateway base URL"}
	ErrMissingDBPath     = models.ConfigError{Message: "missing database path"}
)

func LoadConfig(path string) (*models.Config, error) {
	if err := security.ValidateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	file, err := os.ReadFile(path) // #nosec G304 - Path validated above
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	if err := validateSecurity(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(c *models.Config) error {
	if c.WhatsApp.APIBaseURL == "" {
		return ErrMissingGatewayURL
	}
	if c.Database.Path == "" {
		return ErrMissingDBPath
	}

	if c.Scheduler.PollIntervalSec <= 0 {
		c.Scheduler.PollIntervalSec = constants.DefaultPollIntervalSec
	}
	if c.Scheduler.CleanupIntervalHours <= 0 {
		c.Scheduler.CleanupIntervalHours = constants.DefaultCleanupIntervalHours
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = constants.DefaultRetentionDays
	}
	if c.Server.Port == "" {
		c.Server.Port = fmt.Sprintf("%d", constants.DefaultServerPort)
	}
	if c.WhatsApp.RetryCount <= 0 {
		c.WhatsApp.RetryCount = constants.DefaultGatewayRetryCount
	}
	if c.Retry.InitialBackoffMs <= 0 {
		c.Retry.InitialBackoffMs = constants.DefaultRetryBackoffMs
	}
	if c.Retry.MaxBackoffMs <= 0 {
		c.Retry.MaxBackoffMs = constants.DefaultMaxBackoffMs
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = constants.DefaultMaxAttempts
	}

	return nil
}

func applyEnvironmentOverrides(c *models.Config) {
	if url := os.Getenv("WHATSAPP_API_URL"); url != "" {
		c.WhatsApp.APIBaseURL = url
	}
	if path := os.Getenv("DB_PATH"); path != "" {
		c.Database.Path = path
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
}

// validateSecurity performs security-specific validation
func validateSecurity(c *models.Config) error {
	isProduction := os.Getenv("INVOICEWA_ENV") == "production"

	if isProduction {
		if os.Getenv("WHATSAPP_API_KEY") == "" {
			return models.ConfigError{Message: "WHATSAPP_API_KEY environment variable is required in production"}
		}
		if c.LogLevel == "debug" {
			return models.ConfigError{Message: "debug logging should not be used in production (message text ends up in logs)"}
		}
	} else {
		if os.Getenv("WHATSAPP_API_KEY") == "" {
			fmt.Fprintf(os.Stderr, "WARNING: WHATSAPP_API_KEY not set. Gateway requests will be unauthenticated.\n")
		}
	}

	return nil
}
