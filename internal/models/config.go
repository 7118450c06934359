package models

import "time"

// Config holds the application configuration
type Config struct {
	WhatsApp      WhatsAppConfig  `json:"whatsapp"`
	Database      DatabaseConfig  `json:"database"`
	Scheduler     SchedulerConfig `json:"scheduler"`
	Server        ServerConfig    `json:"server"`
	Retry         RetryConfig     `json:"retry"`
	Tracing       TracingConfig   `json:"tracing"`
	LogLevel      string          `json:"log_level"`
	RetentionDays int             `json:"retentionDays"`
}

// WhatsAppConfig holds gateway related configuration
type WhatsAppConfig struct {
	APIBaseURL string        `json:"api_base_url"`
	Timeout    time.Duration `json:"timeout_ms"`
	RetryCount int           `json:"retry_count"`
}

// DatabaseConfig holds database related configuration
type DatabaseConfig struct {
	Path string `json:"path"`
}

// SchedulerConfig controls the dispatch loop
type SchedulerConfig struct {
	PollIntervalSec      int `json:"pollIntervalSec"`
	CleanupIntervalHours int `json:"cleanupIntervalHours"`
}

// ServerConfig holds HTTP server related configuration
type ServerConfig struct {
	Port string `json:"port"`
}

// RetryConfig holds retry related configuration
type RetryConfig struct {
	InitialBackoffMs int `json:"initialBackoffMs"`
	MaxBackoffMs     int `json:"maxBackoffMs"`
	MaxAttempts      int `json:"maxAttempts"`
}

// TracingConfig holds OpenTelemetry related configuration
type TracingConfig struct {
	ServiceName    string  `json:"service_name"`
	ServiceVersion string  `json:"service_version"`
	Environment    string  `json:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate"`
	Enabled        bool    `json:"enabled"`
	UseStdout      bool    `json:"use_stdout"`
}

type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
