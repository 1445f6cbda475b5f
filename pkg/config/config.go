// Package config defines the gateway's immutable runtime configuration.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

// BinaryConfig locates the provider CLI executables.
type BinaryConfig struct {
	AWS    string `mapstructure:"aws"`
	Azure  string `mapstructure:"azure"`
	Gcloud string `mapstructure:"gcloud"`
}

// Config holds all gateway settings. It is assembled once at startup and
// treated as read-only afterwards; concurrent requests share it without locks.
type Config struct {
	Listen         string        `mapstructure:"listen"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxOutputKB    int           `mapstructure:"max_output_kb"`
	RulesFile      string        `mapstructure:"rules_file"`
	AuditLog       string        `mapstructure:"audit_log"`
	DefaultRegion  string        `mapstructure:"default_region"`
	DefaultProject string        `mapstructure:"default_project"`
	SlackWebhook   string        `mapstructure:"slack_webhook"`
	Binaries       BinaryConfig  `mapstructure:"binaries"`

	// Telemetry config.
	OtelEndpoint  string `mapstructure:"otel_endpoint"`
	SkipTelemetry bool   `mapstructure:"skip_telemetry"`

	JsonLogs bool `mapstructure:"json_logs"`
	Verbose  bool `mapstructure:"verbose"`

	// Dependencies.
	Logger *slog.Logger `mapstructure:"-"`
}

// Load materializes a Config from the already-initialized viper instance,
// layering file/env values over defaults.
func Load() (Config, error) {
	cfg := Default()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the gateway cannot run with.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxOutputKB <= 0 {
		return fmt.Errorf("max_output_kb must be positive, got %d", c.MaxOutputKB)
	}
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	return nil
}
