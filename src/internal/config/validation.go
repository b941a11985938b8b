// FILE: hookwisp/src/internal/config/validation.go
package config

import (
	"fmt"
	"slices"
	"strings"

	"hookwisp/src/internal/core"
	"hookwisp/src/internal/format"
)

// Validate checks a configuration built outside LoadWithCLI
func (c *Config) Validate() error {
	return validateConfig(c)
}

// validateConfig is the centralized validator for the entire configuration
func validateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if err := validateLogConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := validateWebhook(&cfg.Webhook); err != nil {
		return err
	}

	if cfg.Webhook.Encoding != "" {
		if err := format.ValidateEncoding(cfg.Webhook.Encoding); err != nil {
			return fmt.Errorf("webhook: %w", err)
		}
	}
	if cfg.Sources.Stdin.Encoding != "" {
		if err := format.ValidateEncoding(cfg.Sources.Stdin.Encoding); err != nil {
			return fmt.Errorf("sources.stdin: %w", err)
		}
	}
	if cfg.Sources.TCP.Encoding != "" {
		if err := format.ValidateEncoding(cfg.Sources.TCP.Encoding); err != nil {
			return fmt.Errorf("sources.tcp: %w", err)
		}
	}

	if err := validateRelay(&cfg.Relay); err != nil {
		return err
	}

	if err := validateRateLimit(&cfg.RateLimit); err != nil {
		return err
	}

	for i := range cfg.Filters {
		if err := validateFilter(i, &cfg.Filters[i]); err != nil {
			return err
		}
	}

	return validateSources(&cfg.Sources)
}

func validateRelay(cfg *RelayConfig) error {
	if cfg.Workers < 1 {
		return fmt.Errorf("relay: workers must be positive: %d", cfg.Workers)
	}
	if cfg.BufferSize < 1 {
		return fmt.Errorf("relay: buffer_size must be positive: %d", cfg.BufferSize)
	}
	if cfg.MinLevel != "" && core.ParseSeverity(cfg.MinLevel) == core.SeverityUnknown {
		return fmt.Errorf("relay: invalid min_level: %s", cfg.MinLevel)
	}
	if cfg.StatsIntervalSeconds < 0 {
		return fmt.Errorf("relay: stats_interval_seconds cannot be negative")
	}
	return nil
}

// oneOf rejects a value outside the allowed set, naming the field and choices
func oneOf(field, value string, allowed ...string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("invalid %s '%s' (must be one of: %s)", field, value, strings.Join(allowed, ", "))
}
