// FILE: hookwisp/src/internal/config/ratelimit.go
package config

import (
	"fmt"
	"strings"
)

// RateLimitPolicy defines the action taken when the webhook rate is exceeded
type RateLimitPolicy int

const (
	// PolicyDrop discards events over the limit
	PolicyDrop RateLimitPolicy = iota
	// PolicyWait blocks the worker until a token is available
	PolicyWait
)

// RateLimitConfig bounds outbound webhook posts
type RateLimitConfig struct {
	// Posts per second, 0 disables limiting
	Rate float64 `toml:"rate"`
	// Maximum burst, defaults to Rate
	Burst int64 `toml:"burst"`
	// "drop" or "wait"
	Policy string `toml:"policy"`
}

// ParsePolicy converts the configured policy name
func (c *RateLimitConfig) ParsePolicy() RateLimitPolicy {
	if strings.ToLower(c.Policy) == "wait" {
		return PolicyWait
	}
	return PolicyDrop
}

func validateRateLimit(cfg *RateLimitConfig) error {
	if cfg.Rate < 0 {
		return fmt.Errorf("rate_limit: rate cannot be negative")
	}

	if cfg.Burst < 0 {
		return fmt.Errorf("rate_limit: burst cannot be negative")
	}

	if cfg.Policy == "" {
		return nil
	}
	if err := oneOf("policy", strings.ToLower(cfg.Policy), "drop", "wait"); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	return nil
}
