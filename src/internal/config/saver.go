// FILE: hookwisp/src/internal/config/saver.go
package config

import (
	"fmt"

	lconfig "github.com/lixenwraith/config"
)

// redactedPlaceholder marks a credential left out of a saved file
const redactedPlaceholder = ""

// SaveToFile writes the configuration as TOML. The webhook URL and the JWT
// secret are credentials and are blanked unless keepSecrets is set. Token
// hashes are kept, they cannot be reversed into tokens.
func (c *Config) SaveToFile(path string, keepSecrets bool) error {
	if path == "" {
		return fmt.Errorf("cannot save config: path is empty")
	}

	out := c.clone()
	if !keepSecrets {
		out.redactSecrets()
	}

	lcfg, err := lconfig.NewBuilder().
		WithFile(path).
		WithTarget(out).
		WithFileFormat("toml").
		Build()
	if err != nil {
		return fmt.Errorf("failed to create config builder: %w", err)
	}

	if err := lcfg.Save(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// clone copies the slices too, so redaction never reaches the live config
func (c *Config) clone() *Config {
	out := *c
	out.Filters = make([]FilterConfig, len(c.Filters))
	for i, f := range c.Filters {
		f.Patterns = append([]string(nil), f.Patterns...)
		out.Filters[i] = f
	}
	out.Sources.HTTP.TokenHashes = append([]string{}, c.Sources.HTTP.TokenHashes...)
	return &out
}

func (c *Config) redactSecrets() {
	c.Webhook.URL = redactedPlaceholder
	c.Sources.HTTP.JWTSecret = redactedPlaceholder
}
