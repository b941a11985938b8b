// FILE: hookwisp/src/internal/config/source.go
package config

import (
	"fmt"
	"strings"
)

// SourcesConfig enables the inbound adapters
type SourcesConfig struct {
	Stdin StdinSourceConfig `toml:"stdin"`
	HTTP  HTTPSourceConfig  `toml:"http"`
	TCP   TCPSourceConfig   `toml:"tcp"`
}

// StdinSourceConfig reads one event per line from standard input
type StdinSourceConfig struct {
	Enabled bool `toml:"enabled"`

	// Charset of the piped bytes, empty uses webhook.encoding
	Encoding string `toml:"encoding"`
}

// HTTPSourceConfig accepts JSON events via POST
type HTTPSourceConfig struct {
	Enabled    bool   `toml:"enabled"`
	Host       string `toml:"host"`
	Port       int64  `toml:"port"`
	IngestPath string `toml:"ingest_path"`

	// HMAC secret for bearer JWT validation
	JWTSecret string `toml:"jwt_secret"`

	// Argon2id PHC hashes of static bearer tokens ("hookwisp token")
	TokenHashes []string `toml:"token_hashes"`
}

// TCPSourceConfig accepts newline-delimited JSON or plain text events
type TCPSourceConfig struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	Port    int64  `toml:"port"`

	// Charset of plain text lines, empty uses webhook.encoding
	Encoding string `toml:"encoding"`
}

func validateSources(cfg *SourcesConfig) error {
	if !cfg.Stdin.Enabled && !cfg.HTTP.Enabled && !cfg.TCP.Enabled {
		return fmt.Errorf("sources: at least one source must be enabled")
	}

	if cfg.HTTP.Enabled {
		if cfg.HTTP.Port < 1 || cfg.HTTP.Port > 65535 {
			return fmt.Errorf("sources.http: invalid port: %d", cfg.HTTP.Port)
		}
		if cfg.HTTP.IngestPath == "" || cfg.HTTP.IngestPath[0] != '/' {
			return fmt.Errorf("sources.http: ingest_path must start with '/': %q", cfg.HTTP.IngestPath)
		}
		for i, h := range cfg.HTTP.TokenHashes {
			if !strings.HasPrefix(h, "$argon2id$") {
				return fmt.Errorf("sources.http: token_hashes[%d] is not an argon2id hash", i)
			}
		}
	}

	if cfg.TCP.Enabled {
		if cfg.TCP.Port < 1 || cfg.TCP.Port > 65535 {
			return fmt.Errorf("sources.tcp: invalid port: %d", cfg.TCP.Port)
		}
	}

	if cfg.HTTP.Enabled && cfg.TCP.Enabled && cfg.HTTP.Port == cfg.TCP.Port && cfg.HTTP.Host == cfg.TCP.Host {
		return fmt.Errorf("sources: http and tcp cannot share port %d", cfg.HTTP.Port)
	}

	return nil
}
