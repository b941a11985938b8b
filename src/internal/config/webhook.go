// FILE: hookwisp/src/internal/config/webhook.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	ErrorModeIgnore    = "ignore"
	ErrorModePropagate = "propagate"
)

// WebhookConfig describes the chat webhook endpoint and the sink behavior
type WebhookConfig struct {
	// Incoming webhook URL, the path embeds the access token
	URL string `toml:"url"`

	// Optional sender name and target channel, omitted from payload when empty
	Username string `toml:"username"`
	Channel  string `toml:"channel"`

	// Charset of raw message bytes
	Encoding string `toml:"encoding"`

	// "ignore" swallows per-event failures, "propagate" returns them
	ErrorMode string `toml:"error_mode"`

	// Overrides the resolved host name in titles
	HostLabel string `toml:"host_label"`

	ConnectTimeoutMS  int64  `toml:"connect_timeout_ms"`
	ReadTimeoutMS     int64  `toml:"read_timeout_ms"`
	WriteTimeoutMS    int64  `toml:"write_timeout_ms"`
	MaxErrorBodyBytes int64  `toml:"max_error_body_bytes"`
	UserAgent         string `toml:"user_agent"`

	TLS TLSClientConfig `toml:"tls"`
}

// TLSClientConfig configures TLS for the outbound webhook connection
type TLSClientConfig struct {
	Enabled bool `toml:"enabled"`

	// CA bundle used instead of the system roots
	ServerCAFile string `toml:"server_ca_file"`
	ServerName   string `toml:"server_name"`

	// Client certificate for mTLS
	ClientCertFile string `toml:"client_cert_file"`
	ClientKeyFile  string `toml:"client_key_file"`

	InsecureSkipVerify bool `toml:"insecure_skip_verify"`

	// "TLS1.2", "TLS1.3"
	MinVersion string `toml:"min_version"`
	MaxVersion string `toml:"max_version"`

	// Comma-separated cipher suite names
	CipherSuites string `toml:"cipher_suites"`
}

// ConnectTimeout returns the dial timeout
func (w *WebhookConfig) ConnectTimeout() time.Duration {
	return time.Duration(w.ConnectTimeoutMS) * time.Millisecond
}

// ReadTimeout returns the response read timeout
func (w *WebhookConfig) ReadTimeout() time.Duration {
	return time.Duration(w.ReadTimeoutMS) * time.Millisecond
}

// WriteTimeout returns the request write timeout
func (w *WebhookConfig) WriteTimeout() time.Duration {
	return time.Duration(w.WriteTimeoutMS) * time.Millisecond
}

func validateWebhook(cfg *WebhookConfig) error {
	if strings.TrimSpace(cfg.URL) == "" {
		return fmt.Errorf("webhook: url is required")
	}
	// Never echo the URL, it carries the token
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("webhook: url must be an absolute http(s) URL")
	}

	if cfg.ErrorMode != "" {
		if err := oneOf("error_mode", cfg.ErrorMode, ErrorModeIgnore, ErrorModePropagate); err != nil {
			return fmt.Errorf("webhook: %w", err)
		}
	}

	if cfg.ConnectTimeoutMS < 0 || cfg.ReadTimeoutMS < 0 || cfg.WriteTimeoutMS < 0 {
		return fmt.Errorf("webhook: timeouts cannot be negative")
	}
	if cfg.MaxErrorBodyBytes < 0 {
		return fmt.Errorf("webhook: max_error_body_bytes cannot be negative")
	}

	if cfg.TLS.Enabled {
		if (cfg.TLS.ClientCertFile == "") != (cfg.TLS.ClientKeyFile == "") {
			return fmt.Errorf("webhook.tls: both client_cert_file and client_key_file must be provided for mTLS")
		}
		for _, f := range []string{cfg.TLS.ServerCAFile, cfg.TLS.ClientCertFile, cfg.TLS.ClientKeyFile} {
			if f == "" {
				continue
			}
			if _, err := os.Stat(f); err != nil {
				return fmt.Errorf("webhook.tls: file is not accessible: %w", err)
			}
		}
		for field, v := range map[string]string{"min_version": cfg.TLS.MinVersion, "max_version": cfg.TLS.MaxVersion} {
			if v == "" {
				continue
			}
			if err := oneOf(field, strings.ToUpper(v), "TLS1.2", "TLS1.3", "TLS12", "TLS13"); err != nil {
				return fmt.Errorf("webhook.tls: %w", err)
			}
		}
	}

	return nil
}
