// FILE: hookwisp/src/internal/tls/client.go
package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"hookwisp/src/internal/config"

	"github.com/lixenwraith/log"
)

// WebhookTLS holds the resolved TLS settings of the outbound webhook connection.
// A nil *WebhookTLS means system roots and Go defaults.
type WebhookTLS struct {
	conf        *tls.Config
	caFile      string
	mutualTLS   bool
	skipVerify  bool
	cipherCount int
}

// NewWebhookTLS resolves [webhook.tls]. It returns nil when the section is disabled.
func NewWebhookTLS(cfg config.TLSClientConfig, logger *log.Logger) (*WebhookTLS, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	minVersion, err := parseVersion(cfg.MinVersion, tls.VersionTLS12)
	if err != nil {
		return nil, fmt.Errorf("min_version: %w", err)
	}
	maxVersion, err := parseVersion(cfg.MaxVersion, tls.VersionTLS13)
	if err != nil {
		return nil, fmt.Errorf("max_version: %w", err)
	}
	if minVersion > maxVersion {
		return nil, fmt.Errorf("min_version %s is above max_version %s",
			tls.VersionName(minVersion), tls.VersionName(maxVersion))
	}

	w := &WebhookTLS{
		conf: &tls.Config{
			MinVersion:         minVersion,
			MaxVersion:         maxVersion,
			ServerName:         cfg.ServerName,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
		caFile:     cfg.ServerCAFile,
		skipVerify: cfg.InsecureSkipVerify,
	}

	if cfg.CipherSuites != "" {
		if w.conf.CipherSuites, err = parseCipherSuites(cfg.CipherSuites); err != nil {
			return nil, err
		}
		w.cipherCount = len(w.conf.CipherSuites)
	}

	switch {
	case cfg.ClientCertFile != "" && cfg.ClientKeyFile != "":
		pair, err := tls.LoadX509KeyPair(cfg.ClientCertFile, cfg.ClientKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert/key: %w", err)
		}
		w.conf.Certificates = []tls.Certificate{pair}
		w.mutualTLS = true
	case cfg.ClientCertFile != "" || cfg.ClientKeyFile != "":
		return nil, fmt.Errorf("both client_cert_file and client_key_file must be provided for mTLS")
	}

	if cfg.ServerCAFile != "" {
		pem, err := os.ReadFile(cfg.ServerCAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read server CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("failed to parse server CA certificate")
		}
		w.conf.RootCAs = pool
	}

	if w.skipVerify {
		logger.Warn("msg", "Webhook certificate verification disabled",
			"component", "tls")
	}
	logger.Info("msg", "Webhook TLS configured",
		"component", "tls",
		"min_version", tls.VersionName(minVersion),
		"max_version", tls.VersionName(maxVersion),
		"mutual_tls", w.mutualTLS,
		"custom_ca", w.caFile != "")

	return w, nil
}

// Config returns a copy for the delivery client, nil keeps Go defaults
func (w *WebhookTLS) Config() *tls.Config {
	if w == nil {
		return nil
	}
	return w.conf.Clone()
}

func (w *WebhookTLS) GetStats() map[string]any {
	if w == nil {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"enabled":              true,
		"min_version":          tls.VersionName(w.conf.MinVersion),
		"max_version":          tls.VersionName(w.conf.MaxVersion),
		"mutual_tls":           w.mutualTLS,
		"custom_ca":            w.caFile != "",
		"cipher_suites":        w.cipherCount,
		"insecure_skip_verify": w.skipVerify,
	}
}
