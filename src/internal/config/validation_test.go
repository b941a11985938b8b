// FILE: hookwisp/src/internal/config/validation_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := defaults()
	cfg.Webhook.URL = "https://hooks.example.com/services/T000/B000/XXXX"
	return cfg
}

func TestValidateConfig(t *testing.T) {
	t.Run("DefaultsWithURL", func(t *testing.T) {
		require.NoError(t, validConfig().Validate())
	})

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		errPart string
	}{
		{"MissingURL", func(c *Config) { c.Webhook.URL = "" }, "url is required"},
		{"RelativeURL", func(c *Config) { c.Webhook.URL = "/services/x" }, "absolute http(s) URL"},
		{"BadScheme", func(c *Config) { c.Webhook.URL = "ftp://hooks.example.com/x" }, "absolute http(s) URL"},
		{"BadErrorMode", func(c *Config) { c.Webhook.ErrorMode = "explode" }, "invalid error_mode"},
		{"NegativeTimeout", func(c *Config) { c.Webhook.ReadTimeoutMS = -1 }, "timeouts cannot be negative"},
		{"UnknownEncoding", func(c *Config) { c.Webhook.Encoding = "no-such-charset" }, "unsupported encoding"},
		{"ZeroWorkers", func(c *Config) { c.Relay.Workers = 0 }, "workers must be positive"},
		{"BadMinLevel", func(c *Config) { c.Relay.MinLevel = "loud" }, "invalid min_level"},
		{"BadPolicy", func(c *Config) { c.RateLimit.Policy = "queue" }, "invalid policy"},
		{"BadFilterRegex", func(c *Config) {
			c.Filters = []FilterConfig{{Patterns: []string{"["}}}
		}, "invalid regex"},
		{"NoSources", func(c *Config) { c.Sources.Stdin.Enabled = false }, "at least one source"},
		{"BadHTTPPort", func(c *Config) {
			c.Sources.HTTP.Enabled = true
			c.Sources.HTTP.Port = 0
		}, "invalid port"},
		{"PlainTokenHash", func(c *Config) {
			c.Sources.HTTP.Enabled = true
			c.Sources.HTTP.TokenHashes = []string{"not-a-hash"}
		}, "token_hashes[0]"},
		{"BadLogLevel", func(c *Config) { c.Logging.Level = "chatty" }, "invalid level"},
		{"HalfMTLS", func(c *Config) {
			c.Webhook.TLS.Enabled = true
			c.Webhook.TLS.ClientCertFile = "cert.pem"
		}, "both client_cert_file and client_key_file"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errPart)
		})
	}

	t.Run("URLNotLeakedInErrors", func(t *testing.T) {
		cfg := validConfig()
		cfg.Webhook.URL = "ftp://hooks.example.com/services/SECRET"
		err := cfg.Validate()
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "SECRET")
	})
}

func TestWebhookTimeouts(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, int64(5000), cfg.Webhook.ConnectTimeout().Milliseconds())
	assert.Equal(t, int64(10000), cfg.Webhook.ReadTimeout().Milliseconds())
	assert.Equal(t, int64(10000), cfg.Webhook.WriteTimeout().Milliseconds())
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, PolicyWait, (&RateLimitConfig{Policy: "WAIT"}).ParsePolicy())
	assert.Equal(t, PolicyDrop, (&RateLimitConfig{Policy: "drop"}).ParsePolicy())
	assert.Equal(t, PolicyDrop, (&RateLimitConfig{}).ParsePolicy())
}

func TestCustomEnvTransform(t *testing.T) {
	assert.Equal(t, "HOOKWISP_WEBHOOK_URL", customEnvTransform("webhook.url"))
	assert.Equal(t, "HOOKWISP_SOURCES_HTTP_PORT", customEnvTransform("sources.http.port"))
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("HOOKWISP_CONFIG_FILE", "/etc/hookwisp/custom.toml")
	assert.Equal(t, "/etc/hookwisp/custom.toml", GetConfigPath())

	t.Setenv("HOOKWISP_CONFIG_FILE", "")
	t.Setenv("HOOKWISP_CONFIG_DIR", "/opt/conf")
	assert.Equal(t, "/opt/conf/hookwisp.toml", GetConfigPath())
}

func TestConfigCloneAndRedact(t *testing.T) {
	cfg := Default()
	cfg.Webhook.URL = "https://hooks.example.com/services/T0/B0/secret"
	cfg.Sources.HTTP.JWTSecret = "jwt-secret"
	cfg.Sources.HTTP.TokenHashes = []string{"$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"}
	cfg.Filters = []FilterConfig{{Type: "include", Patterns: []string{"db"}}}

	out := cfg.clone()
	out.redactSecrets()
	out.Filters[0].Patterns[0] = "changed"

	assert.Empty(t, out.Webhook.URL)
	assert.Empty(t, out.Sources.HTTP.JWTSecret)
	assert.Equal(t, cfg.Sources.HTTP.TokenHashes, out.Sources.HTTP.TokenHashes)

	assert.Equal(t, "https://hooks.example.com/services/T0/B0/secret", cfg.Webhook.URL)
	assert.Equal(t, "jwt-secret", cfg.Sources.HTTP.JWTSecret)
	assert.Equal(t, "db", cfg.Filters[0].Patterns[0])
}
