// FILE: hookwisp/src/internal/config/config.go
package config

// Config is the complete hookwisp configuration
type Config struct {
	// Runtime behavior flags
	Quiet bool `toml:"quiet"`

	Logging   LogConfig       `toml:"logging"`
	Webhook   WebhookConfig   `toml:"webhook"`
	Relay     RelayConfig     `toml:"relay"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Filters   []FilterConfig  `toml:"filters"`
	Sources   SourcesConfig   `toml:"sources"`
}

// RelayConfig controls the worker pool that feeds the sink
type RelayConfig struct {
	// Number of concurrent delivery workers
	Workers int64 `toml:"workers"`

	// Buffered events between sources and workers
	BufferSize int64 `toml:"buffer_size"`

	// Events below this level are not relayed ("" relays everything)
	MinLevel string `toml:"min_level"`

	// Interval for the periodic stats log line, 0 disables it
	StatsIntervalSeconds int64 `toml:"stats_interval_seconds"`
}

func defaults() *Config {
	return &Config{
		Logging: *DefaultLogConfig(),
		Webhook: WebhookConfig{
			Encoding:          "UTF-8",
			ErrorMode:         ErrorModeIgnore,
			ConnectTimeoutMS:  5000,
			ReadTimeoutMS:     10000,
			WriteTimeoutMS:    10000,
			MaxErrorBodyBytes: 512,
		},
		Relay: RelayConfig{
			Workers:              4,
			BufferSize:           1000,
			MinLevel:             "",
			StatsIntervalSeconds: 300,
		},
		RateLimit: RateLimitConfig{
			Rate:   0,
			Burst:  0,
			Policy: "drop",
		},
		Filters: []FilterConfig{},
		Sources: SourcesConfig{
			Stdin: StdinSourceConfig{Enabled: true},
			HTTP: HTTPSourceConfig{
				Enabled:     false,
				Host:        "0.0.0.0",
				Port:        8086,
				IngestPath:  "/ingest",
				TokenHashes: []string{},
			},
			TCP: TCPSourceConfig{
				Enabled: false,
				Host:    "0.0.0.0",
				Port:    9086,
			},
		},
	}
}
