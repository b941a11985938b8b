// FILE: hookwisp/src/internal/service/service.go
package service

import (
	"context"
	"fmt"
	"time"

	"hookwisp/src/internal/config"
	"hookwisp/src/internal/core"
	"hookwisp/src/internal/filter"
	"hookwisp/src/internal/limit"
	"hookwisp/src/internal/sink"
	"hookwisp/src/internal/source"

	"github.com/lixenwraith/log"
)

// NewRelayFromConfig builds the webhook sink, filter chain, limiter and
// enabled sources described by cfg. The relay is not started.
func NewRelayFromConfig(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Relay, error) {
	webhookSink, err := sink.NewWebhookSink(cfg.Webhook, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook sink: %w", err)
	}

	chain, err := filter.NewChain(cfg.Filters, core.ParseSeverity(cfg.Relay.MinLevel), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter chain: %w", err)
	}

	sources, err := createSources(&cfg.Sources, int(cfg.Relay.BufferSize), logger)
	if err != nil {
		return nil, err
	}

	return NewRelay(ctx, RelayOptions{
		Workers:       int(cfg.Relay.Workers),
		BufferSize:    int(cfg.Relay.BufferSize),
		StatsInterval: time.Duration(cfg.Relay.StatsIntervalSeconds) * time.Second,
	}, sources, chain, limit.NewLimiter(cfg.RateLimit, logger), webhookSink, logger)
}

// createSources instantiates every enabled source
func createSources(cfg *config.SourcesConfig, bufferSize int, logger *log.Logger) ([]source.Source, error) {
	var sources []source.Source

	if cfg.Stdin.Enabled {
		sources = append(sources, source.NewStdinSource(cfg.Stdin, bufferSize, nil, logger))
	}

	if cfg.HTTP.Enabled {
		src, err := source.NewHTTPSource(cfg.HTTP, bufferSize, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create http source: %w", err)
		}
		sources = append(sources, src)
	}

	if cfg.TCP.Enabled {
		src, err := source.NewTCPSource(cfg.TCP, bufferSize, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create tcp source: %w", err)
		}
		sources = append(sources, src)
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources enabled")
	}
	return sources, nil
}

// StdinEOF returns the EOF channel of the relay's stdin source, or nil
func (r *Relay) StdinEOF() <-chan struct{} {
	for _, src := range r.Sources {
		if s, ok := src.(*source.StdinSource); ok {
			return s.EOF()
		}
	}
	return nil
}
