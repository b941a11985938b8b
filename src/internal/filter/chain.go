// FILE: hookwisp/src/internal/filter/chain.go
package filter

import (
	"fmt"
	"sync/atomic"

	"hookwisp/src/internal/config"
	"hookwisp/src/internal/core"

	"github.com/lixenwraith/log"
)

// Chain applies a minimum severity and then a sequence of regex filters.
type Chain struct {
	minSeverity core.Severity
	filters     []*Filter
	logger      *log.Logger

	// Statistics
	totalProcessed atomic.Uint64
	totalPassed    atomic.Uint64
	belowMinLevel  atomic.Uint64
}

// NewChain creates a filter chain. SeverityUnknown as minimum disables the
// level check; events with unknown severity always pass it.
func NewChain(configs []config.FilterConfig, minSeverity core.Severity, logger *log.Logger) (*Chain, error) {
	chain := &Chain{
		minSeverity: minSeverity,
		filters:     make([]*Filter, 0, len(configs)),
		logger:      logger,
	}

	for i, cfg := range configs {
		filter, err := NewFilter(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("filter[%d]: %w", i, err)
		}
		chain.filters = append(chain.filters, filter)
	}

	logger.Info("msg", "Filter chain created",
		"component", "filter_chain",
		"min_level", minSeverity.String(),
		"filter_count", len(configs))
	return chain, nil
}

// Apply runs a log event through the chain; all stages must pass.
func (c *Chain) Apply(event core.LogEvent) bool {
	c.totalProcessed.Add(1)

	if c.minSeverity != core.SeverityUnknown &&
		event.Severity != core.SeverityUnknown &&
		event.Severity < c.minSeverity {
		c.belowMinLevel.Add(1)
		return false
	}

	for i, filter := range c.filters {
		if !filter.Apply(event) {
			c.logger.Debug("msg", "Event filtered out",
				"component", "filter_chain",
				"filter_index", i,
				"filter_type", filter.kind)
			return false
		}
	}

	c.totalPassed.Add(1)
	return true
}

// GetStats returns aggregated statistics for the entire chain.
func (c *Chain) GetStats() map[string]any {
	filterStats := make([]map[string]any, len(c.filters))
	for i, filter := range c.filters {
		filterStats[i] = filter.GetStats()
	}

	return map[string]any{
		"min_level":       c.minSeverity.String(),
		"filter_count":    len(c.filters),
		"total_processed": c.totalProcessed.Load(),
		"total_passed":    c.totalPassed.Load(),
		"below_min_level": c.belowMinLevel.Load(),
		"filters":         filterStats,
	}
}
