// FILE: hookwisp/src/internal/config/filter.go
package config

import (
	"fmt"
	"regexp"
)

// FilterType selects whether matching events are kept or dropped
type FilterType string

const (
	FilterTypeInclude FilterType = "include"
	FilterTypeExclude FilterType = "exclude"
)

// FilterLogic combines multiple patterns
type FilterLogic string

const (
	FilterLogicOr  FilterLogic = "or"
	FilterLogicAnd FilterLogic = "and"
)

// FilterConfig is one regex filter stage
type FilterConfig struct {
	Type     FilterType  `toml:"type"`
	Logic    FilterLogic `toml:"logic"`
	Patterns []string    `toml:"patterns"`
}

func validateFilter(filterIndex int, cfg *FilterConfig) error {
	if cfg.Type != "" {
		if err := oneOf("type", string(cfg.Type), string(FilterTypeInclude), string(FilterTypeExclude)); err != nil {
			return fmt.Errorf("filter[%d]: %w", filterIndex, err)
		}
	}
	if cfg.Logic != "" {
		if err := oneOf("logic", string(cfg.Logic), string(FilterLogicOr), string(FilterLogicAnd)); err != nil {
			return fmt.Errorf("filter[%d]: %w", filterIndex, err)
		}
	}

	// Empty patterns is valid - passes everything
	for i, pattern := range cfg.Patterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("filter[%d] pattern[%d] '%s': invalid regex: %w",
				filterIndex, i, pattern, err)
		}
	}

	return nil
}
