// FILE: hookwisp/src/internal/filter/filter.go
package filter

import (
	"fmt"
	"regexp"
	"sync/atomic"

	"hookwisp/src/internal/config"
	"hookwisp/src/internal/core"

	"github.com/lixenwraith/log"
)

// Filter keeps or drops events by regex. Patterns are fixed at construction.
type Filter struct {
	kind     config.FilterType
	logic    config.FilterLogic
	patterns []*regexp.Regexp
	match    func(text string) bool

	totalProcessed atomic.Uint64
	totalMatched   atomic.Uint64
	totalDropped   atomic.Uint64
}

// NewFilter compiles cfg; empty type and logic default to include and or
func NewFilter(cfg config.FilterConfig, logger *log.Logger) (*Filter, error) {
	f := &Filter{kind: cfg.Type, logic: cfg.Logic}
	if f.kind == "" {
		f.kind = config.FilterTypeInclude
	}
	if f.logic == "" {
		f.logic = config.FilterLogicOr
	}

	for i, pattern := range cfg.Patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern[%d] '%s': %w", i, pattern, err)
		}
		f.patterns = append(f.patterns, re)
	}

	switch f.logic {
	case config.FilterLogicOr:
		f.match = f.matchAny
	case config.FilterLogicAnd:
		f.match = f.matchAll
	default:
		return nil, fmt.Errorf("unknown filter logic '%s'", f.logic)
	}
	if f.kind != config.FilterTypeInclude && f.kind != config.FilterTypeExclude {
		return nil, fmt.Errorf("unknown filter type '%s'", f.kind)
	}

	logger.Debug("msg", "Filter created",
		"component", "filter",
		"type", f.kind,
		"logic", f.logic,
		"pattern_count", len(f.patterns))
	return f, nil
}

// Apply reports whether the event passes. Patterns see
// "<source> <LEVEL> <message>" with empty parts left out.
func (f *Filter) Apply(event core.LogEvent) bool {
	f.totalProcessed.Add(1)
	if len(f.patterns) == 0 {
		return true
	}

	matched := f.match(filterText(event))
	if matched {
		f.totalMatched.Add(1)
	}

	pass := matched == (f.kind == config.FilterTypeInclude)
	if !pass {
		f.totalDropped.Add(1)
	}
	return pass
}

func filterText(event core.LogEvent) string {
	text := string(event.Message)
	if event.Severity != core.SeverityUnknown {
		text = event.Severity.String() + " " + text
	}
	if event.Source != "" {
		text = event.Source + " " + text
	}
	return text
}

func (f *Filter) matchAny(text string) bool {
	for _, re := range f.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func (f *Filter) matchAll(text string) bool {
	for _, re := range f.patterns {
		if !re.MatchString(text) {
			return false
		}
	}
	return true
}

func (f *Filter) GetStats() map[string]any {
	return map[string]any{
		"type":            f.kind,
		"logic":           f.logic,
		"pattern_count":   len(f.patterns),
		"total_processed": f.totalProcessed.Load(),
		"total_matched":   f.totalMatched.Load(),
		"total_dropped":   f.totalDropped.Load(),
	}
}
