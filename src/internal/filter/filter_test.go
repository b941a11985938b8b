// FILE: hookwisp/src/internal/filter/filter_test.go
package filter

import (
	"testing"

	"hookwisp/src/internal/config"
	"hookwisp/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func event(severity core.Severity, source, msg string) core.LogEvent {
	return core.LogEvent{Severity: severity, Source: source, Message: []byte(msg)}
}

func TestNewFilter(t *testing.T) {
	logger := newTestLogger()

	t.Run("SuccessWithDefaults", func(t *testing.T) {
		f, err := NewFilter(config.FilterConfig{Patterns: []string{"test"}}, logger)
		assert.NoError(t, err)
		require.NotNil(t, f)
		assert.Equal(t, config.FilterTypeInclude, f.kind)
		assert.Equal(t, config.FilterLogicOr, f.logic)
	})

	t.Run("ErrorInvalidRegex", func(t *testing.T) {
		f, err := NewFilter(config.FilterConfig{Patterns: []string{"["}}, logger)
		assert.Error(t, err)
		assert.Nil(t, f)
		assert.Contains(t, err.Error(), "invalid regex pattern")
	})
}

func TestFilter_Apply(t *testing.T) {
	logger := newTestLogger()

	testCases := []struct {
		name     string
		cfg      config.FilterConfig
		event    core.LogEvent
		expected bool
	}{
		{
			name:     "IncludeOR_MatchOne",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude, Logic: config.FilterLogicOr, Patterns: []string{"disk", "memory"}},
			event:    event(core.SeverityError, "", "disk full"),
			expected: true,
		},
		{
			name:     "IncludeOR_NoMatch",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude, Logic: config.FilterLogicOr, Patterns: []string{"disk", "memory"}},
			event:    event(core.SeverityError, "", "cpu hot"),
			expected: false,
		},
		{
			name:     "IncludeAND_MatchAll",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude, Logic: config.FilterLogicAnd, Patterns: []string{"payment", "declined"}},
			event:    event(core.SeverityWarn, "", "payment was declined"),
			expected: true,
		},
		{
			name:     "IncludeAND_MatchOne",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude, Logic: config.FilterLogicAnd, Patterns: []string{"payment", "declined"}},
			event:    event(core.SeverityWarn, "", "payment ok"),
			expected: false,
		},
		{
			name:     "ExcludeOR_MatchOne",
			cfg:      config.FilterConfig{Type: config.FilterTypeExclude, Patterns: []string{"healthcheck"}},
			event:    event(core.SeverityInfo, "", "GET /healthcheck 200"),
			expected: false,
		},
		{
			name:     "ExcludeOR_NoMatch",
			cfg:      config.FilterConfig{Type: config.FilterTypeExclude, Patterns: []string{"healthcheck"}},
			event:    event(core.SeverityInfo, "", "GET /orders 500"),
			expected: true,
		},
		{
			name:     "NoPatterns",
			cfg:      config.FilterConfig{Type: config.FilterTypeInclude},
			event:    event(core.SeverityInfo, "", "anything"),
			expected: true,
		},
		{
			name:     "MatchOnLevel",
			cfg:      config.FilterConfig{Patterns: []string{"^FATAL"}},
			event:    event(core.SeverityFatal, "", "oom"),
			expected: true,
		},
		{
			name:     "MatchOnCombinedFields",
			cfg:      config.FilterConfig{Patterns: []string{"^billing ERROR"}},
			event:    event(core.SeverityError, "billing", "charge failed"),
			expected: true,
		},
		{
			name:     "UnknownLevelNotInText",
			cfg:      config.FilterConfig{Patterns: []string{"UNKNOWN"}},
			event:    event(core.SeverityUnknown, "", "plain"),
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := NewFilter(tc.cfg, logger)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, f.Apply(tc.event))
		})
	}
}

func TestFilter_Stats(t *testing.T) {
	f, err := NewFilter(config.FilterConfig{Type: config.FilterTypeExclude, Patterns: []string{"noise"}}, newTestLogger())
	require.NoError(t, err)

	assert.True(t, f.Apply(event(core.SeverityInfo, "", "signal")))
	assert.False(t, f.Apply(event(core.SeverityInfo, "", "noise")))

	stats := f.GetStats()
	assert.Equal(t, uint64(2), stats["total_processed"])
	assert.Equal(t, uint64(1), stats["total_matched"])
	assert.Equal(t, uint64(1), stats["total_dropped"])
	assert.Equal(t, 1, stats["pattern_count"])
}

func TestNewFilter_UnknownSettings(t *testing.T) {
	_, err := NewFilter(config.FilterConfig{Type: "keep"}, newTestLogger())
	assert.Error(t, err)

	_, err = NewFilter(config.FilterConfig{Logic: "xor"}, newTestLogger())
	assert.Error(t, err)
}
