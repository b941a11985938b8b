// FILE: hookwisp/src/internal/source/stdin_test.go
package source

import (
	"strings"
	"testing"
	"time"

	"hookwisp/src/internal/config"
	"hookwisp/src/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdinSource(t *testing.T) {
	input := strings.Join([]string{
		"INFO service started",
		"",
		"ERROR payment gateway timeout",
		`{"level":"fatal","message":"panic in worker"}`,
	}, "\n")

	s := NewStdinSource(config.StdinSourceConfig{Encoding: "windows-1252"}, 10, strings.NewReader(input), newTestLogger())
	ch := s.Subscribe()
	require.NoError(t, s.Start())

	select {
	case <-s.EOF():
	case <-time.After(2 * time.Second):
		t.Fatal("stdin source did not reach EOF")
	}

	events := drain(t, ch, 3)
	assert.Equal(t, core.SeverityInfo, events[0].Severity)
	assert.Equal(t, "windows-1252", events[0].Encoding)
	assert.Equal(t, core.SeverityError, events[1].Severity)
	assert.Equal(t, "ERROR payment gateway timeout", string(events[1].Message))
	assert.Equal(t, core.SeverityFatal, events[2].Severity)
	assert.Equal(t, core.DefaultEncoding, events[2].Encoding)

	stats := s.GetStats()
	assert.Equal(t, "stdin", stats.Type)
	assert.Equal(t, uint64(3), stats.TotalEntries)

	s.Stop()
	s.Stop()
	_, ok := <-ch
	assert.False(t, ok)
}
