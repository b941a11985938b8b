// FILE: hookwisp/src/internal/sink/sink.go
package sink

import (
	"time"

	"hookwisp/src/internal/core"
)

// Sink accepts log events and relays them to an external destination.
// Submit must be safe for concurrent use.
type Sink interface {
	// Submit formats and delivers one event synchronously
	Submit(event core.LogEvent) error

	// GetStats returns sink statistics
	GetStats() SinkStats
}

// SinkStats contains statistics about a sink
type SinkStats struct {
	Type           string
	TotalSubmitted uint64
	TotalDelivered uint64
	TotalFailed    uint64
	StartTime      time.Time
	LastSubmitted  time.Time
	Details        map[string]any
}
