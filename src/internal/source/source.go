// FILE: hookwisp/src/internal/source/source.go
package source

import (
	"bytes"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"hookwisp/src/internal/core"

	"github.com/lixenwraith/log"
)

const (
	maxClientBufferSize = 10 * 1024 * 1024 // 10MB max per client
	maxLineLength       = 1 * 1024 * 1024  // 1MB max per log line
)

// Source is an inbound stream of log events
type Source interface {
	// Returns a channel that receives log events
	Subscribe() <-chan core.LogEvent

	// Begins reading from the source
	Start() error

	// Gracefully shuts down the source
	Stop()

	// Returns source statistics
	GetStats() SourceStats
}

// SourceStats contains statistics about a source
type SourceStats struct {
	Type           string
	TotalEntries   uint64
	DroppedEntries uint64
	StartTime      time.Time
	LastEntryTime  time.Time
	Details        map[string]any
}

// publisher fans events out to subscribers without blocking the reader
type publisher struct {
	component   string
	bufferSize  int
	subscribers []chan core.LogEvent
	closed      bool
	mu          sync.RWMutex
	logger      *log.Logger

	totalEntries   atomic.Uint64
	droppedEntries atomic.Uint64
	invalidEntries atomic.Uint64
	lastEntryTime  atomic.Value // time.Time
}

func newPublisher(component string, bufferSize int, logger *log.Logger) *publisher {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	p := &publisher{
		component:  component,
		bufferSize: bufferSize,
		logger:     logger,
	}
	p.lastEntryTime.Store(time.Time{})
	return p
}

func (p *publisher) Subscribe() <-chan core.LogEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan core.LogEvent, p.bufferSize)
	p.subscribers = append(p.subscribers, ch)
	return ch
}

func (p *publisher) publish(event core.LogEvent) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return false
	}

	p.totalEntries.Add(1)
	p.lastEntryTime.Store(event.Time)

	delivered := true
	for _, ch := range p.subscribers {
		select {
		case ch <- event:
		default:
			delivered = false
			p.droppedEntries.Add(1)
		}
	}

	if !delivered {
		p.logger.Debug("msg", "Dropped log event - subscriber buffer full",
			"component", p.component)
	}
	return delivered
}

// closeSubscribers is idempotent
func (p *publisher) closeSubscribers() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	for _, ch := range p.subscribers {
		close(ch)
	}
}

func (p *publisher) stats(sourceType string, startTime time.Time, details map[string]any) SourceStats {
	lastEntry, _ := p.lastEntryTime.Load().(time.Time)
	return SourceStats{
		Type:           sourceType,
		TotalEntries:   p.totalEntries.Load(),
		DroppedEntries: p.droppedEntries.Load(),
		StartTime:      startTime,
		LastEntryTime:  lastEntry,
		Details:        details,
	}
}

// parseLine turns one line into an event. A valid UTF-8 line holding a JSON
// wire event with a message is decoded as such; anything else is plain text
// in the given encoding, so bad bytes surface at format time.
func parseLine(line []byte, defaultSource, encoding string) core.LogEvent {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) > 0 && trimmed[0] == '{' && utf8.Valid(trimmed) {
		var wire core.WireEvent
		if err := json.Unmarshal(trimmed, &wire); err == nil && wire.Message != "" {
			return wire.ToLogEvent(defaultSource)
		}
	}

	// Read buffers are reused, keep a private copy
	msg := make([]byte, len(line))
	copy(msg, line)

	return core.LogEvent{
		Time:     time.Now(),
		Severity: core.ExtractSeverity(string(line)),
		Message:  msg,
		Encoding: encoding,
		Source:   defaultSource,
	}
}
