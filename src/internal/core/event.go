// FILE: hookwisp/src/internal/core/event.go
package core

import (
	"time"
)

// DefaultEncoding is used when neither the event nor the sink names a charset
const DefaultEncoding = "UTF-8"

// LogEvent is a single rendered log record handed to a sink.
// The sink only reads it for the duration of one call.
type LogEvent struct {
	Time     time.Time
	Severity Severity
	Message  []byte
	Encoding string // charset of Message, empty means the sink default
	Source   string
}

// Represents the JSON form accepted by network sources
type WireEvent struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level,omitempty"`
	Message string    `json:"message"`
	Source  string    `json:"source,omitempty"`
}

// Converts a decoded wire event into a LogEvent, filling defaults
func (w WireEvent) ToLogEvent(defaultSource string) LogEvent {
	ev := LogEvent{
		Time:     w.Time,
		Severity: ParseSeverity(w.Level),
		Message:  []byte(w.Message),
		Encoding: DefaultEncoding, // json.Unmarshal already produced UTF-8
		Source:   w.Source,
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
	if ev.Source == "" {
		ev.Source = defaultSource
	}
	return ev
}
