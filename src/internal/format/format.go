// FILE: hookwisp/src/internal/format/format.go
package format

import (
	"hookwisp/src/internal/core"
)

// Notification is the plain-text rendering of one event, before any
// chat markup escaping.
type Notification struct {
	Title string
	Body  string
	Color core.ColorCode
}

// Format renders an event for the host identified by hostLabel.
// The event's own encoding wins over the supplied default.
// It has no side effects.
func Format(event core.LogEvent, hostLabel, encoding string) (Notification, error) {
	charset := event.Encoding
	if charset == "" {
		charset = encoding
	}

	body, err := Decode(event.Message, charset)
	if err != nil {
		return Notification{}, err
	}

	return Notification{
		Title: event.Severity.String() + " on " + hostLabel,
		Body:  body,
		Color: core.SeverityColor(event.Severity),
	}, nil
}
