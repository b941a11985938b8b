// FILE: hookwisp/src/internal/message/builder.go
package message

import (
	"encoding/json"
	"fmt"
	"strings"

	"hookwisp/src/internal/core"
)

// ContentType is the media type of a serialized Payload
const ContentType = "application/json"

// Payload is the incoming-webhook notification document
type Payload struct {
	Username    *string      `json:"username,omitempty"`
	Channel     *string      `json:"channel,omitempty"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment carries the colored title and text of one event
type Attachment struct {
	Color core.ColorCode `json:"color"`
	Title string         `json:"title"`
	Text  string         `json:"text"`
}

// BuildError is a payload serialization failure
type BuildError struct {
	Err error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("failed to build webhook payload: %v", e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Single pass, so the '&' of an entity introduced for '<' or '>' is
// never escaped a second time.
var markupEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Escape applies the chat markup escaping of '&', '<' and '>'.
// It is not idempotent: Escape("&lt;") yields "&amp;lt;".
func Escape(text string) string {
	return markupEscaper.Replace(text)
}

// Build assembles the payload for one event. Nil sender or channel
// leaves the corresponding field out of the document.
func Build(title, body string, color core.ColorCode, sender, channel *string) Payload {
	return Payload{
		Username: sender,
		Channel:  channel,
		Attachments: []Attachment{{
			Color: color,
			Title: Escape(title),
			Text:  Escape(body),
		}},
	}
}

// Marshal serializes the payload. JSON string escaping keeps quotes and
// control characters in log text from breaking the document; HTML escaping
// is disabled since markup was already escaped by Build.
func Marshal(p Payload) ([]byte, error) {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, &BuildError{Err: err}
	}
	return []byte(strings.TrimSuffix(sb.String(), "\n")), nil
}
