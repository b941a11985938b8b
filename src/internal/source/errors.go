// FILE: hookwisp/src/internal/source/errors.go
package source

import "errors"

var (
	errMissingMessage = errors.New("missing required field: message")
	errNoEntries      = errors.New("no valid log entries found")
	errInvalidUTF8    = errors.New("body is not valid UTF-8")
)
