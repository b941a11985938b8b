// FILE: hookwisp/src/internal/format/charset.go
package format

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"hookwisp/src/internal/core"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

var errUndecodable = errors.New("undecodable byte sequence")

// EncodingError reports message bytes that cannot be decoded with the
// configured charset, or a charset name that is not recognized.
type EncodingError struct {
	Encoding string
	Offset   int // byte offset of the first bad sequence, -1 if unknown
	Err      error
}

func (e *EncodingError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("cannot decode message as %s at byte %d: %v", e.Encoding, e.Offset, e.Err)
	}
	return fmt.Sprintf("cannot decode message as %s: %v", e.Encoding, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// ValidateEncoding checks that a charset name is known
func ValidateEncoding(charset string) error {
	_, _, err := lookupEncoding(charset)
	return err
}

// Decode converts raw message bytes in the given charset into a Go string.
// Invalid input is an error, never silently replaced.
func Decode(data []byte, charset string) (string, error) {
	if charset == "" {
		charset = core.DefaultEncoding
	}

	enc, name, err := lookupEncoding(charset)
	if err != nil {
		return "", err
	}

	// utf-8 passes through once validated
	if name == "utf-8" {
		if offset := firstInvalidUTF8(data); offset >= 0 {
			return "", &EncodingError{Encoding: charset, Offset: offset, Err: errUndecodable}
		}
		return string(data), nil
	}

	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", &EncodingError{Encoding: charset, Offset: -1, Err: err}
	}
	// x/text decoders substitute U+FFFD for bytes that have no mapping.
	// A genuine U+FFFD in the input survives a strict re-encode unchanged.
	if bytes.ContainsRune(out, utf8.RuneError) {
		back, err := enc.NewEncoder().Bytes(out)
		if err != nil || !bytes.Equal(back, data) {
			return "", &EncodingError{Encoding: charset, Offset: -1, Err: errUndecodable}
		}
	}
	return string(out), nil
}

func lookupEncoding(charset string) (encoding.Encoding, string, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, "", &EncodingError{Encoding: charset, Offset: -1, Err: fmt.Errorf("unsupported encoding: %w", err)}
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = charset
	}
	return enc, name, nil
}

func firstInvalidUTF8(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}
