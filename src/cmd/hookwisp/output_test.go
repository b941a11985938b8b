// FILE: hookwisp/src/cmd/hookwisp/output_test.go
package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleOutput(t *testing.T) {
	t.Run("Normal", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		o := newConsoleOutput(false, &stdout, &stderr)

		o.print("wrote %s\n", "hookwisp.toml")
		o.error("warning: %d\n", 1)

		assert.Equal(t, "wrote hookwisp.toml\n", stdout.String())
		assert.Equal(t, "warning: 1\n", stderr.String())
	})

	t.Run("QuietStillExits", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		o := newConsoleOutput(true, &stdout, &stderr)
		code := -1
		o.exit = func(c int) { code = c }

		o.print("hidden")
		o.fatal(2, "config file not found")

		assert.Empty(t, stdout.String())
		assert.Empty(t, stderr.String())
		assert.Equal(t, 2, code)
	})
}
