// FILE: hookwisp/src/cmd/hookwisp/commands/version.go
package commands

import (
	"fmt"

	"hookwisp/src/internal/version"
)

// VersionCommand handles version display
type VersionCommand struct{}

// NewVersionCommand creates a new version command
func NewVersionCommand() *VersionCommand {
	return &VersionCommand{}
}

func (c *VersionCommand) Execute(args []string) error {
	fmt.Println(version.String())
	return nil
}

func (c *VersionCommand) Description() string {
	return "Show version information"
}

func (c *VersionCommand) Help() string {
	return `Version Command - Show HookWisp version information

Usage:
  hookwisp version
  hookwisp -v
  hookwisp --version
`
}
