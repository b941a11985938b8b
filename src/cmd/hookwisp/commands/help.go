// FILE: hookwisp/src/cmd/hookwisp/commands/help.go
package commands

import (
	"fmt"
	"sort"
	"strings"
)

// generalHelpTemplate is the default help message shown when no specific command is requested.
const generalHelpTemplate = `HookWisp: relay log events to a chat webhook as colored notifications.

Usage:
  hookwisp [command] [options]
  hookwisp [options]

Commands:
%s

Application Options:
  -c, --config <path>        Path to configuration file (default: ~/.config/hookwisp.toml)
  -h, --help                 Display this help message and exit
  -v, --version              Display version information and exit
  -q, --quiet                Suppress all console output, including errors
      --save-config <path>   Write the effective configuration as TOML and exit
      --keep-secrets         Keep webhook URL and JWT secret in the saved file

Configuration Overrides:
  --<section>.<key>=<value>  e.g. --webhook.channel=#ops --relay.workers=8

For command-specific help:
  hookwisp help <command>
  hookwisp <command> --help

Configuration Sources (Precedence: CLI > Env > File > Defaults):
  - CLI flags override all other settings
  - Environment variables (HOOKWISP_WEBHOOK_URL, ...) override file settings
  - TOML configuration file is the primary method

Examples:
  # Relay an application's output
  myapp 2>&1 | hookwisp --webhook.url=https://hooks.example.com/services/T0/B0/X

  # Accept JSON events over HTTP and TCP
  hookwisp -c /etc/hookwisp/prod.toml

  # Send one notification
  hookwisp send -level WARN "disk usage at 91%%"

  # Create a static bearer token for the HTTP source
  hookwisp token -l 48
`

// HelpCommand displays general or command-specific help messages.
type HelpCommand struct {
	router *CommandRouter
}

// NewHelpCommand creates a new help command handler.
func NewHelpCommand(router *CommandRouter) *HelpCommand {
	return &HelpCommand{router: router}
}

// Execute displays the appropriate help message based on the provided arguments.
func (c *HelpCommand) Execute(args []string) error {
	if len(args) > 0 && args[0] != "" {
		cmdName := args[0]

		if handler, exists := c.router.GetCommand(cmdName); exists {
			fmt.Fprint(c.router.output, handler.Help())
			return nil
		}

		return fmt.Errorf("unknown command: %s", cmdName)
	}

	fmt.Fprintf(c.router.output, generalHelpTemplate, c.formatCommandList())
	return nil
}

func (c *HelpCommand) Description() string {
	return "Display help information"
}

func (c *HelpCommand) Help() string {
	return `Help Command - Display help information

Usage:
  hookwisp help              Show general help
  hookwisp help <command>    Show help for a specific command

Examples:
  hookwisp help send         # Show send command help
  hookwisp send --help       # Alternative way to get command help
`
}

// formatCommandList creates an aligned list of all available commands.
func (c *HelpCommand) formatCommandList() string {
	commands := c.router.GetCommands()

	names := make([]string, 0, len(commands))
	maxLen := 0
	for name := range commands {
		names = append(names, name)
		if len(name) > maxLen {
			maxLen = len(name)
		}
	}
	sort.Strings(names)

	var lines []string
	for _, name := range names {
		padding := strings.Repeat(" ", maxLen-len(name)+2)
		lines = append(lines, fmt.Sprintf("  %s%s%s", name, padding, commands[name].Description()))
	}

	return strings.Join(lines, "\n")
}
