// FILE: hookwisp/src/cmd/hookwisp/commands/send.go
package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"hookwisp/src/internal/config"
	"hookwisp/src/internal/core"
	"hookwisp/src/internal/sink"

	"github.com/lixenwraith/log"
	"golang.org/x/term"
)

// maxStdinMessage bounds a message piped into send
const maxStdinMessage = 1 * 1024 * 1024

// SendCommand posts a single notification and reports the outcome.
// Delivery errors always propagate so the exit status reflects them.
type SendCommand struct {
	output io.Writer
	errOut io.Writer
	stdin  io.Reader

	// Swappable for tests
	stdinIsTerminal func() bool
	loadConfig      func() (*config.Config, error)
	logger          *log.Logger
}

// NewSendCommand creates a send command bound to the process streams
func NewSendCommand() *SendCommand {
	return &SendCommand{
		output: os.Stdout,
		errOut: os.Stderr,
		stdin:  os.Stdin,
		stdinIsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
		loadConfig: func() (*config.Config, error) {
			return config.LoadWithCLI(nil)
		},
	}
}

func (c *SendCommand) Execute(args []string) error {
	cmd := flag.NewFlagSet("send", flag.ContinueOnError)
	cmd.SetOutput(c.errOut)

	var (
		level      = cmd.String("level", "ERROR", "Severity: TRACE, DEBUG, INFO, WARN, ERROR, FATAL")
		sourceName = cmd.String("source", "cli", "Source label for the event")
		configFile = cmd.String("config", "", "Config file path")
		webhookURL = cmd.String("url", "", "Webhook URL (overrides config)")
		username   = cmd.String("username", "", "Sender name (overrides config)")
		channel    = cmd.String("channel", "", "Channel (overrides config)")
		encoding   = cmd.String("encoding", "", "Charset of the message bytes")
		hostLabel  = cmd.String("host", "", "Host label in the title (overrides config)")
	)

	cmd.Usage = func() {
		fmt.Fprint(c.errOut, c.Help())
	}

	if err := cmd.Parse(args); err != nil {
		return err
	}

	severity := core.ParseSeverity(*level)
	if severity == core.SeverityUnknown {
		return fmt.Errorf("invalid level: %s", *level)
	}

	message, err := c.readMessage(cmd.Args())
	if err != nil {
		return err
	}

	if *configFile != "" {
		os.Setenv("HOOKWISP_CONFIG_FILE", *configFile)
	}
	cfg, loadErr := c.loadConfig()
	if cfg == nil {
		return fmt.Errorf("failed to load config: %w", loadErr)
	}

	// Webhook settings are rechecked by the sink; unrelated validation
	// failures (sources, relay) do not matter for a one-shot send
	wh := cfg.Webhook
	if *webhookURL != "" {
		wh.URL = *webhookURL
	}
	if *username != "" {
		wh.Username = *username
	}
	if *channel != "" {
		wh.Channel = *channel
	}
	if *hostLabel != "" {
		wh.HostLabel = *hostLabel
	}
	wh.ErrorMode = config.ErrorModePropagate

	logger, cleanup, err := c.commandLogger()
	if err != nil {
		return err
	}
	defer cleanup()

	webhookSink, err := sink.NewWebhookSink(wh, logger)
	if err != nil {
		return err
	}

	event := core.LogEvent{
		Time:     time.Now(),
		Severity: severity,
		Message:  message,
		Encoding: *encoding,
		Source:   *sourceName,
	}

	if err := webhookSink.Submit(event); err != nil {
		return fmt.Errorf("notification not delivered: %w", err)
	}

	fmt.Fprintf(c.output, "Notification delivered: %s on %s\n", severity, webhookSink.HostLabel())
	return nil
}

// readMessage joins positional words, or reads piped stdin when there are none
func (c *SendCommand) readMessage(words []string) ([]byte, error) {
	if len(words) > 0 {
		return []byte(strings.Join(words, " ")), nil
	}

	if c.stdinIsTerminal != nil && c.stdinIsTerminal() {
		return nil, errors.New("no message given and stdin is a terminal")
	}

	data, err := io.ReadAll(io.LimitReader(c.stdin, maxStdinMessage+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(data) > maxStdinMessage {
		return nil, fmt.Errorf("message exceeds %d bytes", maxStdinMessage)
	}

	data = []byte(strings.TrimRight(string(data), "\r\n"))
	if len(data) == 0 {
		return nil, errors.New("message is empty")
	}
	return data, nil
}

// commandLogger returns the injected logger or a stderr logger at warn level
func (c *SendCommand) commandLogger() (*log.Logger, func(), error) {
	if c.logger != nil {
		return c.logger, func() {}, nil
	}

	logger := log.NewLogger()
	err := logger.ApplyConfigString(
		"disable_file=true",
		"enable_stdout=true",
		"stdout_target=stderr",
		fmt.Sprintf("level=%d", log.LevelWarn))
	if err == nil {
		err = logger.Start()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, func() { _ = logger.Shutdown(time.Second) }, nil
}

func (c *SendCommand) Description() string {
	return "Send a single notification to the webhook"
}

func (c *SendCommand) Help() string {
	return `Send Command - Post one notification and exit

Usage:
  hookwisp send [options] [message...]
  echo "message" | hookwisp send [options]

Options:
  -level <name>      Severity: TRACE, DEBUG, INFO, WARN, ERROR, FATAL (default ERROR)
  -source <name>     Source label for the event (default cli)
  -config <path>     Config file path
  -url <url>         Webhook URL (overrides config)
  -username <name>   Sender name (overrides config)
  -channel <name>    Channel (overrides config)
  -host <label>      Host label in the title (overrides config)
  -encoding <name>   Charset of the message bytes (default from config)

The exit status is non-zero when the notification could not be delivered.

Examples:
  hookwisp send -level WARN "disk usage at 91%"
  tail -n 20 app.log | hookwisp send -level ERROR -channel "#ops"
`
}
