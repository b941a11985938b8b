// FILE: hookwisp/src/cmd/hookwisp/commands/token.go
package commands

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"hookwisp/src/internal/auth"

	"golang.org/x/term"
)

// TokenCommand generates static bearer tokens for the HTTP source
type TokenCommand struct {
	output io.Writer
	errOut io.Writer
	stdin  io.Reader

	// Swappable for tests
	stdinIsTerminal func() bool
	readPassword    func() ([]byte, error)
}

func NewTokenCommand() *TokenCommand {
	return &TokenCommand{
		output: os.Stdout,
		errOut: os.Stderr,
		stdin:  os.Stdin,
		stdinIsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
		readPassword: func() ([]byte, error) {
			return term.ReadPassword(int(os.Stdin.Fd()))
		},
	}
}

func (tc *TokenCommand) Execute(args []string) error {
	cmd := flag.NewFlagSet("token", flag.ContinueOnError)
	cmd.SetOutput(tc.errOut)

	var (
		length     = cmd.Int("l", 32, "Token length in bytes")
		lengthLong = cmd.Int("length", 32, "Token length in bytes")
		existing   = cmd.String("token", "", "Hash an existing token instead of generating one")
		prompt     = cmd.Bool("prompt", false, "Read an existing token from stdin")
	)

	cmd.Usage = func() {
		fmt.Fprint(tc.errOut, tc.Help())
	}

	if err := cmd.Parse(args); err != nil {
		return err
	}
	if cmd.NArg() > 0 {
		return fmt.Errorf("unexpected argument(s): %s", strings.Join(cmd.Args(), " "))
	}

	finalLength := *length
	if *lengthLong != 32 {
		finalLength = *lengthLong
	}

	token := *existing
	generated := false
	switch {
	case token != "" && *prompt:
		return fmt.Errorf("-token and -prompt are mutually exclusive")
	case *prompt:
		var err error
		if token, err = tc.readToken(); err != nil {
			return err
		}
	case token == "":
		var err error
		if token, err = auth.GenerateToken(finalLength); err != nil {
			return err
		}
		generated = true
	}

	hash, err := auth.HashToken(token)
	if err != nil {
		return fmt.Errorf("failed to hash token: %w", err)
	}

	fmt.Fprintln(tc.output, "# Static bearer token for the HTTP source")
	fmt.Fprintln(tc.output, "# Add to hookwisp.toml:")
	fmt.Fprintln(tc.output, "")
	fmt.Fprintln(tc.output, "[sources.http]")
	fmt.Fprintf(tc.output, "token_hashes = [%q]\n", hash)
	if generated {
		fmt.Fprintln(tc.output, "")
		fmt.Fprintln(tc.output, "# Token (shown once, send as 'Authorization: Bearer <token>'):")
		fmt.Fprintln(tc.output, token)
	}
	return nil
}

// readToken reads one token line, without echo when stdin is a terminal
func (tc *TokenCommand) readToken() (string, error) {
	if tc.stdinIsTerminal() {
		fmt.Fprint(tc.errOut, "Enter token: ")
		raw, err := tc.readPassword()
		fmt.Fprintln(tc.errOut)
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return validateTokenInput(string(raw))
	}

	line, err := bufio.NewReader(tc.stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return validateTokenInput(line)
}

func validateTokenInput(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty token")
	}
	return s, nil
}

func (tc *TokenCommand) Description() string {
	return "Generate a bearer token and its hash for the HTTP source"
}

func (tc *TokenCommand) Help() string {
	return `Token Command - Generate static bearer tokens for the HTTP source

Usage:
  hookwisp token [options]

Options:
  -l, --length <bytes>   Token length in bytes, 16 to 512 (default: 32)
  --token <value>        Hash an existing token instead of generating one
  --prompt               Read an existing token from stdin (no echo on a terminal)

Examples:
  # Generate a 48-byte token
  hookwisp token -l 48

  # Hash a token kept in a secret store
  vault read -field=token secret/hookwisp | hookwisp token --prompt

Output:
  A [sources.http] snippet with the argon2id hash. A generated token is
  printed once; only the hash belongs in the configuration file.
`
}
