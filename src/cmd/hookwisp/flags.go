// FILE: hookwisp/src/cmd/hookwisp/flags.go
package main

import (
	"fmt"
	"strings"
)

// FlagConfig holds the application flags handled before config loading.
// Everything else is left in ConfigArgs for the config loader, which
// accepts --section.key=value overrides.
type FlagConfig struct {
	ConfigFile  string
	Quiet       bool
	ShowVersion bool
	SaveConfig  string
	KeepSecrets bool
	ConfigArgs  []string
}

// ParseFlags extracts application flags from args (without program name)
func ParseFlags(args []string) (*FlagConfig, error) {
	fc := &FlagConfig{}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")

		// value returns the inline value or consumes the next argument
		next := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "-") {
				return "", fmt.Errorf("flag %s requires a value", name)
			}
			i++
			return args[i], nil
		}

		switch name {
		case "-c", "--config", "-config":
			v, err := next()
			if err != nil {
				return nil, err
			}
			fc.ConfigFile = v

		case "--save-config", "-save-config":
			v, err := next()
			if err != nil {
				return nil, err
			}
			fc.SaveConfig = v

		case "-q", "--quiet", "-quiet":
			fc.Quiet = !hasValue || value == "true"
			if fc.Quiet {
				// Forward so the loaded config agrees
				fc.ConfigArgs = append(fc.ConfigArgs, "--quiet=true")
			}

		case "-v", "--version", "-version":
			fc.ShowVersion = true

		case "--keep-secrets", "-keep-secrets":
			fc.KeepSecrets = !hasValue || value == "true"

		default:
			// Config overrides, in either --key=value or --key value form
			fc.ConfigArgs = append(fc.ConfigArgs, arg)
		}
	}

	if fc.KeepSecrets && fc.SaveConfig == "" {
		return nil, fmt.Errorf("--keep-secrets requires --save-config")
	}

	return fc, nil
}
