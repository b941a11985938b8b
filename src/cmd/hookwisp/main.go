// FILE: hookwisp/src/cmd/hookwisp/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"hookwisp/src/cmd/hookwisp/commands"
	"hookwisp/src/internal/config"
	"hookwisp/src/internal/version"

	"github.com/lixenwraith/log"
)

const shutdownTimeout = 10 * time.Second

var logger *log.Logger

func main() {
	// Subcommands run before any config or logger setup
	router := commands.NewCommandRouter()
	handled, err := router.Route(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if handled {
		os.Exit(0)
	}

	flagCfg, err := ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	InitOutputHandler(flagCfg.Quiet)

	if flagCfg.ShowVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	if flagCfg.ConfigFile != "" {
		os.Setenv("HOOKWISP_CONFIG_FILE", flagCfg.ConfigFile)
	}

	cfg, err := config.LoadWithCLI(flagCfg.ConfigArgs)
	if cfg == nil {
		FatalError(1, "Failed to load config: %v\n", err)
	}

	// Saving works on an incomplete config so a template can be produced
	if flagCfg.SaveConfig != "" {
		if saveErr := cfg.SaveToFile(flagCfg.SaveConfig, flagCfg.KeepSecrets); saveErr != nil {
			FatalError(1, "Failed to save config: %v\n", saveErr)
		}
		Print("Configuration written to %s\n", flagCfg.SaveConfig)
		if err != nil {
			Error("Warning: saved configuration is not valid yet: %v\n", err)
		}
		os.Exit(0)
	}

	if err != nil {
		if flagCfg.ConfigFile != "" && strings.Contains(err.Error(), "not found") {
			FatalError(2, "Config file not found: %s\n", flagCfg.ConfigFile)
		}
		FatalError(1, "Invalid configuration: %v\n", err)
	}
	cfg.Quiet = cfg.Quiet || flagCfg.Quiet

	if err := initializeLogger(cfg); err != nil {
		FatalError(1, "Failed to initialize logger: %v\n", err)
	}
	defer shutdownLogger()

	logger.Info("msg", "HookWisp starting",
		"version", version.String(),
		"config_file", config.GetConfigPath(),
		"log_output", cfg.Logging.Output)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	relay, err := bootstrapRelay(ctx, cfg)
	if err != nil {
		logger.Error("msg", "Failed to bootstrap relay", "error", err)
		shutdownLogger()
		os.Exit(1)
	}

	sigHandler := NewSignalHandler(relay, logger)
	defer sigHandler.Stop()

	// When stdin is the only input, its EOF ends the process
	var inputDone <-chan struct{}
	if len(relay.Sources) == 1 {
		inputDone = relay.StdinEOF()
	}

	select {
	case sig := <-sigHandler.Wait(ctx):
		logger.Info("msg", "Shutdown signal received, starting graceful shutdown",
			"signal", sig)
	case <-inputDone:
		logger.Info("msg", "Input exhausted, draining relay")
	}

	relay.Shutdown(shutdownTimeout)
	logger.Info("msg", "Shutdown complete")
}

func shutdownLogger() {
	if logger != nil {
		if err := logger.Shutdown(2 * time.Second); err != nil {
			// Best effort - can't log the shutdown error
			Error("Logger shutdown error: %v\n", err)
		}
	}
}
