// FILE: hookwisp/src/cmd/hookwisp/bootstrap.go
package main

import (
	"context"
	"fmt"
	"strings"

	"hookwisp/src/internal/config"
	"hookwisp/src/internal/service"
	"hookwisp/src/internal/version"

	"github.com/lixenwraith/log"
)

// bootstrapRelay creates and starts the relay from configuration
func bootstrapRelay(ctx context.Context, cfg *config.Config) (*service.Relay, error) {
	relay, err := service.NewRelayFromConfig(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := relay.Start(); err != nil {
		return nil, fmt.Errorf("failed to start relay: %w", err)
	}

	displayEndpoints(cfg)

	logger.Info("msg", "HookWisp started",
		"version", version.Short(),
		"sources", len(relay.Sources),
		"workers", cfg.Relay.Workers)

	return relay, nil
}

// displayEndpoints prints where events are accepted
func displayEndpoints(cfg *config.Config) {
	if cfg.Sources.Stdin.Enabled {
		Print("Reading log lines from stdin\n")
	}
	if cfg.Sources.HTTP.Enabled {
		auth := ""
		if cfg.Sources.HTTP.JWTSecret != "" {
			auth = " (bearer JWT required)"
		}
		Print("HTTP ingest: POST http://%s:%d%s%s\n",
			cfg.Sources.HTTP.Host, cfg.Sources.HTTP.Port, cfg.Sources.HTTP.IngestPath, auth)
	}
	if cfg.Sources.TCP.Enabled {
		Print("TCP ingest: %s:%d (newline-delimited)\n", cfg.Sources.TCP.Host, cfg.Sources.TCP.Port)
	}
}

// initializeLogger sets up the diagnostic logger based on configuration
func initializeLogger(cfg *config.Config) error {
	logger = log.NewLogger()
	if err := logger.ApplyConfigString(loggerArgs(cfg)...); err != nil {
		return err
	}
	return logger.Start()
}

// loggerArgs translates LogConfig into logger init overrides
func loggerArgs(cfg *config.Config) []string {
	var configArgs []string

	if cfg.Quiet {
		// In quiet mode, disable ALL logging output
		return append(configArgs,
			"disable_file=true",
			"enable_stdout=false",
			"level=255")
	}

	// Level was validated at config load
	levelValue, _ := parseLogLevel(cfg.Logging.Level)
	configArgs = append(configArgs, fmt.Sprintf("level=%d", levelValue))

	switch cfg.Logging.Output {
	case "none":
		configArgs = append(configArgs, "disable_file=true", "enable_stdout=false")

	case "stdout":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target=stdout")

	case "stderr":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target=stderr")

	case "file":
		configArgs = append(configArgs, "enable_stdout=false")
		configureFileLogging(&configArgs, cfg)

	case "both":
		configArgs = append(configArgs, "enable_stdout=true")
		configureFileLogging(&configArgs, cfg)
		configureConsoleTarget(&configArgs, cfg)
	}

	if cfg.Logging.Console.Format != "" {
		configArgs = append(configArgs, fmt.Sprintf("format=%s", cfg.Logging.Console.Format))
	}

	return configArgs
}

// configureFileLogging sets up file-based logging parameters
func configureFileLogging(configArgs *[]string, cfg *config.Config) {
	file := cfg.Logging.File
	*configArgs = append(*configArgs,
		fmt.Sprintf("directory=%s", file.Directory),
		fmt.Sprintf("name=%s", file.Name),
		fmt.Sprintf("max_size_mb=%d", file.MaxSizeMB),
		fmt.Sprintf("max_total_size_mb=%d", file.MaxTotalSizeMB))

	if file.RetentionHours > 0 {
		*configArgs = append(*configArgs,
			fmt.Sprintf("retention_period_hrs=%.1f", file.RetentionHours))
	}
}

// configureConsoleTarget sets up console output parameters
func configureConsoleTarget(configArgs *[]string, cfg *config.Config) {
	target := cfg.Logging.Console.Target
	if target == "" {
		target = "stderr"
	}

	// Split mode routes by level inside the log package
	if target == "split" {
		*configArgs = append(*configArgs, "stdout_split_mode=true", "stdout_target=split")
	} else {
		*configArgs = append(*configArgs, fmt.Sprintf("stdout_target=%s", target))
	}
}

func parseLogLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int(log.LevelDebug), nil
	case "info":
		return int(log.LevelInfo), nil
	case "warn", "warning":
		return int(log.LevelWarn), nil
	case "error":
		return int(log.LevelError), nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}
