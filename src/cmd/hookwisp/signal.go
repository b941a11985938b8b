// FILE: hookwisp/src/cmd/hookwisp/signal.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"hookwisp/src/internal/service"

	"github.com/lixenwraith/log"
)

// SignalHandler turns OS signals into shutdown or stats dumps
type SignalHandler struct {
	relay   *service.Relay
	logger  *log.Logger
	sigChan chan os.Signal
}

// NewSignalHandler registers for termination and SIGUSR1
func NewSignalHandler(relay *service.Relay, logger *log.Logger) *SignalHandler {
	sh := &SignalHandler{
		relay:   relay,
		logger:  logger,
		sigChan: make(chan os.Signal, 1),
	}

	signal.Notify(sh.sigChan,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGUSR1, // Stats dump
	)

	return sh
}

// Wait delivers the first termination signal. SIGUSR1 logs relay stats
// and keeps waiting.
func (sh *SignalHandler) Wait(ctx context.Context) <-chan os.Signal {
	out := make(chan os.Signal, 1)
	go func() {
		for {
			select {
			case sig, ok := <-sh.sigChan:
				if !ok {
					return
				}
				if sig == syscall.SIGUSR1 {
					logRelayStats(sh.logger, sh.relay.GetStats())
					continue
				}
				out <- sig
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Stop cleans up signal handling
func (sh *SignalHandler) Stop() {
	signal.Stop(sh.sigChan)
}

func logRelayStats(logger *log.Logger, stats map[string]any) {
	fields := []any{"msg", "Relay stats", "component", "signal"}
	for _, key := range []string{
		"uptime_seconds",
		"total_received",
		"total_filtered",
		"total_submitted",
		"total_submit_errors",
		"total_dropped_queue_full",
		"total_dropped_rate_limit",
		"queue_length",
	} {
		if v, ok := stats[key]; ok {
			fields = append(fields, key, v)
		}
	}
	if sinkStats, ok := stats["sink"].(map[string]any); ok {
		fields = append(fields,
			"delivered", sinkStats["total_delivered"],
			"failed", sinkStats["total_failed"])
	}
	logger.Info(fields...)
}
