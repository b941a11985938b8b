// FILE: hookwisp/src/internal/service/relay.go
package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"hookwisp/src/internal/core"
	"hookwisp/src/internal/filter"
	"hookwisp/src/internal/limit"
	"hookwisp/src/internal/sink"
	"hookwisp/src/internal/source"

	"github.com/lixenwraith/log"
)

// Relay moves events from sources through the filter chain and rate limiter
// into a fixed pool of workers that submit them to the sink.
type Relay struct {
	Sources     []source.Source
	FilterChain *filter.Chain
	Limiter     *limit.Limiter
	Sink        sink.Sink
	Stats       *RelayStats
	logger      *log.Logger

	workers       int
	statsInterval time.Duration
	queue         chan core.LogEvent

	ctx        context.Context
	cancel     context.CancelFunc
	forwardWg  sync.WaitGroup
	workerWg   sync.WaitGroup
	started    atomic.Bool
	shutdownMu sync.Mutex
	stopped    bool
}

// RelayStats contains counters for a relay
type RelayStats struct {
	StartTime             time.Time
	TotalReceived         atomic.Uint64
	TotalFiltered         atomic.Uint64
	TotalDroppedQueueFull atomic.Uint64
	TotalDroppedRateLimit atomic.Uint64
	TotalDroppedShutdown  atomic.Uint64
	TotalSubmitted        atomic.Uint64
	TotalSubmitErrors     atomic.Uint64
	TotalPanics           atomic.Uint64
}

// RelayOptions sizes the worker pool
type RelayOptions struct {
	Workers       int
	BufferSize    int
	StatsInterval time.Duration
}

// NewRelay assembles a relay. Chain and limiter may be nil.
func NewRelay(ctx context.Context, opts RelayOptions, sources []source.Source, chain *filter.Chain, limiter *limit.Limiter, snk sink.Sink, logger *log.Logger) (*Relay, error) {
	if snk == nil {
		return nil, fmt.Errorf("relay requires a sink")
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("relay requires at least one source")
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	bufferSize := opts.BufferSize
	if bufferSize < 1 {
		bufferSize = 1000
	}

	relayCtx, cancel := context.WithCancel(ctx)
	return &Relay{
		Sources:       sources,
		FilterChain:   chain,
		Limiter:       limiter,
		Sink:          snk,
		Stats:         &RelayStats{StartTime: time.Now()},
		logger:        logger,
		workers:       workers,
		statsInterval: opts.StatsInterval,
		queue:         make(chan core.LogEvent, bufferSize),
		ctx:           relayCtx,
		cancel:        cancel,
	}, nil
}

// Start launches workers, wires sources and starts them
func (r *Relay) Start() error {
	if !r.started.CompareAndSwap(false, true) {
		return fmt.Errorf("relay already started")
	}

	for i := 0; i < r.workers; i++ {
		r.workerWg.Add(1)
		go r.worker(i)
	}

	for _, src := range r.Sources {
		r.forwardWg.Add(1)
		go r.forward(src, src.Subscribe())
	}

	for i, src := range r.Sources {
		if err := src.Start(); err != nil {
			r.Shutdown(time.Second)
			return fmt.Errorf("failed to start source[%d]: %w", i, err)
		}
	}

	if r.statsInterval > 0 {
		go r.statsReporter()
	}

	r.logger.Info("msg", "Relay started",
		"component", "relay",
		"workers", r.workers,
		"buffer_size", cap(r.queue),
		"source_count", len(r.Sources))
	return nil
}

// forward copies one source's events into the shared queue
func (r *Relay) forward(src source.Source, events <-chan core.LogEvent) {
	defer r.forwardWg.Done()

	for event := range events {
		r.Stats.TotalReceived.Add(1)

		if r.FilterChain != nil && !r.FilterChain.Apply(event) {
			r.Stats.TotalFiltered.Add(1)
			continue
		}

		select {
		case r.queue <- event:
		default:
			r.Stats.TotalDroppedQueueFull.Add(1)
			r.logger.Debug("msg", "Dropped log event - relay queue full",
				"component", "relay",
				"source", src.GetStats().Type)
		}
	}
}

func (r *Relay) worker(id int) {
	defer r.workerWg.Done()

	for event := range r.queue {
		if r.ctx.Err() != nil {
			r.Stats.TotalDroppedShutdown.Add(1)
			continue
		}

		if !r.Limiter.Allow(r.ctx) {
			r.Stats.TotalDroppedRateLimit.Add(1)
			continue
		}

		r.submit(id, event)
	}
}

// submit isolates the worker from a panicking sink
func (r *Relay) submit(id int, event core.LogEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			r.Stats.TotalPanics.Add(1)
			r.logger.Error("msg", "Panic in sink submit",
				"component", "relay",
				"worker", id,
				"panic", rec)
		}
	}()

	r.Stats.TotalSubmitted.Add(1)
	if err := r.Sink.Submit(event); err != nil {
		r.Stats.TotalSubmitErrors.Add(1)
		r.logger.Warn("msg", "Sink rejected event",
			"component", "relay",
			"worker", id,
			"error", err)
	}
}

// Shutdown stops sources and drains the queue. Events still queued when
// timeout expires are discarded.
func (r *Relay) Shutdown(timeout time.Duration) {
	r.shutdownMu.Lock()
	defer r.shutdownMu.Unlock()
	if r.stopped {
		return
	}
	r.stopped = true

	r.logger.Info("msg", "Relay shutdown initiated",
		"component", "relay",
		"queued", len(r.queue))

	// Sources close their subscriber channels, which ends the forwarders
	var wg sync.WaitGroup
	for _, src := range r.Sources {
		wg.Add(1)
		go func(s source.Source) {
			defer wg.Done()
			s.Stop()
		}(src)
	}
	wg.Wait()
	r.forwardWg.Wait()

	close(r.queue)

	done := make(chan struct{})
	go func() {
		r.workerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		r.logger.Warn("msg", "Relay drain timed out, discarding queued events",
			"component", "relay",
			"remaining", len(r.queue))
		r.cancel()
		<-done
	}
	r.cancel()

	r.logger.Info("msg", "Relay shutdown complete",
		"component", "relay",
		"submitted", r.Stats.TotalSubmitted.Load(),
		"dropped_shutdown", r.Stats.TotalDroppedShutdown.Load())
}

// GetStats returns relay statistics including all components
func (r *Relay) GetStats() map[string]any {
	sourceStats := make([]map[string]any, 0, len(r.Sources))
	for _, src := range r.Sources {
		stats := src.GetStats()
		sourceStats = append(sourceStats, map[string]any{
			"type":            stats.Type,
			"total_entries":   stats.TotalEntries,
			"dropped_entries": stats.DroppedEntries,
			"start_time":      stats.StartTime,
			"last_entry_time": stats.LastEntryTime,
			"details":         stats.Details,
		})
	}

	var filterStats map[string]any
	if r.FilterChain != nil {
		filterStats = r.FilterChain.GetStats()
	}

	sinkStats := r.Sink.GetStats()

	return map[string]any{
		"uptime_seconds":           int(time.Since(r.Stats.StartTime).Seconds()),
		"workers":                  r.workers,
		"queue_length":             len(r.queue),
		"queue_capacity":           cap(r.queue),
		"total_received":           r.Stats.TotalReceived.Load(),
		"total_filtered":           r.Stats.TotalFiltered.Load(),
		"total_dropped_queue_full": r.Stats.TotalDroppedQueueFull.Load(),
		"total_dropped_rate_limit": r.Stats.TotalDroppedRateLimit.Load(),
		"total_dropped_shutdown":   r.Stats.TotalDroppedShutdown.Load(),
		"total_submitted":          r.Stats.TotalSubmitted.Load(),
		"total_submit_errors":      r.Stats.TotalSubmitErrors.Load(),
		"total_panics":             r.Stats.TotalPanics.Load(),
		"sources":                  sourceStats,
		"filters":                  filterStats,
		"rate_limiter":             r.Limiter.GetStats(),
		"sink": map[string]any{
			"type":            sinkStats.Type,
			"total_submitted": sinkStats.TotalSubmitted,
			"total_delivered": sinkStats.TotalDelivered,
			"total_failed":    sinkStats.TotalFailed,
			"last_submitted":  sinkStats.LastSubmitted,
			"details":         sinkStats.Details,
		},
	}
}

// statsReporter logs a summary line on a fixed interval
func (r *Relay) statsReporter() {
	ticker := time.NewTicker(r.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			sinkStats := r.Sink.GetStats()
			r.logger.Info("msg", "Relay status",
				"component", "relay",
				"received", r.Stats.TotalReceived.Load(),
				"filtered", r.Stats.TotalFiltered.Load(),
				"queued", len(r.queue),
				"delivered", sinkStats.TotalDelivered,
				"failed", sinkStats.TotalFailed,
				"dropped_rate_limit", r.Stats.TotalDroppedRateLimit.Load(),
				"dropped_queue_full", r.Stats.TotalDroppedQueueFull.Load())
		}
	}
}
