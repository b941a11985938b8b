// FILE: hookwisp/src/internal/limit/limiter.go
package limit

import (
	"context"
	"sync/atomic"

	"hookwisp/src/internal/config"

	"github.com/lixenwraith/log"
	"golang.org/x/time/rate"
)

// Limiter bounds how fast notifications are posted to the webhook.
// A nil *Limiter is valid and permits everything.
type Limiter struct {
	limiter *rate.Limiter
	policy  config.RateLimitPolicy
	logger  *log.Logger

	// Statistics
	allowedCount atomic.Uint64
	droppedCount atomic.Uint64
	waitedCount  atomic.Uint64
}

// NewLimiter creates a limiter from configuration. If cfg.Rate is 0, it returns nil.
func NewLimiter(cfg config.RateLimitConfig, logger *log.Logger) *Limiter {
	if cfg.Rate <= 0 {
		return nil
	}

	burst := int(cfg.Burst)
	if burst <= 0 {
		burst = int(cfg.Rate)
		if burst < 1 {
			burst = 1
		}
	}

	l := &Limiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), burst),
		policy:  cfg.ParsePolicy(),
		logger:  logger,
	}

	logger.Info("msg", "Rate limiter created",
		"component", "limiter",
		"rate", cfg.Rate,
		"burst", burst,
		"policy", policyString(l.policy))

	return l
}

// Allow reports whether one more notification may be posted now.
// Under the wait policy it blocks until a token frees up or ctx ends.
func (l *Limiter) Allow(ctx context.Context) bool {
	if l == nil {
		return true
	}

	if l.policy == config.PolicyWait {
		if l.limiter.Allow() {
			l.allowedCount.Add(1)
			return true
		}
		l.waitedCount.Add(1)
		if err := l.limiter.Wait(ctx); err != nil {
			l.droppedCount.Add(1)
			return false
		}
		l.allowedCount.Add(1)
		return true
	}

	if l.limiter.Allow() {
		l.allowedCount.Add(1)
		return true
	}

	// Not enough tokens, drop
	l.droppedCount.Add(1)
	return false
}

// GetStats returns statistics for the limiter.
func (l *Limiter) GetStats() map[string]any {
	if l == nil {
		return map[string]any{
			"enabled": false,
		}
	}

	return map[string]any{
		"enabled":       true,
		"policy":        policyString(l.policy),
		"rate":          float64(l.limiter.Limit()),
		"burst":         l.limiter.Burst(),
		"tokens":        l.limiter.Tokens(),
		"allowed_total": l.allowedCount.Load(),
		"dropped_total": l.droppedCount.Load(),
		"waited_total":  l.waitedCount.Load(),
	}
}

func policyString(p config.RateLimitPolicy) string {
	switch p {
	case config.PolicyDrop:
		return "drop"
	case config.PolicyWait:
		return "wait"
	default:
		return "unknown"
	}
}
