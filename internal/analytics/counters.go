package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/gitfolio/gitfolio/internal/cache"
	"github.com/gitfolio/gitfolio/internal/metrics"
)

// DefaultFlushInterval is how often view counters are drained.
const DefaultFlushInterval = 1 * time.Minute

// CounterFlusher periodically drains the per-artifact Redis view
// counters into the metrics recorder. The serve path bumps counters
// with a plain INCR, so they survive stream publish drops; flushing
// them keeps the /metrics view totals honest even when events are
// trimmed from the stream.
type CounterFlusher struct {
	cache    *cache.Cache
	metrics  metrics.Recorder
	logger   *slog.Logger
	interval time.Duration
}

// NewCounterFlusher creates a new CounterFlusher.
func NewCounterFlusher(c *cache.Cache, recorder metrics.Recorder, logger *slog.Logger, interval time.Duration) *CounterFlusher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	return &CounterFlusher{
		cache:    c,
		metrics:  recorder,
		logger:   logger.With("component", "analytics.counters"),
		interval: interval,
	}
}

// Run drains counters on a ticker until ctx is cancelled. A final
// flush runs on shutdown so short-lived counts are not lost.
func (f *CounterFlusher) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			f.Flush(flushCtx)
			cancel()
			f.logger.Info("counter flusher stopping")
			return
		case <-ticker.C:
			f.Flush(ctx)
		}
	}
}

// Flush drains all pending view counters once. Errors are logged and
// the remaining keys are still processed.
func (f *CounterFlusher) Flush(ctx context.Context) {
	keys, err := f.cache.ScanViewKeys(ctx)
	if err != nil {
		f.logger.Warn("view counter scan failed", "error", err)
		return
	}

	var total int64
	for _, key := range keys {
		kind, username, ok := cache.ParseViewKey(key)
		if !ok {
			f.logger.Warn("skipping malformed view counter key", "key", key)
			continue
		}

		count, err := f.cache.GetAndResetViews(ctx, kind, username)
		if err != nil {
			f.logger.Warn("view counter flush failed", "key", key, "error", err)
			continue
		}
		if count == 0 {
			continue
		}

		f.metrics.AddArtifactViews(string(kind), count)
		total += count
	}

	if total > 0 {
		f.logger.Debug("view counters flushed", "keys", len(keys), "views", total)
	}
}
