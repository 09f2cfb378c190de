package workers

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/davidrzs/Timeboard/internal/calendar/application"
	"github.com/davidrzs/Timeboard/internal/calendar/domain"
)

// SyncWorkerConfig configures the background sync loop.
type SyncWorkerConfig struct {
	// Interval is the pause between sync cycles.
	Interval time.Duration
	// StaleThreshold selects calendars whose cache is older than this.
	StaleThreshold time.Duration
	// BatchSize caps how many calendars one cycle touches.
	BatchSize int
}

// DefaultSyncWorkerConfig returns the defaults used in local mode.
func DefaultSyncWorkerConfig() SyncWorkerConfig {
	return SyncWorkerConfig{
		Interval:       5 * time.Minute,
		StaleThreshold: 15 * time.Minute,
		BatchSize:      10,
	}
}

// SyncWorker periodically refreshes stale calendar caches in the
// background so interactive reads rarely have to wait on a sync.
type SyncWorker struct {
	engine  *application.SyncEngine
	states  domain.SyncStateRepository
	config  SyncWorkerConfig
	logger   *slog.Logger
	running  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewSyncWorker creates the worker.
func NewSyncWorker(
	engine *application.SyncEngine,
	states domain.SyncStateRepository,
	config SyncWorkerConfig,
	logger *slog.Logger,
) *SyncWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncWorker{
		engine: engine,
		states: states,
		config: config,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Run starts the worker and blocks until the context is cancelled or
// Stop is called.
func (w *SyncWorker) Run(ctx context.Context) error {
	w.running.Store(true)
	w.logger.Info("calendar sync worker started",
		"interval", w.config.Interval,
		"stale_threshold", w.config.StaleThreshold,
	)

	w.runCycle(ctx)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.running.Store(false)
			w.logger.Info("calendar sync worker stopped", "reason", "context cancelled")
			return ctx.Err()
		case <-w.stopCh:
			w.running.Store(false)
			w.logger.Info("calendar sync worker stopped", "reason", "stop signal")
			return nil
		case <-ticker.C:
			w.runCycle(ctx)
		}
	}
}

// Stop signals the worker to stop gracefully. Safe to call more than
// once, including concurrently.
func (w *SyncWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// IsRunning reports whether the worker loop is active.
func (w *SyncWorker) IsRunning() bool {
	return w.running.Load()
}

// runCycle syncs the stalest calendars, one batch per tick. Failures
// are recorded on the state and logged; the loop keeps going.
func (w *SyncWorker) runCycle(ctx context.Context) {
	pending, err := w.states.FindPendingSync(ctx, w.config.StaleThreshold, w.config.BatchSize)
	if err != nil {
		w.logger.Error("list pending calendar syncs", "error", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	w.logger.Debug("sync cycle", "pending", len(pending))
	for _, state := range pending {
		res := w.engine.SyncCalendar(ctx, state)
		switch {
		case res.Skipped:
			w.logger.Debug("sync skipped, lease held", "calendar_id", res.CalendarID)
		case res.Err != nil:
			w.logger.Warn("background sync failed",
				"calendar_id", res.CalendarID, "error", res.Err)
		}
	}
}
