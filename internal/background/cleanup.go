package background

import (
	"context"
	"log/slog"
	"time"
)

// ResetTokenStore clears reset tokens past their expiry
type ResetTokenStore interface {
	ClearExpiredResetTokens(ctx context.Context, before time.Time) (int64, error)
}

// ThrottleSweeper drops idle throttle entries
type ThrottleSweeper interface {
	Sweep() int
}

// CleanupManager periodically drops expired reset tokens and idle login
// throttle entries.
type CleanupManager struct {
	store    ResetTokenStore
	throttle ThrottleSweeper
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	store ResetTokenStore,
	throttle ThrottleSweeper,
	logger *slog.Logger,
	interval time.Duration,
) *CleanupManager {
	return &CleanupManager{
		store:    store,
		throttle: throttle,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic cleanup task. It blocks until Stop is called or
// the context is cancelled, so it is run on its own goroutine.
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rowsCleared, err := cm.store.ClearExpiredResetTokens(cleanupCtx, time.Now())
	if err != nil {
		cm.logger.Error("failed to clear expired reset tokens", slog.Any("error", err))
	} else if rowsCleared > 0 {
		cm.logger.Info("cleared expired reset tokens", slog.Int64("rows", rowsCleared))
	}

	if dropped := cm.throttle.Sweep(); dropped > 0 {
		cm.logger.Info("swept idle throttle entries", slog.Int("entries", dropped))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
