package insight

import (
	"context"
	"time"

	"fintrack/internal/logger"

	"go.uber.org/zap"
)

// Sweeper periodically dismisses expired recommendations.
type Sweeper struct {
	store    Store
	interval time.Duration
	now      func() time.Time
}

func NewSweeper(store Store, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run blocks until ctx is done. A non-positive interval returns at once.
func (s *Sweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Log.Info("recommendation sweeper started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("recommendation sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	count, err := s.store.DismissExpired(ctx, s.now())
	if err != nil {
		logger.Log.Error("failed to dismiss expired recommendations", zap.Error(err))
		return
	}
	if count > 0 {
		logger.Log.Info("dismissed expired recommendations", zap.Int64("count", count))
	}
}
