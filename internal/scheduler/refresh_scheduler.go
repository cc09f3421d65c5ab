package scheduler

import (
	"context"
	"time"

	"github.com/library-fullstack/borrowcart/internal/app/store"
	"github.com/library-fullstack/borrowcart/pkg/logger"
	"github.com/robfig/cron/v3"
)

// RefreshScheduler periodically refetches the canonical cart so availability
// drift (other borrowers taking or returning copies) is picked up without a
// user-triggered mutation.
type RefreshScheduler struct {
	cron     *cron.Cron
	store    store.CartStore
	cronSpec string
}

// NewRefreshScheduler creates a scheduler that refetches on cronSpec
// (for example "*/5 * * * *" for every five minutes).
func NewRefreshScheduler(s store.CartStore, cronSpec string) *RefreshScheduler {
	return &RefreshScheduler{
		cron:     cron.New(),
		store:    s,
		cronSpec: cronSpec,
	}
}

// Start registers the refetch job and starts the cron loop.
func (s *RefreshScheduler) Start() error {
	_, err := s.cron.AddFunc(s.cronSpec, func() {
		logger.Debug("Starting scheduled cart refetch", nil)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := s.store.Refetch(ctx); err != nil {
			logger.Warn("Scheduled cart refetch failed", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}

		logger.Debug("Scheduled cart refetch completed", nil)
	})
	if err != nil {
		logger.Error("Failed to add cron job for cart refetch", err, map[string]interface{}{
			"spec": s.cronSpec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Cart refresh scheduler started", map[string]interface{}{
		"spec": s.cronSpec,
	})
	return nil
}

// Stop halts the cron loop.
func (s *RefreshScheduler) Stop() {
	logger.Info("Stopping cart refresh scheduler", nil)
	s.cron.Stop()
}
