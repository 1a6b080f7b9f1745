package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mkim-dev/storefront-backend/internal/app/service"
	"github.com/mkim-dev/storefront-backend/pkg/logger"
)

// CategoryScheduler periodically rewarms the category cache so listings
// keep working through short catalog outages.
type CategoryScheduler struct {
	cron           *cron.Cron
	productService service.ProductService
}

func NewCategoryScheduler(productService service.ProductService) *CategoryScheduler {
	return &CategoryScheduler{
		cron:           cron.New(),
		productService: productService,
	}
}

// Start schedules the hourly refresh.
func (s *CategoryScheduler) Start() error {
	_, err := s.cron.AddFunc("0 * * * *", func() {
		logger.Info("Starting scheduled category cache refresh")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.productService.RefreshCategoryCache(ctx); err != nil {
			logger.Error("Failed to refresh category cache from scheduler", err)
			return
		}

		logger.Info("Category cache refreshed from scheduler")
	})

	if err != nil {
		logger.Error("Failed to add cron job for category cache refresh", err)
		return err
	}

	s.cron.Start()
	logger.Info("Category scheduler started (hourly)")

	return nil
}

// Stop halts the scheduler; running jobs finish on their own.
func (s *CategoryScheduler) Stop() {
	logger.Info("Stopping category scheduler...")
	s.cron.Stop()
	logger.Info("Category scheduler stopped")
}
