package service

import (
	"context"
	"time"

	"github.com/golinkhq/golink/internal/app/cache"
	apprepository "github.com/golinkhq/golink/internal/app/repository"
	"go.uber.org/zap"
)

// FilterRefresher periodically rebuilds the bloom filter from the link
// repository. Bloom filters cannot drop individual keys, so deleted
// shortlinks keep reading as "might exist" until the next rebuild; the
// negative cache covers the window in between.
type FilterRefresher struct {
	logger   *zap.Logger
	repo     apprepository.LinkRepository
	filter   *cache.Filter
	interval time.Duration
	stopChan chan struct{}
}

// NewFilterRefresher creates a refresher that rebuilds filter every interval.
func NewFilterRefresher(logger *zap.Logger, repo apprepository.LinkRepository, filter *cache.Filter, interval time.Duration) *FilterRefresher {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &FilterRefresher{
		logger:   logger,
		repo:     repo,
		filter:   filter,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Warm loads all stored shortlink keys into the filter. Called once before
// the server starts accepting traffic.
func (r *FilterRefresher) Warm(ctx context.Context) error {
	shorts, err := r.repo.Shorts(ctx)
	if err != nil {
		return err
	}
	r.filter.Reset(shorts)
	r.logger.Info("bloom filter warmed", zap.Int("shortlinks", len(shorts)))
	return nil
}

// Start begins the periodic rebuilds.
func (r *FilterRefresher) Start() {
	go r.run()
}

// Stop stops the periodic rebuilds.
func (r *FilterRefresher) Stop() {
	close(r.stopChan)
}

func (r *FilterRefresher) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.rebuild()
		case <-r.stopChan:
			r.logger.Info("bloom filter refresher stopped")
			return
		}
	}
}

func (r *FilterRefresher) rebuild() {
	ctx := context.Background()

	shorts, err := r.repo.Shorts(ctx)
	if err != nil {
		r.logger.Error("failed to reload shortlinks for bloom filter", zap.Error(err))
		return
	}

	r.filter.Reset(shorts)
	r.logger.Debug("bloom filter rebuilt", zap.Int("shortlinks", len(shorts)))
}
