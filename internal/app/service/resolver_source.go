package service

import (
	"context"
	"errors"
	"time"

	"github.com/golinkhq/golink/internal/app/cache"
	"github.com/golinkhq/golink/internal/app/repository"
	"github.com/golinkhq/golink/internal/infra/metrics"
	"go.uber.org/zap"
)

// ResolverSource is the lookup collaborator handed to the resolution engine.
// It answers "what long value is stored for this normalized shortlink" by
// walking bloom filter, redis and Postgres in that order. Disabled and
// expired links read as absent.
//
// The resolver's lookup contract has no error channel: infrastructure
// failures are logged and reported as absent, which the HTTP layer turns
// into a 404 rather than taking the whole redirect path down.
type ResolverSource struct {
	logger *zap.Logger
	repo   repository.LinkRepository
	cache  *cache.LinkCache
	filter *cache.Filter
}

// NewResolverSource builds a ResolverSource. Cache and filter may be nil;
// lookups then go straight to the repository.
func NewResolverSource(logger *zap.Logger, repo repository.LinkRepository, linkCache *cache.LinkCache, filter *cache.Filter) *ResolverSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResolverSource{
		logger: logger,
		repo:   repo,
		cache:  linkCache,
		filter: filter,
	}
}

// Lookup satisfies golink.ContextLookupFunc.
func (s *ResolverSource) Lookup(ctx context.Context, short string) (string, bool) {
	if s.filter != nil && !s.filter.MightContain(short) {
		metrics.LookupsTotal.WithLabelValues("bloom", "miss").Inc()
		return "", false
	}

	if s.cache != nil {
		entry, err := s.cache.Get(ctx, short)
		switch {
		case err != nil:
			// Fall through to the repository on cache trouble.
			metrics.LookupsTotal.WithLabelValues("redis", "error").Inc()
			s.logger.Warn("link cache read failed", zap.String("short", short), zap.Error(err))
		case entry != nil && entry.Negative:
			metrics.LookupsTotal.WithLabelValues("redis", "negative").Inc()
			return "", false
		case entry != nil:
			metrics.LookupsTotal.WithLabelValues("redis", "hit").Inc()
			return entry.LongValue, true
		default:
			metrics.LookupsTotal.WithLabelValues("redis", "miss").Inc()
		}
	}

	link, err := s.repo.GetByShort(ctx, short)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			metrics.LookupsTotal.WithLabelValues("postgres", "miss").Inc()
			if s.cache != nil {
				_ = s.cache.SetNotFound(ctx, short)
			}
			return "", false
		}
		metrics.LookupsTotal.WithLabelValues("postgres", "error").Inc()
		s.logger.Error("link lookup failed", zap.String("short", short), zap.Error(err))
		return "", false
	}

	if !link.Resolvable(time.Now()) {
		metrics.LookupsTotal.WithLabelValues("postgres", "negative").Inc()
		if s.cache != nil {
			_ = s.cache.SetNotFound(ctx, short)
		}
		return "", false
	}

	metrics.LookupsTotal.WithLabelValues("postgres", "hit").Inc()
	if s.cache != nil {
		if err := s.cache.Set(ctx, short, link.LongValue); err != nil {
			s.logger.Warn("link cache write failed", zap.String("short", short), zap.Error(err))
		}
	}
	return link.LongValue, true
}
