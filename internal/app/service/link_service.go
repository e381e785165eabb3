package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golinkhq/golink/golink"
	"github.com/golinkhq/golink/internal/app/cache"
	"github.com/golinkhq/golink/internal/app/model"
	"github.com/golinkhq/golink/internal/app/repository"
)

var (
	// ErrInvalidShortlink signals that the requested shortlink normalizes to
	// the empty string and can never be resolved.
	ErrInvalidShortlink = errors.New("shortlink normalizes to empty string")
	// ErrEmptyLongValue signals a create/update without a destination.
	ErrEmptyLongValue = errors.New("long value is required")
)

// LinkService defines behaviour-level operations on golinks. Every shortlink
// passing through here is normalized with the same rules the resolver
// applies, so stored keys always match resolution-time lookups.
type LinkService interface {
	CreateLink(ctx context.Context, input CreateLinkInput) (*model.Link, error)
	GetLink(ctx context.Context, short string) (*model.Link, error)
	ListLinks(ctx context.Context, limit, offset int) ([]model.Link, error)
	UpdateLink(ctx context.Context, short string, input UpdateLinkInput) (*model.Link, error)
	DeleteLink(ctx context.Context, short string) error
}

type linkService struct {
	repo   repository.LinkRepository
	cache  *cache.LinkCache
	filter *cache.Filter
}

// NewLinkService returns a service implementation backed by the given
// repository. Cache and filter may be nil; writes then skip invalidation.
func NewLinkService(repo repository.LinkRepository, linkCache *cache.LinkCache, filter *cache.Filter) LinkService {
	return &linkService{repo: repo, cache: linkCache, filter: filter}
}

// CreateLinkInput captures data required to create a golink.
type CreateLinkInput struct {
	Short       string
	LongValue   string
	Description string
	Disabled    bool
	ExpiresAt   *time.Time
}

// UpdateLinkInput captures fields that can be changed on an existing golink.
type UpdateLinkInput struct {
	LongValue   *string
	Description *string
	Disabled    *bool
	ExpiresAt   *time.Time
}

func (s *linkService) CreateLink(ctx context.Context, input CreateLinkInput) (*model.Link, error) {
	short := golink.NormalizeShortlink(input.Short)
	if short == "" {
		return nil, ErrInvalidShortlink
	}
	if input.LongValue == "" {
		return nil, ErrEmptyLongValue
	}
	// Reject malformed templates at write time; the resolver would only
	// surface them as internal errors to end users.
	if err := golink.CheckTemplate(input.LongValue); err != nil {
		return nil, fmt.Errorf("check long value: %w", err)
	}

	link := &model.Link{
		Short:       short,
		LongValue:   input.LongValue,
		Description: input.Description,
		Disabled:    input.Disabled,
		ExpiresAt:   input.ExpiresAt,
	}

	if err := s.repo.Create(ctx, link); err != nil {
		return nil, fmt.Errorf("create link: %w", err)
	}

	if s.filter != nil {
		s.filter.Add(short)
	}
	s.invalidate(ctx, short)
	return link, nil
}

func (s *linkService) GetLink(ctx context.Context, short string) (*model.Link, error) {
	key := golink.NormalizeShortlink(short)
	if key == "" {
		return nil, ErrInvalidShortlink
	}

	link, err := s.repo.GetByShort(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}
	return link, nil
}

func (s *linkService) ListLinks(ctx context.Context, limit, offset int) ([]model.Link, error) {
	links, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

func (s *linkService) UpdateLink(ctx context.Context, short string, input UpdateLinkInput) (*model.Link, error) {
	key := golink.NormalizeShortlink(short)
	if key == "" {
		return nil, ErrInvalidShortlink
	}

	link, err := s.repo.GetByShort(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load link: %w", err)
	}

	if input.LongValue != nil {
		if *input.LongValue == "" {
			return nil, ErrEmptyLongValue
		}
		if err := golink.CheckTemplate(*input.LongValue); err != nil {
			return nil, fmt.Errorf("check long value: %w", err)
		}
		link.LongValue = *input.LongValue
	}
	if input.Description != nil {
		link.Description = *input.Description
	}
	if input.Disabled != nil {
		link.Disabled = *input.Disabled
	}
	if input.ExpiresAt != nil {
		link.ExpiresAt = input.ExpiresAt
	}

	if err := s.repo.Update(ctx, link); err != nil {
		return nil, fmt.Errorf("update link: %w", err)
	}

	s.invalidate(ctx, key)
	return link, nil
}

func (s *linkService) DeleteLink(ctx context.Context, short string) error {
	key := golink.NormalizeShortlink(short)
	if key == "" {
		return ErrInvalidShortlink
	}

	if err := s.repo.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete link: %w", err)
	}

	// The bloom filter cannot forget the key; the periodic refresher will
	// rebuild it. Dropping the cache entry is enough for correctness.
	s.invalidate(ctx, key)
	return nil
}

func (s *linkService) invalidate(ctx context.Context, short string) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, short)
	}
}
