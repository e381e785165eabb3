package service

import (
	"context"
	"testing"
	"time"

	"github.com/golinkhq/golink/internal/app/model"
	"github.com/golinkhq/golink/internal/app/repository"
)

func TestResolverSource_Lookup(t *testing.T) {
	expired := time.Now().Add(-time.Hour)
	repo := &mockLinkRepository{
		getFn: func(ctx context.Context, short string) (*model.Link, error) {
			switch short {
			case "test":
				return &model.Link{Short: short, LongValue: "http://example.com/"}, nil
			case "off":
				return &model.Link{Short: short, LongValue: "http://example.com/", Disabled: true}, nil
			case "old":
				return &model.Link{Short: short, LongValue: "http://example.com/", ExpiresAt: &expired}, nil
			}
			return nil, repository.ErrLinkNotFound
		},
	}

	source := NewResolverSource(nil, repo, nil, nil)

	longValue, ok := source.Lookup(context.Background(), "test")
	if !ok || longValue != "http://example.com/" {
		t.Fatalf("expected stored long value, got %q ok=%v", longValue, ok)
	}

	if _, ok := source.Lookup(context.Background(), "missing"); ok {
		t.Fatal("expected missing shortlink to report absent")
	}
	if _, ok := source.Lookup(context.Background(), "off"); ok {
		t.Fatal("expected disabled link to report absent")
	}
	if _, ok := source.Lookup(context.Background(), "old"); ok {
		t.Fatal("expected expired link to report absent")
	}
}

func TestResolverSource_Lookup_RepositoryErrorReadsAsAbsent(t *testing.T) {
	repo := &mockLinkRepository{
		getFn: func(ctx context.Context, short string) (*model.Link, error) {
			return nil, context.DeadlineExceeded
		},
	}

	source := NewResolverSource(nil, repo, nil, nil)
	if _, ok := source.Lookup(context.Background(), "test"); ok {
		t.Fatal("expected infrastructure failure to read as absent")
	}
}
