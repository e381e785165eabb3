package repository

import (
	"context"
	"errors"

	"github.com/golinkhq/golink/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrLinkNotFound signals that the requested shortlink does not exist.
	ErrLinkNotFound = errors.New("link not found")
	// ErrLinkExists signals that the shortlink key is already taken.
	ErrLinkExists = errors.New("link already exists")
)

// LinkRepository defines the data access contract for golinks.
type LinkRepository interface {
	Create(ctx context.Context, link *model.Link) error
	GetByShort(ctx context.Context, short string) (*model.Link, error)
	List(ctx context.Context, limit, offset int) ([]model.Link, error)
	Update(ctx context.Context, link *model.Link) error
	Delete(ctx context.Context, short string) error
	Shorts(ctx context.Context) ([]string, error)
}

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository returns a GORM-backed LinkRepository.
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *model.Link) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrLinkExists
		}
		return err
	}
	return nil
}

func (r *linkRepository) GetByShort(ctx context.Context, short string) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).Where("short = ?", short).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *linkRepository) List(ctx context.Context, limit, offset int) ([]model.Link, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var result []model.Link
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *linkRepository) Update(ctx context.Context, link *model.Link) error {
	result := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Where("short = ?", link.Short).
		Updates(map[string]interface{}{
			"long_value":  link.LongValue,
			"description": link.Description,
			"disabled":    link.Disabled,
			"expires_at":  link.ExpiresAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLinkNotFound
	}

	return r.db.WithContext(ctx).Where("short = ?", link.Short).First(link).Error
}

func (r *linkRepository) Delete(ctx context.Context, short string) error {
	result := r.db.WithContext(ctx).Where("short = ?", short).Delete(&model.Link{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// Shorts returns every stored shortlink key. Used to warm the bloom filter.
func (r *linkRepository) Shorts(ctx context.Context) ([]string, error) {
	var shorts []string
	if err := r.db.WithContext(ctx).
		Model(&model.Link{}).
		Pluck("short", &shorts).Error; err != nil {
		return nil, err
	}
	return shorts, nil
}
