package repository

import (
	"context"
	"errors"
	"time"

	"github.com/golinkhq/golink/internal/app/model"
	"gorm.io/gorm"
)

// ClickEventRepository defines the data access contract for click events.
type ClickEventRepository interface {
	Create(ctx context.Context, event *model.ClickEvent) error
	CountByShortlink(ctx context.Context, shortlink string) (int64, error)
	LastClick(ctx context.Context, shortlink string) (*time.Time, error)
}

type clickEventRepository struct {
	db *gorm.DB
}

// NewClickEventRepository returns a GORM-backed ClickEventRepository.
func NewClickEventRepository(db *gorm.DB) ClickEventRepository {
	return &clickEventRepository{db: db}
}

func (r *clickEventRepository) Create(ctx context.Context, event *model.ClickEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *clickEventRepository) CountByShortlink(ctx context.Context, shortlink string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ClickEvent{}).
		Where("shortlink = ?", shortlink).
		Count(&count).Error
	return count, err
}

// LastClick returns the timestamp of the most recent click, or nil when the
// shortlink has never been used.
func (r *clickEventRepository) LastClick(ctx context.Context, shortlink string) (*time.Time, error) {
	var event model.ClickEvent
	err := r.db.WithContext(ctx).
		Where("shortlink = ?", shortlink).
		Order("timestamp DESC").
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event.Timestamp, nil
}
