package extractor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("extraction record not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrating extraction records: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Create(ctx context.Context, record *Record) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("storing extraction record: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Record, error) {
	var record Record
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading extraction record: %w", err)
	}
	return &record, nil
}

// CleanupExpired removes records past their retention window and returns
// how many were deleted.
func (r *Repository) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&Record{})
	if result.Error != nil {
		return 0, fmt.Errorf("cleaning up extraction records: %w", result.Error)
	}
	return result.RowsAffected, nil
}
