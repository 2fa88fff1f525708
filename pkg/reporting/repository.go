package reporting

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrReportNotFound = errors.New("report not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&ReportRecord{}); err != nil {
		return nil, fmt.Errorf("migrating report records: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Create(ctx context.Context, record *ReportRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("storing report record: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*ReportRecord, error) {
	var record ReportRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading report record: %w", err)
	}
	return &record, nil
}
