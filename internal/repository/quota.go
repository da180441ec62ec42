package repository

import (
	"context"
	"time"

	"github.com/alexmentor/mentor-gateway/internal/models"
	"github.com/alexmentor/mentor-gateway/internal/storage"
)

type QuotaRepository struct {
	db *storage.Postgres
}

func NewQuotaRepository(db *storage.Postgres) *QuotaRepository {
	return &QuotaRepository{db: db}
}

// Counts records for one client since the window start
func (r *QuotaRepository) CountSince(ctx context.Context, ipAddress string, since time.Time) (int64, error) {
	var count int64

	err := r.db.DB.WithContext(ctx).
		Model(&models.QuotaRecord{}).
		Where("ip_address = ? AND created_at >= ?", ipAddress, since).
		Count(&count).Error

	return count, err
}

// Inserts a new quota record
func (r *QuotaRepository) Append(ctx context.Context, record *models.QuotaRecord) error {
	return r.db.DB.WithContext(ctx).Create(record).Error
}
