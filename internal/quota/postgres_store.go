package quota

import (
	"context"
	"time"

	"github.com/alexmentor/mentor-gateway/internal/models"
	"github.com/alexmentor/mentor-gateway/internal/repository"
)

// Durable ledger store over the request_logs table.
type PostgresStore struct {
	repo *repository.QuotaRepository
}

func NewPostgresStore(repo *repository.QuotaRepository) *PostgresStore {
	return &PostgresStore{repo: repo}
}

func (s *PostgresStore) CountSince(ctx context.Context, identity string, since time.Time) (int64, error) {
	return s.repo.CountSince(ctx, identity, since)
}

func (s *PostgresStore) Append(ctx context.Context, record Record) error {
	return s.repo.Append(ctx, &models.QuotaRecord{
		IPAddress: record.Identity,
		Action:    record.Action,
		CreatedAt: record.At,
	})
}
