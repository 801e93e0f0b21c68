package repositories

import (
	"context"
	"time"

	"github.com/Mj26111999/pern-saas-api-builder/internal/models"

	"github.com/google/uuid"
)

type UsageRepository interface {
	Insert(ctx context.Context, record *models.UsageRecord) error
	UpdateResult(ctx context.Context, id uuid.UUID, statusCode int, durationMs, responseBytes int64, errorText *string) error
	CountSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int64, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type usageRepo struct {
	db DB
}

func NewUsageRepository(db DB) UsageRepository {
	return &usageRepo{db: db}
}

func (r *usageRepo) Insert(ctx context.Context, record *models.UsageRecord) error {
	query := `
		INSERT INTO usage_records (id, tenant_id, method, path, client_ip, user_agent, key_fingerprint, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.db.Exec(ctx, query,
		record.ID, record.TenantID, record.Method, record.Path,
		record.ClientIP, record.UserAgent, record.KeyFingerprint,
	)
	return err
}

func (r *usageRepo) UpdateResult(ctx context.Context, id uuid.UUID, statusCode int, durationMs, responseBytes int64, errorText *string) error {
	query := `
		UPDATE usage_records
		SET status_code = $1, duration_ms = $2, response_bytes = $3, error_text = $4
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, statusCode, durationMs, responseBytes, errorText, id)
	return err
}

func (r *usageRepo) CountSince(ctx context.Context, tenantID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM usage_records WHERE tenant_id = $1 AND created_at >= $2`
	err := r.db.QueryRow(ctx, query, tenantID, since).Scan(&count)
	return count, err
}

func (r *usageRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM usage_records WHERE created_at < $1`
	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
