package repositories

import (
	"context"

	"github.com/Mj26111999/pern-saas-api-builder/internal/models"

	"github.com/google/uuid"
)

type APIKeyRepository interface {
	Create(ctx context.Context, key *models.APIKey) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.APIKey, error)
	GetByKey(ctx context.Context, key string) (*models.APIKey, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.APIKey, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	TouchLastUsed(ctx context.Context, id uuid.UUID) error
}

type apiKeyRepo struct {
	db DB
}

func NewAPIKeyRepository(db DB) APIKeyRepository {
	return &apiKeyRepo{db: db}
}

const apiKeyColumns = `id, tenant_id, name, key, permissions, rate_limit, expires_at, last_used_at, created_at`

func scanAPIKey(row interface{ Scan(dest ...any) error }) (*models.APIKey, error) {
	key := &models.APIKey{}
	err := row.Scan(
		&key.ID, &key.TenantID, &key.Name, &key.Key, &key.Permissions,
		&key.RateLimit, &key.ExpiresAt, &key.LastUsedAt, &key.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return key, nil
}

func (r *apiKeyRepo) Create(ctx context.Context, key *models.APIKey) error {
	query := `
		INSERT INTO api_keys (id, tenant_id, name, key, permissions, rate_limit, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`
	_, err := r.db.Exec(ctx, query,
		key.ID, key.TenantID, key.Name, key.Key, key.Permissions, key.RateLimit, key.ExpiresAt,
	)
	return err
}

func (r *apiKeyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE id = $1`
	return scanAPIKey(r.db.QueryRow(ctx, query, id))
}

func (r *apiKeyRepo) GetByKey(ctx context.Context, key string) (*models.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE key = $1`
	return scanAPIKey(r.db.QueryRow(ctx, query, key))
}

func (r *apiKeyRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE tenant_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (r *apiKeyRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM api_keys WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *apiKeyRepo) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE api_keys SET last_used_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
