package repositories

import (
	"context"
	"time"

	"github.com/Mj26111999/pern-saas-api-builder/internal/models"
)

type ConnectionRepository interface {
	Upsert(ctx context.Context, conn *models.Connection) error
	GetByConnectionID(ctx context.Context, connectionID string) (*models.Connection, error)
	TouchHeartbeat(ctx context.Context, connectionID string) error
	Deactivate(ctx context.Context, connectionID string) error
	DeleteStale(ctx context.Context, threshold time.Time) (int64, error)
}

type connectionRepo struct {
	db DB
}

func NewConnectionRepository(db DB) ConnectionRepository {
	return &connectionRepo{db: db}
}

// Upsert inserts a connection row or, on connection_id conflict, refreshes
// the heartbeat, rebinds the tenant and reactivates the row. Re-joins with
// the same connection id therefore never produce duplicates.
func (r *connectionRepo) Upsert(ctx context.Context, conn *models.Connection) error {
	query := `
		INSERT INTO connections (id, connection_id, channel_id, tenant_id, metadata, connected_at, last_heartbeat_at, active)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW(), true)
		ON CONFLICT (connection_id) DO UPDATE
		SET tenant_id = EXCLUDED.tenant_id,
		    channel_id = EXCLUDED.channel_id,
		    metadata = EXCLUDED.metadata,
		    last_heartbeat_at = NOW(),
		    active = true
	`
	_, err := r.db.Exec(ctx, query,
		conn.ID, conn.ConnectionID, conn.ChannelID, conn.TenantID, conn.Metadata,
	)
	return err
}

func (r *connectionRepo) GetByConnectionID(ctx context.Context, connectionID string) (*models.Connection, error) {
	conn := &models.Connection{}
	query := `
		SELECT id, connection_id, channel_id, tenant_id, metadata, connected_at, last_heartbeat_at, active
		FROM connections
		WHERE connection_id = $1
	`
	err := r.db.QueryRow(ctx, query, connectionID).Scan(
		&conn.ID, &conn.ConnectionID, &conn.ChannelID, &conn.TenantID, &conn.Metadata,
		&conn.ConnectedAt, &conn.LastHeartbeatAt, &conn.Active,
	)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (r *connectionRepo) TouchHeartbeat(ctx context.Context, connectionID string) error {
	query := `UPDATE connections SET last_heartbeat_at = NOW() WHERE connection_id = $1`
	_, err := r.db.Exec(ctx, query, connectionID)
	return err
}

// Deactivate soft-deletes a connection. Updating zero rows is not an error,
// so running it twice for the same connection id is safe.
func (r *connectionRepo) Deactivate(ctx context.Context, connectionID string) error {
	query := `UPDATE connections SET active = false WHERE connection_id = $1`
	_, err := r.db.Exec(ctx, query, connectionID)
	return err
}

func (r *connectionRepo) DeleteStale(ctx context.Context, threshold time.Time) (int64, error) {
	query := `DELETE FROM connections WHERE last_heartbeat_at < $1 OR active = false`
	tag, err := r.db.Exec(ctx, query, threshold)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
