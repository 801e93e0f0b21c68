package models

import (
	"time"

	"github.com/google/uuid"
)

// Connection is the persisted registry entry for one live realtime channel.
// TenantID is nil until the client has joined. Rows are soft-deleted
// (active=false) on disconnect and hard-deleted by the periodic sweep.
type Connection struct {
	ID              uuid.UUID              `json:"id" db:"id"`
	ConnectionID    string                 `json:"connection_id" db:"connection_id"`
	ChannelID       string                 `json:"channel_id" db:"channel_id"`
	TenantID        *uuid.UUID             `json:"tenant_id" db:"tenant_id"`
	Metadata        map[string]interface{} `json:"metadata" db:"metadata"`
	ConnectedAt     time.Time              `json:"connected_at" db:"connected_at"`
	LastHeartbeatAt time.Time              `json:"last_heartbeat_at" db:"last_heartbeat_at"`
	Active          bool                   `json:"active" db:"active"`
}
