package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey is a secondary credential belonging to exactly one tenant. It carries
// its own permission set and may override the tenant's daily rate limit.
type APIKey struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	TenantID    uuid.UUID     `json:"tenant_id" db:"tenant_id"`
	Name        string        `json:"name" db:"name"`
	Key         string        `json:"-" db:"key"`
	Permissions PermissionSet `json:"permissions" db:"permissions"`
	RateLimit   *int          `json:"rate_limit" db:"rate_limit"`
	ExpiresAt   *time.Time    `json:"expires_at" db:"expires_at"`
	LastUsedAt  *time.Time    `json:"last_used_at" db:"last_used_at"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}

// Expired reports whether the key's optional expiry has passed.
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && k.ExpiresAt.Before(now)
}
