package models

import (
	"time"

	"github.com/google/uuid"
)

type Tenant struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Subdomain         string    `json:"subdomain" db:"subdomain"`
	APIKey            string    `json:"-" db:"api_key"`
	Plan              PlanTier  `json:"plan" db:"plan"`
	EndpointQuota     int       `json:"endpoint_quota" db:"endpoint_quota"`
	DailyRequestQuota int       `json:"daily_request_quota" db:"daily_request_quota"`
	Active            bool      `json:"active" db:"active"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// TenantSnapshot is the subset of tenant fields safe to send to clients,
// e.g. in the realtime joined acknowledgement.
type TenantSnapshot struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Subdomain string    `json:"subdomain"`
	Plan      PlanTier  `json:"plan"`
}

func (t *Tenant) Snapshot() TenantSnapshot {
	return TenantSnapshot{
		ID:        t.ID,
		Name:      t.Name,
		Subdomain: t.Subdomain,
		Plan:      t.Plan,
	}
}
