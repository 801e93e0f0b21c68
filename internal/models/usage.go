package models

import (
	"time"

	"github.com/google/uuid"
)

// UsageRecord is an append-only fact describing one admitted request.
// Status, duration and size are filled in by a second write once the
// response has completed; everything else is immutable.
type UsageRecord struct {
	ID             uuid.UUID `json:"id" db:"id"`
	TenantID       uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Method         string    `json:"method" db:"method"`
	Path           string    `json:"path" db:"path"`
	StatusCode     *int      `json:"status_code" db:"status_code"`
	DurationMs     *int64    `json:"duration_ms" db:"duration_ms"`
	ResponseBytes  *int64    `json:"response_bytes" db:"response_bytes"`
	ClientIP       string    `json:"client_ip" db:"client_ip"`
	UserAgent      string    `json:"user_agent" db:"user_agent"`
	KeyFingerprint string    `json:"key_fingerprint" db:"key_fingerprint"`
	ErrorText      *string   `json:"error_text" db:"error_text"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
