package common

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mj26111999/pern-saas-api-builder/internal/models"

	"github.com/google/uuid"
)

type contextKey string

const (
	IdentityKey    contextKey = "resolved_identity"
	FingerprintKey contextKey = "credential_fingerprint"
)

// WithIdentity attaches a resolved identity to the request context.
func WithIdentity(ctx context.Context, identity *models.ResolvedIdentity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// GetIdentityFromContext extracts the resolved identity from the request context.
func GetIdentityFromContext(ctx context.Context) (*models.ResolvedIdentity, bool) {
	identity, ok := ctx.Value(IdentityKey).(*models.ResolvedIdentity)
	return identity, ok
}

// WithFingerprint attaches the truncated credential fingerprint to the context.
func WithFingerprint(ctx context.Context, fingerprint string) context.Context {
	return context.WithValue(ctx, FingerprintKey, fingerprint)
}

// GetFingerprintFromContext extracts the credential fingerprint from the context.
func GetFingerprintFromContext(ctx context.Context) (string, bool) {
	fp, ok := ctx.Value(FingerprintKey).(string)
	return fp, ok
}

// FingerprintCredential truncates a raw credential for audit logging. Enough
// to correlate records to a key, never enough to reconstruct it.
func FingerprintCredential(raw string) string {
	if len(raw) <= 12 {
		return raw
	}
	return raw[:12] + "..."
}

// ValidateUUID validates UUID format
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	if strings.TrimSpace(idStr) == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}

	id, err := uuid.Parse(strings.TrimSpace(idStr))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid UUID: %v", fieldName, err)
	}

	return id, nil
}

// ValidateRequiredString validates required string fields
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidatePaginationParams validates pagination parameters
func ValidatePaginationParams(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = 50 // Default
	}
	if limit > 1000 {
		limit = 1000 // Maximum
	}

	if offset < 0 {
		offset = 0
	}
	if offset > 1000000 {
		return 0, 0, fmt.Errorf("offset cannot exceed 1,000,000")
	}

	return limit, offset, nil
}

// SafeString safely handles string pointer operations
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
