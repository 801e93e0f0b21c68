package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Mj26111999/pern-saas-api-builder/internal/models"
	"github.com/Mj26111999/pern-saas-api-builder/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/gommon/random"
)

const apiKeyPrefix = "ak_"

type CreateAPIKeyRequest struct {
	Name        string          `json:"name"`
	Permissions map[string]bool `json:"permissions"`
	RateLimit   *int            `json:"rate_limit"`
	ExpiresAt   *time.Time      `json:"expires_at"`
}

// APIKeyService manages secondary credentials. Capability names are
// validated here, at the boundary where keys are created, against the
// closed capability registry.
type APIKeyService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req *CreateAPIKeyRequest) (*models.APIKey, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.APIKey, error)
	Revoke(ctx context.Context, tenantID, id uuid.UUID) error
}

type apiKeyService struct {
	apiKeyRepo repositories.APIKeyRepository
}

func NewAPIKeyService(apiKeyRepo repositories.APIKeyRepository) APIKeyService {
	return &apiKeyService{apiKeyRepo: apiKeyRepo}
}

func (s *apiKeyService) Create(ctx context.Context, tenantID uuid.UUID, req *CreateAPIKeyRequest) (*models.APIKey, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("key name is required")
	}

	permissions := models.PermissionSet{}
	for name, granted := range req.Permissions {
		if !models.ValidCapability(name) {
			return nil, fmt.Errorf("unknown capability: %s", name)
		}
		permissions[name] = granted
	}

	if req.RateLimit != nil && *req.RateLimit <= 0 {
		return nil, fmt.Errorf("rate limit override must be positive")
	}
	if req.ExpiresAt != nil && req.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("expiry must be in the future")
	}

	key := &models.APIKey{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Name:        strings.TrimSpace(req.Name),
		Key:         apiKeyPrefix + random.String(40, random.Alphanumeric),
		Permissions: permissions,
		RateLimit:   req.RateLimit,
		ExpiresAt:   req.ExpiresAt,
	}

	if err := s.apiKeyRepo.Create(ctx, key); err != nil {
		return nil, err
	}
	return key, nil
}

func (s *apiKeyService) List(ctx context.Context, tenantID uuid.UUID) ([]*models.APIKey, error) {
	return s.apiKeyRepo.ListByTenant(ctx, tenantID)
}

func (s *apiKeyService) Revoke(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.apiKeyRepo.Delete(ctx, tenantID, id)
}
