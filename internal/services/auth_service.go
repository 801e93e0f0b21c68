package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Mj26111999/pern-saas-api-builder/internal/common"
	"github.com/Mj26111999/pern-saas-api-builder/internal/models"
	"github.com/Mj26111999/pern-saas-api-builder/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AuthService turns a raw inbound credential into a resolved tenant identity
// with its effective permission set and rate limit.
type AuthService interface {
	Resolve(ctx context.Context, credential string) (*models.ResolvedIdentity, error)
	ResolveForTenant(ctx context.Context, tenantID uuid.UUID, credential string) (*models.ResolvedIdentity, error)
}

type authService struct {
	tenantRepo repositories.TenantRepository
	apiKeyRepo repositories.APIKeyRepository
	tokenSvc   TokenService
}

func NewAuthService(tenantRepo repositories.TenantRepository, apiKeyRepo repositories.APIKeyRepository, tokenSvc TokenService) AuthService {
	return &authService{
		tenantRepo: tenantRepo,
		apiKeyRepo: apiKeyRepo,
		tokenSvc:   tokenSvc,
	}
}

// Resolve discriminates the two credential shapes by the JWT encoding prefix:
// anything starting with a base64url JOSE header is treated as a signed
// session token, everything else as an opaque key.
func (s *authService) Resolve(ctx context.Context, credential string) (*models.ResolvedIdentity, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, common.NewUnauthenticatedError("No credential supplied: expected X-API-Key header, Authorization bearer token, or api_key query parameter")
	}

	if strings.HasPrefix(credential, "eyJ") {
		return s.resolveSessionToken(ctx, credential)
	}
	return s.resolveOpaqueKey(ctx, credential)
}

// ResolveForTenant is the channel-native join path: the supplied tenant id
// and credential must agree on the same active tenant. Any mismatch is an
// InvalidCredential, never a hint about which part was wrong.
func (s *authService) ResolveForTenant(ctx context.Context, tenantID uuid.UUID, credential string) (*models.ResolvedIdentity, error) {
	identity, err := s.Resolve(ctx, credential)
	if err != nil {
		return nil, err
	}
	if identity.Tenant.ID != tenantID {
		return nil, common.NewInvalidCredentialError()
	}
	return identity, nil
}

func (s *authService) resolveSessionToken(ctx context.Context, credential string) (*models.ResolvedIdentity, error) {
	claims, err := s.tokenSvc.Validate(ctx, credential)
	if err != nil {
		return nil, common.NewInvalidTokenError("Token is invalid or expired")
	}

	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return nil, common.NewInvalidTokenError("Token carries no valid tenant")
	}

	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewInvalidTokenError("Token does not resolve to an active tenant")
		}
		return nil, common.NewStoreUnavailableError(err)
	}
	if !tenant.Active {
		return nil, common.NewInvalidTokenError("Token does not resolve to an active tenant")
	}

	// The audience binds the token to the tenant's subdomain.
	if !audienceMatches(claims.Audience, tenant.Subdomain) {
		return nil, common.NewInvalidTokenError("Token audience does not match tenant")
	}

	return &models.ResolvedIdentity{
		Tenant:      tenant,
		Permissions: models.PermissionSet{},
		RateLimit:   tenant.DailyRequestQuota,
		Kind:        models.CredentialSessionToken,
	}, nil
}

func (s *authService) resolveOpaqueKey(ctx context.Context, credential string) (*models.ResolvedIdentity, error) {
	tenant, err := s.tenantRepo.GetByAPIKey(ctx, credential)
	if err == nil {
		if !tenant.Active {
			return nil, common.NewInvalidCredentialError()
		}
		return &models.ResolvedIdentity{
			Tenant:      tenant,
			Permissions: models.PermissionSet{},
			RateLimit:   tenant.DailyRequestQuota,
			Kind:        models.CredentialPrimaryKey,
		}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewStoreUnavailableError(err)
	}

	key, err := s.apiKeyRepo.GetByKey(ctx, credential)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewInvalidCredentialError()
		}
		return nil, common.NewStoreUnavailableError(err)
	}
	if key.Expired(time.Now()) {
		return nil, common.NewCredentialExpiredError()
	}

	tenant, err = s.tenantRepo.GetByID(ctx, key.TenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewInvalidCredentialError()
		}
		return nil, common.NewStoreUnavailableError(err)
	}
	if !tenant.Active {
		return nil, common.NewInvalidCredentialError()
	}

	rateLimit := tenant.DailyRequestQuota
	if key.RateLimit != nil {
		rateLimit = *key.RateLimit
	}
	permissions := key.Permissions
	if permissions == nil {
		permissions = models.PermissionSet{}
	}

	// Bookkeeping only: a failed last-used update must not fail the request.
	go s.touchLastUsed(key.ID)

	return &models.ResolvedIdentity{
		Tenant:      tenant,
		Permissions: permissions,
		RateLimit:   rateLimit,
		Kind:        models.CredentialSecondaryKey,
	}, nil
}

func (s *authService) touchLastUsed(keyID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.apiKeyRepo.TouchLastUsed(ctx, keyID); err != nil {
		log.Printf("Failed to update last_used_at for api key %s: %v", keyID.String(), err)
	}
}

func audienceMatches(audience []string, subdomain string) bool {
	for _, aud := range audience {
		if aud == subdomain {
			return true
		}
	}
	return false
}
