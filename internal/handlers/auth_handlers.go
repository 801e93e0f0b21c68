package handlers

import (
	"net/http"

	"github.com/Mj26111999/pern-saas-api-builder/internal/common"
	"github.com/Mj26111999/pern-saas-api-builder/internal/models"
	"github.com/Mj26111999/pern-saas-api-builder/internal/repositories"
	"github.com/Mj26111999/pern-saas-api-builder/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AuthHandlers handles session token issuance and identity endpoints
type AuthHandlers struct {
	tokenSvc   services.TokenService
	tenantRepo repositories.TenantRepository
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(tokenSvc services.TokenService, tenantRepo repositories.TenantRepository) *AuthHandlers {
	return &AuthHandlers{
		tokenSvc:   tokenSvc,
		tenantRepo: tenantRepo,
	}
}

// IssueToken exchanges the caller's authenticated credential for a session
// token pair. The caller authenticates with an opaque key; the response
// token can be presented on later requests instead.
func (h *AuthHandlers) IssueToken(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := common.GetIdentityFromContext(ctx)
	if !ok {
		return common.SendAuthError(c, common.NewUnauthenticatedError("Authentication required"))
	}

	tokenResponse, err := h.tokenSvc.Generate(ctx, identity.Tenant)
	if err != nil {
		return common.SendServerError(c, "Failed to issue session token")
	}

	return c.JSON(http.StatusOK, tokenResponse)
}

// RefreshRequest represents the token refresh request payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	GrantType    string `json:"grant_type" validate:"required"`
}

// Refresh rotates a refresh token into a fresh session token pair.
func (h *AuthHandlers) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	if req.RefreshToken == "" {
		return common.SendValidationError(c, "refresh_token", "refresh_token is required")
	}
	if req.GrantType != "refresh_token" {
		return common.SendValidationError(c, "grant_type", "grant_type must be refresh_token")
	}

	claims, _, err := h.tokenSvc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return common.SendAuthError(c, common.NewInvalidTokenError("Invalid or expired refresh token"))
	}

	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return common.SendAuthError(c, common.NewInvalidTokenError("Invalid tenant in refresh token"))
	}

	tenant, err := h.tenantRepo.GetByID(ctx, tenantID)
	if err != nil || tenant == nil || !tenant.Active {
		return common.SendAuthError(c, common.NewInvalidCredentialError())
	}

	// Rotate: the presented refresh token is consumed before a new pair is
	// issued.
	refreshHint := "refresh_token"
	if err := h.tokenSvc.Revoke(ctx, req.RefreshToken, &refreshHint); err != nil {
		return common.SendServerError(c, "Failed to rotate refresh token")
	}

	tokenResponse, err := h.tokenSvc.Generate(ctx, tenant)
	if err != nil {
		return common.SendServerError(c, "Failed to issue session token")
	}

	return c.JSON(http.StatusOK, tokenResponse)
}

// RevokeRequest represents the token revocation request payload
type RevokeRequest struct {
	Token         string  `json:"token" validate:"required"`
	TokenTypeHint *string `json:"token_type_hint"` // "access_token" or "refresh_token"
}

// Revoke invalidates a session or refresh token ahead of its expiry.
func (h *AuthHandlers) Revoke(c echo.Context) error {
	ctx := c.Request().Context()

	if _, ok := common.GetIdentityFromContext(ctx); !ok {
		return common.SendAuthError(c, common.NewUnauthenticatedError("Authentication required"))
	}

	var req RevokeRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Token == "" {
		return common.SendValidationError(c, "token", "token is required")
	}

	if err := h.tokenSvc.Revoke(ctx, req.Token, req.TokenTypeHint); err != nil {
		return common.SendServerError(c, "Failed to revoke token")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Token revoked",
	})
}

// MeResponse describes the authenticated caller
type MeResponse struct {
	Tenant      models.TenantSnapshot `json:"tenant"`
	Credential  string                `json:"credential_kind"`
	Permissions []string              `json:"permissions"`
	RateLimit   int                   `json:"rate_limit"`
}

// Me returns the resolved identity behind the presented credential.
func (h *AuthHandlers) Me(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := common.GetIdentityFromContext(ctx)
	if !ok {
		return common.SendAuthError(c, common.NewUnauthenticatedError("Authentication required"))
	}

	permissions := make([]string, 0, len(identity.Permissions))
	for capability, granted := range identity.Permissions {
		if granted {
			permissions = append(permissions, capability)
		}
	}

	return c.JSON(http.StatusOK, MeResponse{
		Tenant:      identity.Tenant.Snapshot(),
		Credential:  string(identity.Kind),
		Permissions: permissions,
		RateLimit:   identity.RateLimit,
	})
}
