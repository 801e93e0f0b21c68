package handlers

import (
	"net/http"

	"github.com/Mj26111999/pern-saas-api-builder/internal/common"
	"github.com/Mj26111999/pern-saas-api-builder/internal/models"
	"github.com/Mj26111999/pern-saas-api-builder/internal/services"

	"github.com/labstack/echo/v4"
)

// KeyHandlers handles secondary credential management endpoints
type KeyHandlers struct {
	apiKeySvc services.APIKeyService
}

// NewKeyHandlers creates a new key handlers instance
func NewKeyHandlers(apiKeySvc services.APIKeyService) *KeyHandlers {
	return &KeyHandlers{apiKeySvc: apiKeySvc}
}

// CreateKeyResponse carries the plaintext key exactly once, at creation.
type CreateKeyResponse struct {
	*models.APIKey
	Key string `json:"key"`
}

// Create mints a scoped secondary key for the caller's tenant.
func (h *KeyHandlers) Create(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := common.GetIdentityFromContext(ctx)
	if !ok {
		return common.SendAuthError(c, common.NewUnauthenticatedError("Authentication required"))
	}

	var req services.CreateAPIKeyRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	key, err := h.apiKeySvc.Create(ctx, identity.Tenant.ID, &req)
	if err != nil {
		if authErr, ok := common.AsAuthError(err); ok {
			return common.SendAuthError(c, authErr)
		}
		return common.SendValidationError(c, "key", err.Error())
	}

	return c.JSON(http.StatusCreated, CreateKeyResponse{APIKey: key, Key: key.Key})
}

// List returns the tenant's secondary keys without their secrets.
func (h *KeyHandlers) List(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := common.GetIdentityFromContext(ctx)
	if !ok {
		return common.SendAuthError(c, common.NewUnauthenticatedError("Authentication required"))
	}

	keys, err := h.apiKeySvc.List(ctx, identity.Tenant.ID)
	if err != nil {
		return common.SendServerError(c, "Failed to list keys")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"keys": keys,
	})
}

// Delete revokes one of the tenant's secondary keys.
func (h *KeyHandlers) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := common.GetIdentityFromContext(ctx)
	if !ok {
		return common.SendAuthError(c, common.NewUnauthenticatedError("Authentication required"))
	}

	keyID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", "Invalid key id")
	}

	if err := h.apiKeySvc.Revoke(ctx, identity.Tenant.ID, keyID); err != nil {
		return common.SendNotFoundError(c, "API key")
	}

	return c.NoContent(http.StatusNoContent)
}
