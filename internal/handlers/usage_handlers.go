package handlers

import (
	"net/http"

	"github.com/Mj26111999/pern-saas-api-builder/internal/common"
	"github.com/Mj26111999/pern-saas-api-builder/internal/services"

	"github.com/labstack/echo/v4"
)

// UsageHandlers exposes the caller's quota standing
type UsageHandlers struct {
	quotaSvc services.QuotaService
}

// NewUsageHandlers creates a new usage handlers instance
func NewUsageHandlers(quotaSvc services.QuotaService) *UsageHandlers {
	return &UsageHandlers{quotaSvc: quotaSvc}
}

// Get reports the tenant's request count for the current UTC day against
// its effective limit. Reading standing never consumes quota.
func (h *UsageHandlers) Get(c echo.Context) error {
	ctx := c.Request().Context()

	identity, ok := common.GetIdentityFromContext(ctx)
	if !ok {
		return common.SendAuthError(c, common.NewUnauthenticatedError("Authentication required"))
	}

	result, err := h.quotaSvc.Check(ctx, identity)
	if err != nil {
		return common.SendServerError(c, "Failed to read usage")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"tenant_id": identity.Tenant.ID,
		"count":     result.Count,
		"limit":     result.Limit,
		"remaining": max(int64(result.Limit)-result.Count, 0),
		"reset_at":  result.ResetAt,
	})
}
