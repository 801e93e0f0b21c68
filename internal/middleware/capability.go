package middleware

import (
	"github.com/Mj26111999/pern-saas-api-builder/internal/common"
	"github.com/Mj26111999/pern-saas-api-builder/internal/models"

	"github.com/labstack/echo/v4"
)

// CapabilityMiddleware gates routes on named permissions and plan tiers.
// Both checks are side-effect-free and require an already-resolved identity.
type CapabilityMiddleware struct{}

func NewCapabilityMiddleware() *CapabilityMiddleware {
	return &CapabilityMiddleware{}
}

// RequirePermission passes when the identity's permission set grants the
// capability or the tenant is on the enterprise plan, which bypasses all
// named-permission checks.
func (m *CapabilityMiddleware) RequirePermission(capability string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := common.GetIdentityFromContext(c.Request().Context())
			if !ok {
				return common.SendAuthError(c, common.NewUnauthenticatedError("Authentication required"))
			}
			if !identity.HasPermission(capability) {
				return common.SendAuthError(c, common.NewPermissionDeniedError(capability))
			}
			return next(c)
		}
	}
}

// RequirePlan passes when the tenant's plan tier is at or above minPlan
// under the order basic < pro < enterprise.
func (m *CapabilityMiddleware) RequirePlan(minPlan models.PlanTier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := common.GetIdentityFromContext(c.Request().Context())
			if !ok {
				return common.SendAuthError(c, common.NewUnauthenticatedError("Authentication required"))
			}
			if !identity.Tenant.Plan.AtLeast(minPlan) {
				return common.SendAuthError(c, common.NewPlanUpgradeRequiredError(minPlan, identity.Tenant.Plan))
			}
			return next(c)
		}
	}
}
