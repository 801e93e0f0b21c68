package middleware

import (
	"github.com/Mj26111999/pern-saas-api-builder/internal/common"
	"github.com/Mj26111999/pern-saas-api-builder/internal/services"

	"github.com/labstack/echo/v4"
)

// EnforceQuota rejects requests once the tenant's daily request count has
// reached its effective rate limit. Rejected requests are not recorded, so
// over-quota attempts do not themselves consume quota.
func EnforceQuota(quotaSvc services.QuotaService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := common.GetIdentityFromContext(c.Request().Context())
			if !ok {
				return common.SendAuthError(c, common.NewUnauthenticatedError("Authentication required"))
			}

			result, err := quotaSvc.Check(c.Request().Context(), identity)
			if err != nil {
				return common.SendAuthError(c, err)
			}
			if !result.Allowed {
				return common.SendAuthError(c, common.NewQuotaExceededError(result.Limit, result.ResetAt))
			}

			return next(c)
		}
	}
}
