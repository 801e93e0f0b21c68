package middleware

import (
	"strings"

	"github.com/Mj26111999/pern-saas-api-builder/internal/common"
	"github.com/Mj26111999/pern-saas-api-builder/internal/services"

	"github.com/labstack/echo/v4"
)

const (
	apiKeyHeader  = "X-API-Key"
	bearerPrefix  = "Bearer "
	apiKeyQuery   = "api_key"
)

// ExtractCredential pulls the raw credential from the request. Priority
// order: dedicated key header, bearer authorization header, query parameter.
// First non-empty wins.
func ExtractCredential(c echo.Context) string {
	if key := c.Request().Header.Get(apiKeyHeader); key != "" {
		return key
	}
	if auth := c.Request().Header.Get("Authorization"); auth != "" {
		if token := strings.TrimPrefix(auth, bearerPrefix); token != auth {
			return token
		}
	}
	return c.QueryParam(apiKeyQuery)
}

// Authenticate resolves the inbound credential and attaches the resolved
// identity and a truncated credential fingerprint to the request context.
func Authenticate(authSvc services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			credential := ExtractCredential(c)

			identity, err := authSvc.Resolve(c.Request().Context(), credential)
			if err != nil {
				return common.SendAuthError(c, err)
			}

			ctx := common.WithIdentity(c.Request().Context(), identity)
			ctx = common.WithFingerprint(ctx, common.FingerprintCredential(credential))
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
