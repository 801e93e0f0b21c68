package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// VersionMiddleware resolves and advertises the API version.
type VersionMiddleware struct {
	supportedVersions map[string]bool
	defaultVersion    string
}

func NewVersionMiddleware() *VersionMiddleware {
	return &VersionMiddleware{
		supportedVersions: map[string]bool{"v1": true},
		defaultVersion:    "v1",
	}
}

// VersionHeader adds version information to response headers
func (vm *VersionMiddleware) VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("X-API-Version", version)
			return next(c)
		}
	}
}

// APIVersionResolver rejects requests for unsupported API versions.
func (vm *VersionMiddleware) APIVersionResolver() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if strings.HasPrefix(path, "/v") {
				version := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 2)[0]
				if !vm.supportedVersions[version] {
					return c.JSON(http.StatusNotFound, map[string]string{
						"error": "Unsupported API version",
					})
				}
				c.Set("api_version", version)
			} else {
				c.Set("api_version", vm.defaultVersion)
			}
			return next(c)
		}
	}
}
