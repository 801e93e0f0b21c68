package middleware

import (
	"time"

	"github.com/Mj26111999/pern-saas-api-builder/internal/common"
	"github.com/Mj26111999/pern-saas-api-builder/internal/models"
	"github.com/Mj26111999/pern-saas-api-builder/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RecordUsage writes the two-phase usage record for every admitted request:
// the admission fact before the handler runs, the status/duration/size
// backfill after it returns. Both writes go through the recorder queue and
// never fail the request.
func RecordUsage(recorder *services.UsageRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			identity, ok := common.GetIdentityFromContext(ctx)
			if !ok {
				// Not an admitted request; nothing to record.
				return next(c)
			}

			fingerprint, _ := common.GetFingerprintFromContext(ctx)
			recordID := uuid.New()
			start := time.Now()

			recorder.Record(&models.UsageRecord{
				ID:             recordID,
				TenantID:       identity.Tenant.ID,
				Method:         c.Request().Method,
				Path:           c.Path(),
				ClientIP:       c.RealIP(),
				UserAgent:      c.Request().UserAgent(),
				KeyFingerprint: fingerprint,
			})

			err := next(c)

			var errText *string
			if err != nil {
				msg := err.Error()
				errText = &msg
			}
			recorder.Complete(
				recordID,
				c.Response().Status,
				time.Since(start).Milliseconds(),
				c.Response().Size,
				errText,
			)

			return err
		}
	}
}
