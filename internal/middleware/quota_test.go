package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Mj26111999/pern-saas-api-builder/internal/common"
	"github.com/Mj26111999/pern-saas-api-builder/internal/models"
	"github.com/Mj26111999/pern-saas-api-builder/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type stubQuotaService struct {
	result *services.QuotaResult
	err    error
}

func (s *stubQuotaService) Check(ctx context.Context, identity *models.ResolvedIdentity) (*services.QuotaResult, error) {
	return s.result, s.err
}

func quotaRequest(t *testing.T, identity *models.ResolvedIdentity) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if identity != nil {
		req = req.WithContext(common.WithIdentity(req.Context(), identity))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestEnforceQuota_Allowed(t *testing.T) {
	quotaSvc := &stubQuotaService{result: &services.QuotaResult{Allowed: true, Count: 3, Limit: 100}}
	c, rec := quotaRequest(t, testIdentity(models.PlanBasic, nil))

	handler := EnforceQuota(quotaSvc)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	assert.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEnforceQuota_Exceeded(t *testing.T) {
	resetAt := time.Now().UTC().Add(24 * time.Hour)
	quotaSvc := &stubQuotaService{result: &services.QuotaResult{Allowed: false, Count: 100, Limit: 100, ResetAt: resetAt}}
	c, rec := quotaRequest(t, testIdentity(models.PlanBasic, nil))

	handler := EnforceQuota(quotaSvc)(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})

	assert.NoError(t, handler(c))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body common.ErrorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(common.CodeQuotaExceeded), body.Error.Code)
	assert.Equal(t, "100", body.Error.Details["limit"])
	assert.NotEmpty(t, body.Error.Details["reset_at"])
}

func TestEnforceQuota_NoIdentity(t *testing.T) {
	quotaSvc := &stubQuotaService{result: &services.QuotaResult{Allowed: true}}
	c, rec := quotaRequest(t, nil)

	handler := EnforceQuota(quotaSvc)(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})

	assert.NoError(t, handler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
