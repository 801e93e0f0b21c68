package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mj26111999/pern-saas-api-builder/internal/common"
	"github.com/Mj26111999/pern-saas-api-builder/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func capabilityRequest(t *testing.T, identity *models.ResolvedIdentity) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/keys", nil)
	if identity != nil {
		req = req.WithContext(common.WithIdentity(req.Context(), identity))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequirePermission_Granted(t *testing.T) {
	identity := testIdentity(models.PlanBasic, models.PermissionSet{models.CapabilityManageKeys: true})
	c, rec := capabilityRequest(t, identity)

	handler := NewCapabilityMiddleware().RequirePermission(models.CapabilityManageKeys)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	assert.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequirePermission_Denied(t *testing.T) {
	identity := testIdentity(models.PlanBasic, models.PermissionSet{models.CapabilityExecuteQueries: true})
	c, rec := capabilityRequest(t, identity)

	handler := NewCapabilityMiddleware().RequirePermission(models.CapabilityManageKeys)(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})

	assert.NoError(t, handler(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body common.ErrorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(common.CodePermissionDenied), body.Error.Code)
	assert.Equal(t, models.CapabilityManageKeys, body.Error.Details["required_permission"])
}

func TestRequirePermission_ExplicitlyRevoked(t *testing.T) {
	identity := testIdentity(models.PlanBasic, models.PermissionSet{models.CapabilityManageKeys: false})
	c, rec := capabilityRequest(t, identity)

	handler := NewCapabilityMiddleware().RequirePermission(models.CapabilityManageKeys)(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})

	assert.NoError(t, handler(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequirePermission_EnterpriseBypass(t *testing.T) {
	identity := testIdentity(models.PlanEnterprise, models.PermissionSet{})
	c, rec := capabilityRequest(t, identity)

	handler := NewCapabilityMiddleware().RequirePermission(models.CapabilityManageKeys)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	assert.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequirePermission_NoIdentity(t *testing.T) {
	c, rec := capabilityRequest(t, nil)

	handler := NewCapabilityMiddleware().RequirePermission(models.CapabilityManageKeys)(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})

	assert.NoError(t, handler(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequirePlan_Ordering(t *testing.T) {
	cases := []struct {
		plan    models.PlanTier
		minPlan models.PlanTier
		allowed bool
	}{
		{models.PlanBasic, models.PlanBasic, true},
		{models.PlanBasic, models.PlanPro, false},
		{models.PlanPro, models.PlanPro, true},
		{models.PlanPro, models.PlanEnterprise, false},
		{models.PlanEnterprise, models.PlanBasic, true},
		{models.PlanEnterprise, models.PlanEnterprise, true},
	}

	for _, tc := range cases {
		identity := testIdentity(tc.plan, nil)
		c, rec := capabilityRequest(t, identity)

		handler := NewCapabilityMiddleware().RequirePlan(tc.minPlan)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})

		assert.NoError(t, handler(c))
		if tc.allowed {
			assert.Equal(t, http.StatusOK, rec.Code, "%s >= %s", tc.plan, tc.minPlan)
		} else {
			assert.Equal(t, http.StatusForbidden, rec.Code, "%s < %s", tc.plan, tc.minPlan)
		}
	}
}

func TestRequirePlan_UpgradeDetails(t *testing.T) {
	identity := testIdentity(models.PlanBasic, nil)
	c, rec := capabilityRequest(t, identity)

	handler := NewCapabilityMiddleware().RequirePlan(models.PlanPro)(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})

	assert.NoError(t, handler(c))

	var body common.ErrorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(common.CodePlanUpgradeRequired), body.Error.Code)
	assert.Equal(t, "pro", body.Error.Details["required_plan"])
	assert.Equal(t, "basic", body.Error.Details["current_plan"])
}
