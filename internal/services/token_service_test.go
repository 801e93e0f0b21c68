package services

import (
	"context"
	"testing"

	"github.com/Mj26111999/pern-saas-api-builder/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type TokenServiceTestSuite struct {
	suite.Suite
	cacheSvc *MockCacheService
	service  TokenService
	tenant   *models.Tenant
	ctx      context.Context
}

func (suite *TokenServiceTestSuite) SetupTest() {
	suite.cacheSvc = NewMockCacheService()
	suite.service = NewTokenService(suite.cacheSvc, "test-secret", 3600, 86400)
	suite.tenant = &models.Tenant{
		ID:        uuid.New(),
		Name:      "Acme",
		Subdomain: "acme",
		Plan:      models.PlanBasic,
		Active:    true,
	}
	suite.ctx = context.Background()
}

func (suite *TokenServiceTestSuite) TestGenerateAndValidate() {
	tokenResponse, err := suite.service.Generate(suite.ctx, suite.tenant)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Bearer", tokenResponse.TokenType)
	assert.Equal(suite.T(), 3600, tokenResponse.ExpiresIn)
	assert.NotEmpty(suite.T(), tokenResponse.RefreshToken)

	claims, err := suite.service.Validate(suite.ctx, tokenResponse.AccessToken)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.tenant.ID.String(), claims.TenantID)
	assert.Equal(suite.T(), models.PlanBasic, claims.Plan)
	assert.Contains(suite.T(), []string(claims.Audience), "acme")
}

func (suite *TokenServiceTestSuite) TestValidate_WrongSecret() {
	other := NewTokenService(NewMockCacheService(), "other-secret", 3600, 86400)
	tokenResponse, err := other.Generate(suite.ctx, suite.tenant)
	assert.NoError(suite.T(), err)

	_, err = suite.service.Validate(suite.ctx, tokenResponse.AccessToken)
	assert.Error(suite.T(), err)
}

func (suite *TokenServiceTestSuite) TestValidate_Expired() {
	short := NewTokenService(suite.cacheSvc, "test-secret", -1, 86400)
	tokenResponse, err := short.Generate(suite.ctx, suite.tenant)
	assert.NoError(suite.T(), err)

	_, err = suite.service.Validate(suite.ctx, tokenResponse.AccessToken)
	assert.Error(suite.T(), err)
}

func (suite *TokenServiceTestSuite) TestRevoke_BlacklistsUntilExpiry() {
	tokenResponse, err := suite.service.Generate(suite.ctx, suite.tenant)
	assert.NoError(suite.T(), err)

	err = suite.service.Revoke(suite.ctx, tokenResponse.AccessToken, nil)
	assert.NoError(suite.T(), err)

	_, err = suite.service.Validate(suite.ctx, tokenResponse.AccessToken)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "revoked")
}

func (suite *TokenServiceTestSuite) TestRefresh_RoundTrip() {
	tokenResponse, err := suite.service.Generate(suite.ctx, suite.tenant)
	assert.NoError(suite.T(), err)

	claims, _, err := suite.service.Refresh(suite.ctx, tokenResponse.RefreshToken)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.tenant.ID.String(), claims.TenantID)
}

func (suite *TokenServiceTestSuite) TestRefresh_UnknownToken() {
	_, _, err := suite.service.Refresh(suite.ctx, "not-a-refresh-token")
	assert.Error(suite.T(), err)
}

func (suite *TokenServiceTestSuite) TestRefresh_AfterRevocation() {
	tokenResponse, err := suite.service.Generate(suite.ctx, suite.tenant)
	assert.NoError(suite.T(), err)

	hint := "refresh_token"
	err = suite.service.Revoke(suite.ctx, tokenResponse.RefreshToken, &hint)
	assert.NoError(suite.T(), err)

	_, _, err = suite.service.Refresh(suite.ctx, tokenResponse.RefreshToken)
	assert.Error(suite.T(), err)
}

func (suite *TokenServiceTestSuite) TestGenerate_SurvivesCacheOutage() {
	suite.cacheSvc.fail = true

	tokenResponse, err := suite.service.Generate(suite.ctx, suite.tenant)

	// Session token issuance works even when the refresh store is down
	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), tokenResponse.AccessToken)
}

func TestTokenServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceTestSuite))
}
