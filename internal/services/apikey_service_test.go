package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Mj26111999/pern-saas-api-builder/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type APIKeyServiceTestSuite struct {
	suite.Suite
	apiKeyRepo *MockAPIKeyRepository
	service    APIKeyService
	tenantID   uuid.UUID
	ctx        context.Context
}

func (suite *APIKeyServiceTestSuite) SetupTest() {
	suite.apiKeyRepo = &MockAPIKeyRepository{}
	suite.service = NewAPIKeyService(suite.apiKeyRepo)
	suite.tenantID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *APIKeyServiceTestSuite) TestCreate_Success() {
	suite.apiKeyRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.APIKey")).Return(nil)

	key, err := suite.service.Create(suite.ctx, suite.tenantID, &CreateAPIKeyRequest{
		Name:        "ci pipeline",
		Permissions: map[string]bool{models.CapabilityExecuteQueries: true},
	})

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), strings.HasPrefix(key.Key, "ak_"))
	assert.Len(suite.T(), key.Key, 43)
	assert.Equal(suite.T(), suite.tenantID, key.TenantID)
	assert.True(suite.T(), key.Permissions[models.CapabilityExecuteQueries])
	suite.apiKeyRepo.AssertExpectations(suite.T())
}

func (suite *APIKeyServiceTestSuite) TestCreate_EmptyName() {
	_, err := suite.service.Create(suite.ctx, suite.tenantID, &CreateAPIKeyRequest{Name: "  "})

	assert.Error(suite.T(), err)
}

func (suite *APIKeyServiceTestSuite) TestCreate_UnknownCapability() {
	_, err := suite.service.Create(suite.ctx, suite.tenantID, &CreateAPIKeyRequest{
		Name:        "bad",
		Permissions: map[string]bool{"launch_missiles": true},
	})

	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "unknown capability")
}

func (suite *APIKeyServiceTestSuite) TestCreate_NonPositiveRateLimit() {
	zero := 0
	_, err := suite.service.Create(suite.ctx, suite.tenantID, &CreateAPIKeyRequest{
		Name:      "bad",
		RateLimit: &zero,
	})

	assert.Error(suite.T(), err)
}

func (suite *APIKeyServiceTestSuite) TestCreate_PastExpiry() {
	past := time.Now().Add(-time.Minute)
	_, err := suite.service.Create(suite.ctx, suite.tenantID, &CreateAPIKeyRequest{
		Name:      "bad",
		ExpiresAt: &past,
	})

	assert.Error(suite.T(), err)
}

func (suite *APIKeyServiceTestSuite) TestRevoke() {
	keyID := uuid.New()
	suite.apiKeyRepo.On("Delete", suite.ctx, suite.tenantID, keyID).Return(nil)

	err := suite.service.Revoke(suite.ctx, suite.tenantID, keyID)

	assert.NoError(suite.T(), err)
	suite.apiKeyRepo.AssertExpectations(suite.T())
}

func TestAPIKeyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(APIKeyServiceTestSuite))
}
