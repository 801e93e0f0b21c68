package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/Mj26111999/pern-saas-api-builder/internal/caching"
	"github.com/Mj26111999/pern-saas-api-builder/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "apibuilder"

// TokenService issues and verifies signed session tokens. A session token
// carries the tenant id and plan, is bound to the tenant's subdomain as
// audience, and expires after a configurable TTL.
type TokenService interface {
	Generate(ctx context.Context, tenant *models.Tenant) (*models.TokenResponse, error)
	Validate(ctx context.Context, token string) (*SessionClaims, error)
	Refresh(ctx context.Context, refreshToken string) (*SessionClaims, string, error)
	Revoke(ctx context.Context, token string, tokenType *string) error
}

type tokenService struct {
	cacheSvc   caching.CacheService
	jwtSecret  []byte
	tokenTTL   int // Access token TTL in seconds
	refreshTTL int // Refresh token TTL in seconds
}

// SessionClaims represents session token JWT claims
type SessionClaims struct {
	TenantID string          `json:"tenant_id"`
	Plan     models.PlanTier `json:"plan"`
	jwt.RegisteredClaims
}

// NewTokenService creates a new session token service
func NewTokenService(cacheSvc caching.CacheService, jwtSecret string, tokenTTLSeconds, refreshTTLSeconds int) TokenService {
	return &tokenService{
		cacheSvc:   cacheSvc,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTLSeconds,
		refreshTTL: refreshTTLSeconds,
	}
}

// Generate signs a session token for the tenant and stores a refresh token.
func (s *tokenService) Generate(ctx context.Context, tenant *models.Tenant) (*models.TokenResponse, error) {
	now := time.Now()
	tokenID := uuid.NewString()

	claims := SessionClaims{
		TenantID: tenant.ID.String(),
		Plan:     tenant.Plan,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   tenant.ID.String(),
			Audience:  jwt.ClaimStrings{tenant.Subdomain},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.tokenTTL) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessTokenString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %v", err)
	}

	refreshToken := s.generateSecureToken()
	refreshTokenHash := s.hashToken(refreshToken)

	refreshTokenData := fmt.Sprintf("%s:%s:%d", tenant.ID.String(), refreshTokenHash, now.Unix()+int64(s.refreshTTL))
	cacheKey := fmt.Sprintf("apibuilder:refresh_token:%s", refreshTokenHash)
	if err := s.cacheSvc.SetString(ctx, cacheKey, refreshTokenData, time.Duration(s.refreshTTL)*time.Second); err != nil {
		log.Printf("Failed to store refresh token: %v", err)
		// Continue - token generation succeeded
	}

	return &models.TokenResponse{
		AccessToken:  accessTokenString,
		TokenType:    "Bearer",
		ExpiresIn:    s.tokenTTL,
		RefreshToken: refreshToken,
		TenantID:     tenant.ID.String(),
		IssuedAt:     now,
	}, nil
}

// Validate verifies signature, expiry, issuer and revocation state.
func (s *tokenService) Validate(ctx context.Context, token string) (*SessionClaims, error) {
	jwtToken, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}

	claims, ok := jwtToken.Claims.(*SessionClaims)
	if !ok || !jwtToken.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	// Revoked tokens are blacklisted until their natural expiry
	blacklistKey := fmt.Sprintf("apibuilder:token_blacklist:%s", claims.ID)
	if revoked, err := s.cacheSvc.GetString(ctx, blacklistKey); err == nil && revoked != "" {
		return nil, fmt.Errorf("token has been revoked")
	}

	return claims, nil
}

// Refresh validates a refresh token and returns the tenant it belongs to,
// plus the refresh token hash so the caller can rotate it.
func (s *tokenService) Refresh(ctx context.Context, refreshToken string) (*SessionClaims, string, error) {
	refreshTokenHash := s.hashToken(refreshToken)

	cacheKey := fmt.Sprintf("apibuilder:refresh_token:%s", refreshTokenHash)
	tokenData, err := s.cacheSvc.GetString(ctx, cacheKey)
	if err != nil || tokenData == "" {
		return nil, "", fmt.Errorf("invalid refresh token")
	}

	parts := strings.Split(tokenData, ":")
	if len(parts) != 3 {
		return nil, "", fmt.Errorf("invalid token data")
	}

	tenantIDStr, tokenHash, expiryStr := parts[0], parts[1], parts[2]
	expiry, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil {
		return nil, "", fmt.Errorf("invalid token expiry")
	}

	if time.Now().Unix() > expiry {
		s.cacheSvc.Delete(ctx, cacheKey)
		return nil, "", fmt.Errorf("refresh token expired")
	}

	if tokenHash != refreshTokenHash {
		return nil, "", fmt.Errorf("invalid refresh token")
	}

	if _, err := uuid.Parse(tenantIDStr); err != nil {
		return nil, "", fmt.Errorf("invalid tenant ID in token")
	}

	return &SessionClaims{TenantID: tenantIDStr}, refreshTokenHash, nil
}

// Revoke revokes an access or refresh token
func (s *tokenService) Revoke(ctx context.Context, token string, tokenType *string) error {
	if tokenType != nil && *tokenType == "refresh_token" {
		refreshTokenHash := s.hashToken(token)
		cacheKey := fmt.Sprintf("apibuilder:refresh_token:%s", refreshTokenHash)
		return s.cacheSvc.Delete(ctx, cacheKey)
	}

	claims, err := s.Validate(ctx, token)
	if err != nil {
		return fmt.Errorf("cannot revoke invalid token: %v", err)
	}

	blacklistKey := fmt.Sprintf("apibuilder:token_blacklist:%s", claims.ID)
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil // already expired
	}
	if err := s.cacheSvc.SetString(ctx, blacklistKey, "revoked", ttl); err != nil {
		log.Printf("Failed to blacklist token: %v", err)
	}

	return nil
}

// generateSecureToken generates a cryptographically secure random token
func (s *tokenService) generateSecureToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return base64.URLEncoding.EncodeToString(bytes)
}

// hashToken creates a SHA-256 hash of the token for secure storage
func (s *tokenService) hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
