package common

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Mj26111999/pern-saas-api-builder/internal/models"
	"github.com/labstack/echo/v4"
)

// ErrorCode is the machine-readable kind of an authorization failure.
type ErrorCode string

const (
	CodeUnauthenticated     ErrorCode = "UNAUTHENTICATED"
	CodeInvalidCredential   ErrorCode = "INVALID_CREDENTIAL"
	CodeInvalidToken        ErrorCode = "INVALID_TOKEN"
	CodeCredentialExpired   ErrorCode = "CREDENTIAL_EXPIRED"
	CodeQuotaExceeded       ErrorCode = "QUOTA_EXCEEDED"
	CodePermissionDenied    ErrorCode = "PERMISSION_DENIED"
	CodePlanUpgradeRequired ErrorCode = "PLAN_UPGRADE_REQUIRED"
	CodeStoreUnavailable    ErrorCode = "STORE_UNAVAILABLE"
)

// AuthError is a terminal request/handshake failure from the auth core. It
// carries the HTTP status the outer layer should use and remediation details
// the caller can act on, never stored secrets.
type AuthError struct {
	Code    ErrorCode
	Message string
	Status  int
	Details map[string]string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewUnauthenticatedError(message string) *AuthError {
	return &AuthError{Code: CodeUnauthenticated, Message: message, Status: http.StatusUnauthorized}
}

func NewInvalidCredentialError() *AuthError {
	return &AuthError{Code: CodeInvalidCredential, Message: "Invalid API key", Status: http.StatusUnauthorized}
}

func NewInvalidTokenError(reason string) *AuthError {
	return &AuthError{Code: CodeInvalidToken, Message: reason, Status: http.StatusUnauthorized}
}

func NewCredentialExpiredError() *AuthError {
	return &AuthError{Code: CodeCredentialExpired, Message: "API key has expired", Status: http.StatusUnauthorized}
}

func NewQuotaExceededError(limit int, resetAt time.Time) *AuthError {
	return &AuthError{
		Code:    CodeQuotaExceeded,
		Message: "Daily request quota exceeded",
		Status:  http.StatusTooManyRequests,
		Details: map[string]string{
			"limit":    fmt.Sprintf("%d", limit),
			"reset_at": resetAt.UTC().Format(time.RFC3339),
		},
	}
}

func NewPermissionDeniedError(capability string) *AuthError {
	return &AuthError{
		Code:    CodePermissionDenied,
		Message: fmt.Sprintf("Missing required permission: %s", capability),
		Status:  http.StatusForbidden,
		Details: map[string]string{"required_permission": capability},
	}
}

func NewPlanUpgradeRequiredError(required, current models.PlanTier) *AuthError {
	return &AuthError{
		Code:    CodePlanUpgradeRequired,
		Message: fmt.Sprintf("This feature requires the %s plan or above", required),
		Status:  http.StatusForbidden,
		Details: map[string]string{
			"required_plan": string(required),
			"current_plan":  string(current),
		},
	}
}

func NewStoreUnavailableError(err error) *AuthError {
	return &AuthError{
		Code:    CodeStoreUnavailable,
		Message: "Persistent store unavailable",
		Status:  http.StatusServiceUnavailable,
		Details: map[string]string{"cause": err.Error()},
	}
}

// AsAuthError unwraps err into an *AuthError if it is one.
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendAuthError writes an AuthError (or a generic 500 for anything else) as
// the standard error envelope.
func SendAuthError(c echo.Context, err error) error {
	if authErr, ok := AsAuthError(err); ok {
		return c.JSON(authErr.Status, CreateErrorResponse(string(authErr.Code), authErr.Message, authErr.Details))
	}
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", "Internal server error", nil))
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// SendNotFoundError sends a not found error response
func SendNotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", fmt.Sprintf("%s not found", resource), nil))
}
