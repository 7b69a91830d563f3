// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenRevoked = errors.New("token revoked")
	ErrInactiveUser = errors.New("account inactive")
	ErrSystemRole   = errors.New("system roles cannot be deleted")
	ErrInternal     = errors.New("internal error")
	ErrRoleMismatch = errors.New("role does not belong to tenant")

	ErrTenantRequired = errors.New("tenant required")
	ErrTenantNotFound = errors.New("tenant not found")
	ErrTenantInactive = errors.New("tenant inactive")

	ErrProductNotFound         = errors.New("product not found")
	ErrProductUnavailable      = errors.New("product unavailable")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// AppError is an error that already knows how it is rendered to clients.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Code       string
	Details    any
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, status int, code string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: status,
		Code:       code,
	}
}

func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func ValidationFailed(message string, details any) *AppError {
	return NewAppError(
		ErrInvalidInput,
		message,
		http.StatusBadRequest,
		"VALIDATION_ERROR",
	).WithDetails(details)
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(ErrUnauthorized, message, http.StatusUnauthorized, "UNAUTHORIZED")
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "insufficient permissions"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "FORBIDDEN")
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		resource+" not found",
		http.StatusNotFound,
		"NOT_FOUND",
	)
}

func DuplicateError(field string) *AppError {
	return NewAppError(
		ErrDuplicateKey,
		field+" already in use",
		http.StatusConflict,
		"DUPLICATE_KEY",
	).WithDetails(map[string]string{"field": field})
}

func TokenExpiredError() *AppError {
	return NewAppError(ErrTokenExpired, "token expired", http.StatusUnauthorized, "TOKEN_EXPIRED")
}

func TokenInvalidError() *AppError {
	return NewAppError(ErrTokenInvalid, "invalid token", http.StatusUnauthorized, "TOKEN_INVALID")
}

func TokenRevokedError() *AppError {
	return NewAppError(ErrTokenRevoked, "token revoked", http.StatusUnauthorized, "TOKEN_REVOKED")
}

func InactiveAccountError() *AppError {
	return NewAppError(ErrInactiveUser, "account inactive", http.StatusUnauthorized, "ACCOUNT_INACTIVE")
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorTable is consulted in order, so more specific sentinels come first.
var errorTable = []errorMapping{
	{ErrTokenExpired, http.StatusUnauthorized, "TOKEN_EXPIRED", "token expired"},
	{ErrTokenRevoked, http.StatusUnauthorized, "TOKEN_REVOKED", "token revoked"},
	{ErrTokenInvalid, http.StatusUnauthorized, "TOKEN_INVALID", "invalid token"},
	{ErrInactiveUser, http.StatusUnauthorized, "ACCOUNT_INACTIVE", "account inactive"},
	{ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required"},
	{ErrSystemRole, http.StatusForbidden, "SYSTEM_ROLE", "system roles cannot be deleted"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN", "insufficient permissions"},
	{ErrTenantRequired, http.StatusBadRequest, "TENANT_REQUIRED", "tenant not specified: send X-Tenant-ID, use a tenant path or subdomain, or authenticate"},
	{ErrTenantNotFound, http.StatusNotFound, "TENANT_NOT_FOUND", "tenant not found"},
	{ErrTenantInactive, http.StatusForbidden, "TENANT_INACTIVE", "tenant is not active"},
	{ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found"},
	{ErrProductUnavailable, http.StatusBadRequest, "PRODUCT_UNAVAILABLE", "product unavailable"},
	{ErrInsufficientStock, http.StatusBadRequest, "INSUFFICIENT_STOCK", "insufficient stock"},
	{ErrInvalidStatusTransition, http.StatusBadRequest, "INVALID_STATUS_TRANSITION", "invalid status transition"},
	{ErrRoleMismatch, http.StatusBadRequest, "VALIDATION_ERROR", "role does not belong to tenant"},
	{ErrDuplicateKey, http.StatusConflict, "DUPLICATE_KEY", "resource already exists"},
	{ErrConflict, http.StatusConflict, "CONFLICT", "conflict"},
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND", "resource not found"},
	{ErrInvalidInput, http.StatusBadRequest, "VALIDATION_ERROR", "invalid input"},
}

// ToAppError maps any error onto the client-facing taxonomy. Errors that
// match nothing become a 500 with a generic message.
func ToAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			return NewAppError(err, m.message, m.status, m.code)
		}
	}

	return NewAppError(err, "internal server error", http.StatusInternalServerError, "INTERNAL_ERROR")
}
