package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is returned when input is missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrConflict is returned when a uniqueness constraint is violated.
	ErrConflict = errors.New("resource already exists")
	// ErrInvalidCredentials is returned when login name or password is incorrect.
	// Lookup misses and hash mismatches collapse into this one error so the
	// response never reveals whether the login name exists.
	ErrInvalidCredentials = errors.New("invalid login name or password")
	// ErrInvalidToken is returned when a token fails signature or shape checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when a token is past its expiry.
	ErrExpiredToken = errors.New("token expired")
	// ErrUserNotFound is returned when a user lookup fails.
	ErrUserNotFound = errors.New("user not found")
	// ErrCredentialNotFound is returned when a credential lookup fails.
	ErrCredentialNotFound = errors.New("credential not found")
	// ErrLastCredential is returned when deleting a user's only active credential.
	ErrLastCredential = errors.New("cannot delete the last active credential")
	// ErrForbidden is returned when the caller lacks a required permission.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrInviteExpired is returned when an invite code is past its expiry.
	ErrInviteExpired = errors.New("invite expired")
	// ErrInviteUsed is returned when an invite code was already accepted.
	ErrInviteUsed = errors.New("invite already accepted")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unrecognized errors come
// back as a generic 500 so internal detail never reaches the response body.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_FAILED")
	case errors.Is(err, ErrConflict):
		return NewHTTPError(http.StatusConflict, err.Error(), "CONFLICT")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusForbidden, err.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrExpiredToken):
		return NewHTTPError(http.StatusForbidden, err.Error(), "EXPIRED_TOKEN")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrCredentialNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "CREDENTIAL_NOT_FOUND")
	case errors.Is(err, ErrLastCredential):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "LAST_CREDENTIAL")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrInviteExpired):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVITE_EXPIRED")
	case errors.Is(err, ErrInviteUsed):
		return NewHTTPError(http.StatusConflict, err.Error(), "INVITE_USED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

// Validation wraps a human-readable detail in ErrValidation so callers can
// surface the message while handlers still match the sentinel.
func Validation(detail string) error {
	return &detailError{sentinel: ErrValidation, detail: detail}
}

// Conflict wraps a human-readable detail in ErrConflict.
func Conflict(detail string) error {
	return &detailError{sentinel: ErrConflict, detail: detail}
}

type detailError struct {
	sentinel error
	detail   string
}

func (e *detailError) Error() string { return e.detail }
func (e *detailError) Unwrap() error { return e.sentinel }
