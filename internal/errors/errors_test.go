package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "validation", err: ErrValidation, wantStatus: http.StatusBadRequest, wantCode: "VALIDATION_FAILED"},
		{name: "conflict", err: ErrConflict, wantStatus: http.StatusConflict, wantCode: "CONFLICT"},
		{name: "invalid credentials", err: ErrInvalidCredentials, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_CREDENTIALS"},
		{name: "invalid token", err: ErrInvalidToken, wantStatus: http.StatusForbidden, wantCode: "INVALID_TOKEN"},
		{name: "expired token", err: ErrExpiredToken, wantStatus: http.StatusForbidden, wantCode: "EXPIRED_TOKEN"},
		{name: "user not found", err: ErrUserNotFound, wantStatus: http.StatusNotFound, wantCode: "USER_NOT_FOUND"},
		{name: "credential not found", err: ErrCredentialNotFound, wantStatus: http.StatusNotFound, wantCode: "CREDENTIAL_NOT_FOUND"},
		{name: "last credential", err: ErrLastCredential, wantStatus: http.StatusBadRequest, wantCode: "LAST_CREDENTIAL"},
		{name: "forbidden", err: ErrForbidden, wantStatus: http.StatusForbidden, wantCode: "FORBIDDEN"},
		{name: "not found", err: ErrNotFound, wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "invite expired", err: ErrInviteExpired, wantStatus: http.StatusBadRequest, wantCode: "INVITE_EXPIRED"},
		{name: "invite used", err: ErrInviteUsed, wantStatus: http.StatusConflict, wantCode: "INVITE_USED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)

			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
			assert.Equal(t, tt.err.Error(), httpErr.Message)
		})
	}
}

func TestMapErrorToHTTP_WrappedChain(t *testing.T) {
	err := fmt.Errorf("create certificate: %w", ErrValidation)

	httpErr := MapErrorToHTTP(err)

	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", httpErr.Code)
}

func TestMapErrorToHTTP_Unknown(t *testing.T) {
	httpErr := MapErrorToHTTP(errors.New("pq: SSL connection has been closed unexpectedly"))

	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Equal(t, "INTERNAL_ERROR", httpErr.Code)
	// Driver detail must never leak into the response body.
	assert.Equal(t, "internal server error", httpErr.Message)
}

func TestDetailWrappers(t *testing.T) {
	t.Run("validation detail", func(t *testing.T) {
		err := Validation("title is required")

		assert.ErrorIs(t, err, ErrValidation)
		assert.EqualError(t, err, "title is required")

		httpErr := MapErrorToHTTP(err)
		assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", httpErr.Code)
		assert.Equal(t, "title is required", httpErr.Message)
	})

	t.Run("conflict detail", func(t *testing.T) {
		err := Conflict("email already registered")

		assert.ErrorIs(t, err, ErrConflict)
		assert.EqualError(t, err, "email already registered")

		httpErr := MapErrorToHTTP(err)
		assert.Equal(t, http.StatusConflict, httpErr.StatusCode)
		assert.Equal(t, "CONFLICT", httpErr.Code)
		assert.Equal(t, "email already registered", httpErr.Message)
	})
}

func TestHTTPError_ToErrorResponse(t *testing.T) {
	httpErr := NewHTTPError(http.StatusTeapot, "short and stout", "TEAPOT")

	resp := httpErr.ToErrorResponse()

	assert.Equal(t, "short and stout", resp.Error)
	assert.Equal(t, "TEAPOT", resp.Code)
	assert.EqualError(t, httpErr, "short and stout")
}
