package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
)

func newJWTServiceForTest() *JWTService {
	return NewJWTService("test-secret", time.Hour, 15*time.Minute)
}

func sessionSubject() (*model.User, *model.Credential) {
	avatarID := uint(4)
	user := &model.User{
		ID:       7,
		Email:    "kim@example.com",
		RoleID:   2,
		AvatarID: &avatarID,
		Active:   true,
	}
	credential := &model.Credential{
		UserID:    7,
		AuthType:  model.AuthTypePassword,
		LoginName: "kim",
	}
	return user, credential
}

func TestJWTService_SessionRoundTrip(t *testing.T) {
	svc := newJWTServiceForTest()
	user, credential := sessionSubject()

	token, err := svc.IssueSessionToken(user, credential)
	assert.NoError(t, err)

	claims, err := svc.ValidateSessionToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "kim@example.com", claims.Email)
	assert.Equal(t, "kim", claims.LoginName)
	assert.Equal(t, "password", claims.AuthType)
	assert.Equal(t, uint(2), claims.RoleID)
	if assert.NotNil(t, claims.AvatarID) {
		assert.Equal(t, uint(4), *claims.AvatarID)
	}
	assert.Equal(t, ScopeSession, claims.Scope)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestJWTService_ResetRoundTrip(t *testing.T) {
	svc := newJWTServiceForTest()
	user, _ := sessionSubject()

	token, err := svc.IssueResetToken(user)
	assert.NoError(t, err)

	claims, err := svc.ValidateResetToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "kim@example.com", claims.Email)
	assert.Equal(t, ScopePasswordReset, claims.Scope)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Minute)
}

func TestJWTService_ScopeCrossing(t *testing.T) {
	svc := newJWTServiceForTest()
	user, credential := sessionSubject()

	t.Run("reset token is not a session", func(t *testing.T) {
		token, err := svc.IssueResetToken(user)
		assert.NoError(t, err)

		claims, err := svc.ValidateSessionToken(token)
		assert.Nil(t, claims)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("session token cannot reset a password", func(t *testing.T) {
		token, err := svc.IssueSessionToken(user, credential)
		assert.NoError(t, err)

		claims, err := svc.ValidateResetToken(token)
		assert.Nil(t, claims)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})
}

func TestJWTService_Expired(t *testing.T) {
	// Zero TTLs put exp in the past the moment the token is signed.
	svc := NewJWTService("test-secret", 0, 0)
	user, credential := sessionSubject()

	sessionToken, err := svc.IssueSessionToken(user, credential)
	assert.NoError(t, err)
	_, err = svc.ValidateSessionToken(sessionToken)
	assert.ErrorIs(t, err, apperrors.ErrExpiredToken)

	resetToken, err := svc.IssueResetToken(user)
	assert.NoError(t, err)
	_, err = svc.ValidateResetToken(resetToken)
	assert.ErrorIs(t, err, apperrors.ErrExpiredToken)
}

func TestJWTService_RejectsForgeries(t *testing.T) {
	svc := newJWTServiceForTest()
	user, credential := sessionSubject()

	goodToken, err := svc.IssueSessionToken(user, credential)
	assert.NoError(t, err)

	tamper := func(token string) string {
		parts := strings.Split(token, ".")
		parts[1] = strings.ToUpper(parts[1])
		return strings.Join(parts, ".")
	}

	foreignToken, err := NewJWTService("other-secret", time.Hour, time.Hour).
		IssueSessionToken(user, credential)
	assert.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &SessionClaims{
		UserID: user.ID,
		Scope:  ScopeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "tampered payload", token: tamper(goodToken)},
		{name: "wrong secret", token: foreignToken},
		{name: "alg none", token: noneToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ValidateSessionToken(tt.token)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
		})
	}
}
