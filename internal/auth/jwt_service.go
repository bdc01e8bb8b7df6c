package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"

	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
)

// Scope values distinguish the two token shapes the service signs. A token
// minted for one purpose is never accepted for the other.
const (
	ScopeSession       = "session"
	ScopePasswordReset = "password_reset"
)

// SessionClaims is the identity snapshot embedded in a session token.
// Permissions are deliberately absent: the guard resolves them from the
// store on every request, so role edits apply without re-login.
type SessionClaims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	LoginName string `json:"login_name,omitempty"`
	AuthType  string `json:"auth_type"`
	RoleID    uint   `json:"role_id"`
	AvatarID  *uint  `json:"avatar_id,omitempty"`
	Scope     string `json:"scope"`
	jwt.RegisteredClaims
}

// ResetClaims carries just enough identity to finish a password reset.
type ResetClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Scope  string `json:"scope"`
	jwt.RegisteredClaims
}

// JWTService signs and validates the service's bearer tokens.
type JWTService struct {
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
}

// NewJWTService creates a token service signing with the given secret.
func NewJWTService(secret string, sessionTTL, resetTTL time.Duration) *JWTService {
	return &JWTService{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		resetTTL:   resetTTL,
	}
}

// IssueSessionToken signs a session token for a freshly authenticated user.
// The credential supplies the login identity recorded in the claims.
func (s *JWTService) IssueSessionToken(user *model.User, credential *model.Credential) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		UserID:    user.ID,
		Email:     user.Email,
		LoginName: credential.LoginName,
		AuthType:  string(credential.AuthType),
		RoleID:    user.RoleID,
		AvatarID:  user.AvatarID,
		Scope:     ScopeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// IssueResetToken signs a short-lived token delivered by email. It proves
// control of the mailbox and carries no session rights.
func (s *JWTService) IssueResetToken(user *model.User) (string, error) {
	now := time.Now()
	claims := &ResetClaims{
		UserID: user.ID,
		Email:  user.Email,
		Scope:  ScopePasswordReset,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.resetTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateSessionToken parses a session token and returns its claims. A
// token with any other scope is rejected even when the signature is good.
func (s *JWTService) ValidateSessionToken(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Scope != ScopeSession {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// ValidateResetToken parses a password reset token and returns its claims.
func (s *JWTService) ValidateResetToken(tokenString string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Scope != ScopePasswordReset {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

func (s *JWTService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return apperrors.ErrExpiredToken
		}
		return apperrors.ErrInvalidToken
	}
	if !token.Valid {
		return apperrors.ErrInvalidToken
	}
	return nil
}
