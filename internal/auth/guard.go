package auth

import (
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
	"github.com/alexmeleta/compliance-mait-api/internal/repository"
)

// Context keys under which the guard stashes request identity.
const (
	claimsContextKey      = "auth_claims"
	userContextKey        = "auth_user"
	permissionsContextKey = "auth_permissions"
)

// Guard authenticates requests and loads the live user for downstream gates.
// Tokens prove identity only; account state and permissions are read from the
// store on every request, so deactivation and role edits take effect
// immediately instead of at token expiry.
type Guard struct {
	jwt    *JWTService
	users  repository.UserRepository
	logger *zap.Logger
}

// NewGuard creates a guard over the given token service and user store.
func NewGuard(jwt *JWTService, users repository.UserRepository, logger *zap.Logger) *Guard {
	return &Guard{jwt: jwt, users: users, logger: logger}
}

// Authenticate verifies the bearer token and stashes its session claims.
// A request with no usable token gets 401; a present but invalid, expired,
// or wrong-scope token gets 403.
func (g *Guard) Authenticate() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: claimsContextKey,
		ParseTokenFunc: func(c echo.Context, tokenString string) (interface{}, error) {
			return g.jwt.ValidateSessionToken(tokenString)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if errors.Is(err, apperrors.ErrInvalidToken) || errors.Is(err, apperrors.ErrExpiredToken) {
				httpErr := apperrors.MapErrorToHTTP(err)
				return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
			}
			return c.JSON(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: "missing bearer token",
				Code:  "MISSING_TOKEN",
			})
		},
	})
}

// LoadUser reloads the token's user from the store and resolves the role's
// current permission codes. Users who were deactivated or deleted after the
// token was issued are cut off here.
func (g *Guard) LoadUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(claimsContextKey).(*SessionClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: "missing bearer token",
					Code:  "MISSING_TOKEN",
				})
			}

			user, err := g.users.FindActiveByID(c.Request().Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return c.JSON(http.StatusForbidden, apperrors.ErrorResponse{
						Error: "account disabled or removed",
						Code:  "ACCOUNT_DISABLED",
					})
				}
				g.logger.Error("loading authenticated user failed",
					zap.Uint("user_id", claims.UserID),
					zap.Error(err))
				httpErr := apperrors.MapErrorToHTTP(err)
				return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
			}

			c.Set(userContextKey, user)
			c.Set(permissionsContextKey, user.Role.PermissionCodes())
			return next(c)
		}
	}
}

// CurrentUser returns the live user attached by LoadUser.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(userContextKey).(*model.User)
	return user, ok
}

// CurrentClaims returns the verified session claims attached by Authenticate.
func CurrentClaims(c echo.Context) (*SessionClaims, bool) {
	claims, ok := c.Get(claimsContextKey).(*SessionClaims)
	return claims, ok
}

// CurrentPermissions returns the permission codes resolved for this request.
func CurrentPermissions(c echo.Context) []string {
	codes, _ := c.Get(permissionsContextKey).([]string)
	return codes
}
