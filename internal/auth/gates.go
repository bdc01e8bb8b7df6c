package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
)

// OwnerResolver maps a request to the user ID owning the addressed resource.
// It should return apperrors.ErrNotFound when the resource does not exist.
type OwnerResolver func(c echo.Context) (uint, error)

// RequirePermissions allows the request only when the caller holds every one
// of the given codes. Mount after LoadUser.
func RequirePermissions(codes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			held := CurrentPermissions(c)
			if _, ok := CurrentUser(c); !ok {
				return c.JSON(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: "missing bearer token",
					Code:  "MISSING_TOKEN",
				})
			}

			heldSet := make(map[string]struct{}, len(held))
			for _, code := range held {
				heldSet[code] = struct{}{}
			}
			for _, code := range codes {
				if _, ok := heldSet[code]; !ok {
					httpErr := apperrors.MapErrorToHTTP(apperrors.ErrForbidden)
					return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
				}
			}
			return next(c)
		}
	}
}

// RequireOwner allows the request only when the caller owns the addressed
// resource or holds the administrator role. Mount after LoadUser.
func RequireOwner(adminRoleID uint, resolve OwnerResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: "missing bearer token",
					Code:  "MISSING_TOKEN",
				})
			}

			if user.RoleID == adminRoleID {
				return next(c)
			}

			ownerID, err := resolve(c)
			if err != nil {
				httpErr := apperrors.MapErrorToHTTP(err)
				return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
			}
			if ownerID != user.ID {
				httpErr := apperrors.MapErrorToHTTP(apperrors.ErrForbidden)
				return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
			}
			return next(c)
		}
	}
}
