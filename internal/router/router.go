package router

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/alexmeleta/compliance-mait-api/internal/auth"
	"github.com/alexmeleta/compliance-mait-api/internal/config"
	apperrors "github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/handler"
	appmiddleware "github.com/alexmeleta/compliance-mait-api/internal/middleware"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
)

// OwnerFunc resolves the owning user of a stored resource by its id.
// The services expose these as their OwnerID methods.
type OwnerFunc func(ctx context.Context, id uint) (uint, error)

// Deps bundles everything Register mounts into the route table.
type Deps struct {
	Guard         *auth.Guard
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Certificates  *handler.CertificateHandler
	Jurisdictions *handler.JurisdictionHandler
	Connections   *handler.ConnectionHandler
	Invites       *handler.InviteHandler
	Notifications *handler.NotificationHandler
	Files         *handler.FileHandler
	Roles         *handler.RoleHandler

	// Ownership resolvers backing the owner-or-admin gates.
	CertificateOwner  OwnerFunc
	InviteOwner       OwnerFunc
	NotificationOwner OwnerFunc
	FileOwner         OwnerFunc
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, logger *zap.Logger, deps Deps) {
	e.Use(middleware.RequestID())
	e.Use(appmiddleware.AccessLog(logger))
	e.Use(middleware.Recover())
	e.Use(appmiddleware.Metrics())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes. Credential guessing is throttled per client IP.
	public := api.Group("/auth", appmiddleware.RateLimitPerIP(rate.Limit(cfg.AuthRateRPS), cfg.AuthRateBurst))
	public.POST("/register", deps.Auth.Register)
	public.POST("/login", deps.Auth.Login)
	public.POST("/openid", deps.Auth.LoginOpenID)
	public.POST("/password/reset-request", deps.Auth.RequestPasswordReset)
	public.POST("/password/reset-confirm", deps.Auth.ConfirmPasswordReset)
	public.POST("/invite-accept", deps.Invites.Accept)

	// Secured routes: verify the bearer token, then reload the live user and
	// permissions for the gates below.
	secured := api.Group("", deps.Guard.Authenticate(), deps.Guard.LoadUser())

	secured.POST("/auth/password/change", deps.Auth.ChangePassword)
	secured.GET("/me", deps.Users.Me)
	secured.PUT("/me/avatar", deps.Users.SetAvatar)

	// User routes
	secured.GET("/users", deps.Users.List, auth.RequirePermissions(model.PermViewUser))
	secured.GET("/users/:id", deps.Users.Get, auth.RequirePermissions(model.PermViewUser))
	secured.PUT("/users/:id", deps.Users.Update, auth.RequireOwner(cfg.AdminRoleID, pathOwner("id")))
	secured.PUT("/users/:id/role", deps.Users.ChangeRole, auth.RequirePermissions(model.PermManageRoles))
	secured.DELETE("/users/:id", deps.Users.Delete, auth.RequirePermissions(model.PermDeleteUser))
	secured.GET("/users/:id/certificates", deps.Certificates.ListByUser, auth.RequirePermissions(model.PermViewCertificate))

	// Certificate routes
	certOwner := auth.RequireOwner(cfg.AdminRoleID, resourceOwner("id", deps.CertificateOwner))
	secured.POST("/certificates", deps.Certificates.Create, auth.RequirePermissions(model.PermCreateCertificate))
	secured.GET("/certificates", deps.Certificates.ListMine)
	secured.GET("/certificates/expiring", deps.Certificates.ListExpiring)
	secured.GET("/certificates/:id", deps.Certificates.Get, certOwner)
	secured.PUT("/certificates/:id", deps.Certificates.Update, certOwner)
	secured.DELETE("/certificates/:id", deps.Certificates.Delete, certOwner)

	// Jurisdiction routes
	manageJurisdictions := auth.RequirePermissions(model.PermManageJurisdictions)
	secured.GET("/jurisdictions", deps.Jurisdictions.List)
	secured.GET("/jurisdictions/:id", deps.Jurisdictions.Get)
	secured.POST("/jurisdictions", deps.Jurisdictions.Create, manageJurisdictions)
	secured.PUT("/jurisdictions/:id", deps.Jurisdictions.Update, manageJurisdictions)
	secured.DELETE("/jurisdictions/:id", deps.Jurisdictions.Delete, manageJurisdictions)

	// Connection routes; side checks live in the service.
	secured.POST("/connections", deps.Connections.Request)
	secured.GET("/connections", deps.Connections.List)
	secured.GET("/connections/pending", deps.Connections.ListPending)
	secured.POST("/connections/:id/accept", deps.Connections.Accept)
	secured.POST("/connections/:id/decline", deps.Connections.Decline)
	secured.DELETE("/connections/:id", deps.Connections.Remove)

	// Invite routes
	secured.POST("/invites", deps.Invites.Create, auth.RequirePermissions(model.PermCreateInvite))
	secured.GET("/invites", deps.Invites.List, auth.RequirePermissions(model.PermViewInvite))
	secured.DELETE("/invites/:id", deps.Invites.Revoke, auth.RequireOwner(cfg.AdminRoleID, resourceOwner("id", deps.InviteOwner)))

	// Notification routes
	notificationOwner := auth.RequireOwner(cfg.AdminRoleID, resourceOwner("id", deps.NotificationOwner))
	secured.GET("/notifications", deps.Notifications.List)
	secured.GET("/notifications/unread-count", deps.Notifications.UnreadCount)
	secured.PUT("/notifications/read-all", deps.Notifications.MarkAllRead)
	secured.PUT("/notifications/:id/read", deps.Notifications.MarkRead, notificationOwner)
	secured.DELETE("/notifications/:id", deps.Notifications.Delete, notificationOwner)
	secured.POST("/notifications/scan-expiring", deps.Notifications.ScanExpiring, auth.RequirePermissions(model.PermViewReports))

	// File routes
	fileOwner := auth.RequireOwner(cfg.AdminRoleID, resourceOwner("id", deps.FileOwner))
	secured.POST("/files", deps.Files.Upload)
	secured.GET("/files", deps.Files.List)
	secured.GET("/files/:id", deps.Files.Download, fileOwner)
	secured.DELETE("/files/:id", deps.Files.Delete, fileOwner)

	// Role routes
	manageRoles := auth.RequirePermissions(model.PermManageRoles)
	secured.GET("/roles", deps.Roles.List, manageRoles)
	secured.GET("/roles/:id", deps.Roles.Get, manageRoles)
	secured.GET("/permissions", deps.Roles.ListPermissions, manageRoles)
	secured.POST("/roles/:id/permissions", deps.Roles.GrantPermission, manageRoles)
	secured.DELETE("/roles/:id/permissions/:code", deps.Roles.RevokePermission, manageRoles)
}

// pathOwner treats the path parameter itself as the owning user id, for
// routes addressing a user directly.
func pathOwner(param string) auth.OwnerResolver {
	return func(c echo.Context) (uint, error) {
		id, err := strconv.ParseUint(c.Param(param), 10, 32)
		if err != nil {
			return 0, apperrors.ErrNotFound
		}
		return uint(id), nil
	}
}

// resourceOwner looks up the owning user of the addressed resource.
func resourceOwner(param string, resolve OwnerFunc) auth.OwnerResolver {
	return func(c echo.Context) (uint, error) {
		id, err := strconv.ParseUint(c.Param(param), 10, 32)
		if err != nil {
			return 0, apperrors.ErrNotFound
		}
		return resolve(c.Request().Context(), uint(id))
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
