package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/service"
)

// RoleHandler handles role and permission catalog endpoints.
type RoleHandler struct {
	roleService       service.RoleService
	permissionService service.PermissionService
}

// NewRoleHandler creates a new role handler.
func NewRoleHandler(roleService service.RoleService, permissionService service.PermissionService) *RoleHandler {
	return &RoleHandler{roleService: roleService, permissionService: permissionService}
}

// GrantPermissionRequest represents a permission grant.
type GrantPermissionRequest struct {
	Code string `json:"code" validate:"required"`
}

// List godoc
// @Summary List roles
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Role
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	roles, err := h.roleService.List(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, roles)
}

// Get godoc
// @Summary Get role by id with its permissions
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Param id path int true "Role ID"
// @Success 200 {object} model.Role
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /roles/{id} [get]
func (h *RoleHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	role, err := h.roleService.Get(c.Request().Context(), id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, role)
}

// ListPermissions godoc
// @Summary List the permission catalog
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Permission
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /permissions [get]
func (h *RoleHandler) ListPermissions(c echo.Context) error {
	permissions, err := h.permissionService.ListCatalog(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, permissions)
}

// GrantPermission godoc
// @Summary Grant a permission to a role
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Role ID"
// @Param request body GrantPermissionRequest true "Permission code"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /roles/{id}/permissions [post]
func (h *RoleHandler) GrantPermission(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req GrantPermissionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	if err := h.roleService.GrantPermission(c.Request().Context(), id, req.Code); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "permission granted",
	})
}

// RevokePermission godoc
// @Summary Revoke a permission from a role
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Param id path int true "Role ID"
// @Param code path string true "Permission code"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /roles/{id}/permissions/{code} [delete]
func (h *RoleHandler) RevokePermission(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	code := c.Param("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "missing permission code",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := h.roleService.RevokePermission(c.Request().Context(), id, code); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "permission revoked",
	})
}
