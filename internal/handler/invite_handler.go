package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alexmeleta/compliance-mait-api/internal/auth"
	"github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/service"
)

// InviteHandler handles invitation endpoints, including the public
// registration path that consumes an invite code.
type InviteHandler struct {
	inviteService service.InviteService
}

// NewInviteHandler creates a new invite handler.
func NewInviteHandler(inviteService service.InviteService) *InviteHandler {
	return &InviteHandler{inviteService: inviteService}
}

// CreateInviteRequest represents a new invitation.
type CreateInviteRequest struct {
	Email  string `json:"email" validate:"required,email"`
	RoleID uint   `json:"role_id" validate:"required"`
}

// AcceptInviteRequest represents registration through an invite code.
type AcceptInviteRequest struct {
	Code      string `json:"code" validate:"required"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	LoginName string `json:"login_name" validate:"required,min=3"`
}

// Create godoc
// @Summary Invite a user by email
// @Tags invites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateInviteRequest true "Invitee email and role"
// @Success 201 {object} model.Invite
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /invites [post]
func (h *InviteHandler) Create(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "missing bearer token",
			Code:  "MISSING_TOKEN",
		})
	}

	var req CreateInviteRequest
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

	invite, err := h.inviteService.Create(c.Request().Context(), user.ID, req.Email, req.RoleID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, invite)
}

// Accept godoc
// @Summary Register through an invite code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body AcceptInviteRequest true "Invite code and registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /auth/invite-accept [post]
func (h *InviteHandler) Accept(c echo.Context) error {
	var req AcceptInviteRequest
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

	result, err := h.inviteService.Accept(c.Request().Context(), service.AcceptInviteInput{
		Code:      req.Code,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		LoginName: req.LoginName,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, newAuthResponse(result))
}

// List godoc
// @Summary List invitations sent by the caller
// @Tags invites
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Invite
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /invites [get]
func (h *InviteHandler) List(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "missing bearer token",
			Code:  "MISSING_TOKEN",
		})
	}

	invites, err := h.inviteService.ListByInviter(c.Request().Context(), user.ID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, invites)
}

// Revoke godoc
// @Summary Revoke an unaccepted invitation
// @Tags invites
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invite ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /invites/{id} [delete]
func (h *InviteHandler) Revoke(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.inviteService.Revoke(c.Request().Context(), id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "invite revoked successfully",
	})
}
