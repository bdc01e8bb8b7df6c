package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alexmeleta/compliance-mait-api/internal/auth"
	"github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
	"github.com/alexmeleta/compliance-mait-api/internal/service"
)

// ConnectionHandler handles peer connection endpoints. Side checks (who may
// accept, decline or remove) live in the service; handlers only identify the
// caller.
type ConnectionHandler struct {
	connectionService service.ConnectionService
}

// NewConnectionHandler creates a new connection handler.
func NewConnectionHandler(connectionService service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connectionService: connectionService}
}

// ConnectionRequest represents a new connection request.
type ConnectionRequest struct {
	AddresseeID uint `json:"addressee_id" validate:"required"`
}

// Request godoc
// @Summary Request a connection to another user
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ConnectionRequest true "Addressee"
// @Success 201 {object} model.Connection
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /connections [post]
func (h *ConnectionHandler) Request(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "missing bearer token",
			Code:  "MISSING_TOKEN",
		})
	}

	var req ConnectionRequest
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

	connection, err := h.connectionService.Request(c.Request().Context(), user.ID, req.AddresseeID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, connection)
}

// Accept godoc
// @Summary Accept a pending connection
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection ID"
// @Success 200 {object} model.Connection
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /connections/{id}/accept [post]
func (h *ConnectionHandler) Accept(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "missing bearer token",
			Code:  "MISSING_TOKEN",
		})
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	connection, err := h.connectionService.Accept(c.Request().Context(), id, user.ID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, connection)
}

// Decline godoc
// @Summary Decline a pending connection
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection ID"
// @Success 200 {object} model.Connection
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /connections/{id}/decline [post]
func (h *ConnectionHandler) Decline(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "missing bearer token",
			Code:  "MISSING_TOKEN",
		})
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	connection, err := h.connectionService.Decline(c.Request().Context(), id, user.ID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, connection)
}

// Remove godoc
// @Summary Remove a connection
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /connections/{id} [delete]
func (h *ConnectionHandler) Remove(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "missing bearer token",
			Code:  "MISSING_TOKEN",
		})
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.connectionService.Remove(c.Request().Context(), id, user.ID); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "connection removed successfully",
	})
}

// List godoc
// @Summary List the caller's connections
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status (pending, accepted, declined)"
// @Success 200 {array} model.Connection
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /connections [get]
func (h *ConnectionHandler) List(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "missing bearer token",
			Code:  "MISSING_TOKEN",
		})
	}

	var status model.ConnectionStatus
	switch raw := c.QueryParam("status"); raw {
	case "":
	case string(model.ConnectionStatusPending), string(model.ConnectionStatusAccepted), string(model.ConnectionStatusDeclined):
		status = model.ConnectionStatus(raw)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid status",
			Code:  "INVALID_STATUS",
		})
	}

	connections, err := h.connectionService.List(c.Request().Context(), user.ID, status)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, connections)
}

// ListPending godoc
// @Summary List pending connection requests addressed to the caller
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Connection
// @Failure 401 {object} errors.ErrorResponse
// @Router /connections/pending [get]
func (h *ConnectionHandler) ListPending(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "missing bearer token",
			Code:  "MISSING_TOKEN",
		})
	}

	connections, err := h.connectionService.ListPending(c.Request().Context(), user.ID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, connections)
}
