package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/service"
)

// JurisdictionHandler handles jurisdiction reference-data endpoints.
type JurisdictionHandler struct {
	jurisdictionService service.JurisdictionService
}

// NewJurisdictionHandler creates a new jurisdiction handler.
func NewJurisdictionHandler(jurisdictionService service.JurisdictionService) *JurisdictionHandler {
	return &JurisdictionHandler{jurisdictionService: jurisdictionService}
}

// JurisdictionRequest represents the writable jurisdiction fields.
type JurisdictionRequest struct {
	Name   string `json:"name" validate:"required"`
	Code   string `json:"code" validate:"required,max=20"`
	Region string `json:"region"`
}

// List godoc
// @Summary List jurisdictions
// @Tags jurisdictions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Jurisdiction
// @Failure 401 {object} errors.ErrorResponse
// @Router /jurisdictions [get]
func (h *JurisdictionHandler) List(c echo.Context) error {
	jurisdictions, err := h.jurisdictionService.List(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, jurisdictions)
}

// Get godoc
// @Summary Get jurisdiction by id
// @Tags jurisdictions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Jurisdiction ID"
// @Success 200 {object} model.Jurisdiction
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /jurisdictions/{id} [get]
func (h *JurisdictionHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	jurisdiction, err := h.jurisdictionService.Get(c.Request().Context(), id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, jurisdiction)
}

// Create godoc
// @Summary Create a jurisdiction
// @Tags jurisdictions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body JurisdictionRequest true "Jurisdiction data"
// @Success 201 {object} model.Jurisdiction
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /jurisdictions [post]
func (h *JurisdictionHandler) Create(c echo.Context) error {
	var req JurisdictionRequest
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

	jurisdiction, err := h.jurisdictionService.Create(c.Request().Context(), service.JurisdictionInput{
		Name:   req.Name,
		Code:   req.Code,
		Region: req.Region,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, jurisdiction)
}

// Update godoc
// @Summary Update a jurisdiction
// @Tags jurisdictions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Jurisdiction ID"
// @Param request body JurisdictionRequest true "Jurisdiction data"
// @Success 200 {object} model.Jurisdiction
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /jurisdictions/{id} [put]
func (h *JurisdictionHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req JurisdictionRequest
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

	jurisdiction, err := h.jurisdictionService.Update(c.Request().Context(), id, service.JurisdictionInput{
		Name:   req.Name,
		Code:   req.Code,
		Region: req.Region,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, jurisdiction)
}

// Delete godoc
// @Summary Delete a jurisdiction
// @Tags jurisdictions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Jurisdiction ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /jurisdictions/{id} [delete]
func (h *JurisdictionHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.jurisdictionService.Delete(c.Request().Context(), id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "jurisdiction deleted successfully",
	})
}
