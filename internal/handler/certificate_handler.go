package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/alexmeleta/compliance-mait-api/internal/auth"
	"github.com/alexmeleta/compliance-mait-api/internal/errors"
	"github.com/alexmeleta/compliance-mait-api/internal/model"
	"github.com/alexmeleta/compliance-mait-api/internal/service"
)

// CertificateHandler handles certificate endpoints.
type CertificateHandler struct {
	certificateService service.CertificateService
}

// NewCertificateHandler creates a new certificate handler.
func NewCertificateHandler(certificateService service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificateService: certificateService}
}

// CertificateRequest represents the writable certificate fields.
type CertificateRequest struct {
	Title          string     `json:"title" validate:"required"`
	Number         string     `json:"number"`
	Authority      string     `json:"authority"`
	JurisdictionID *uint      `json:"jurisdiction_id"`
	IssuedAt       *time.Time `json:"issued_at"`
	ExpiresAt      *time.Time `json:"expires_at"`
	Credits        string     `json:"credits"`
	AttachmentID   *uint      `json:"attachment_id"`
}

// CertificateResponse decorates a certificate with its derived status.
type CertificateResponse struct {
	*model.Certificate
	Status model.CertificateStatus `json:"status"`
}

func newCertificateResponse(certificate *model.Certificate) CertificateResponse {
	return CertificateResponse{
		Certificate: certificate,
		Status:      certificate.Status(time.Now()),
	}
}

func newCertificateListResponse(certificates []model.Certificate) []CertificateResponse {
	now := time.Now()
	out := make([]CertificateResponse, 0, len(certificates))
	for i := range certificates {
		out = append(out, CertificateResponse{
			Certificate: &certificates[i],
			Status:      certificates[i].Status(now),
		})
	}
	return out
}

func (r *CertificateRequest) toInput() (service.CertificateInput, error) {
	credits := decimal.Zero
	if r.Credits != "" {
		parsed, err := decimal.NewFromString(r.Credits)
		if err != nil {
			return service.CertificateInput{}, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "invalid credits",
				Code:  "INVALID_CREDITS",
			})
		}
		credits = parsed
	}

	return service.CertificateInput{
		Title:          r.Title,
		Number:         r.Number,
		Authority:      r.Authority,
		JurisdictionID: r.JurisdictionID,
		IssuedAt:       r.IssuedAt,
		ExpiresAt:      r.ExpiresAt,
		Credits:        credits,
		AttachmentID:   r.AttachmentID,
	}, nil
}

// Create godoc
// @Summary Create a certificate
// @Tags certificates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CertificateRequest true "Certificate data"
// @Success 201 {object} CertificateResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /certificates [post]
func (h *CertificateHandler) Create(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "missing bearer token",
			Code:  "MISSING_TOKEN",
		})
	}

	var req CertificateRequest
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

	in, err := req.toInput()
	if err != nil {
		return err
	}

	certificate, err := h.certificateService.Create(c.Request().Context(), user.ID, in)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, newCertificateResponse(certificate))
}

// ListMine godoc
// @Summary List the caller's certificates
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Success 200 {array} CertificateResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /certificates [get]
func (h *CertificateHandler) ListMine(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "missing bearer token",
			Code:  "MISSING_TOKEN",
		})
	}

	certificates, err := h.certificateService.ListByUser(c.Request().Context(), user.ID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, newCertificateListResponse(certificates))
}

// ListByUser godoc
// @Summary List a user's certificates
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {array} CertificateResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users/{id}/certificates [get]
func (h *CertificateHandler) ListByUser(c echo.Context) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	certificates, err := h.certificateService.ListByUser(c.Request().Context(), userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, newCertificateListResponse(certificates))
}

// ListExpiring godoc
// @Summary List the caller's certificates expiring soon
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param days query int false "Lead time in days (default 30)"
// @Success 200 {array} CertificateResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /certificates/expiring [get]
func (h *CertificateHandler) ListExpiring(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "missing bearer token",
			Code:  "MISSING_TOKEN",
		})
	}

	days := 0
	if raw := c.QueryParam("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "invalid days",
				Code:  "INVALID_DAYS",
			})
		}
		days = parsed
	}

	certificates, err := h.certificateService.ListExpiring(c.Request().Context(), user.ID, days)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, newCertificateListResponse(certificates))
}

// Get godoc
// @Summary Get certificate by id
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Success 200 {object} CertificateResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /certificates/{id} [get]
func (h *CertificateHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	certificate, err := h.certificateService.Get(c.Request().Context(), id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, newCertificateResponse(certificate))
}

// Update godoc
// @Summary Update a certificate
// @Tags certificates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Param request body CertificateRequest true "Certificate data"
// @Success 200 {object} CertificateResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /certificates/{id} [put]
func (h *CertificateHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req CertificateRequest
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

	in, err := req.toInput()
	if err != nil {
		return err
	}

	certificate, err := h.certificateService.Update(c.Request().Context(), id, in)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, newCertificateResponse(certificate))
}

// Delete godoc
// @Summary Delete a certificate
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Certificate ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /certificates/{id} [delete]
func (h *CertificateHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.certificateService.Delete(c.Request().Context(), id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "certificate deleted successfully",
	})
}
