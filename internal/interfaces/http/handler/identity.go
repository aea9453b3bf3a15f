package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/pymeboard/backend/internal/domain/shared/valueobject"
	"github.com/pymeboard/backend/internal/infrastructure/telemetry"
	"github.com/pymeboard/backend/internal/interfaces/http/middleware"
)

// IdentityHandler exposes the RUT and phone normalization rules so forms can
// check input before submitting it
type IdentityHandler struct {
	BaseHandler
	metrics *telemetry.IdentityMetrics
}

// NewIdentityHandler creates a new IdentityHandler. metrics may be nil.
func NewIdentityHandler(metrics *telemetry.IdentityMetrics) *IdentityHandler {
	return &IdentityHandler{metrics: metrics}
}

// IdentityValueRequest carries the raw user input
type IdentityValueRequest struct {
	Value string `json:"value" binding:"max=64" example:"12345678-5"`
}

// RutFormatResponse is the result of formatting a RUT
type RutFormatResponse struct {
	Clean     string `json:"clean" example:"123456785"`
	Formatted string `json:"formatted" example:"12.345.678-5"`
	Valid     bool   `json:"valid" example:"true"`
}

// RutValidateResponse is the result of validating a RUT. CheckDigit is the
// digit the body calls for, empty when the input has no numeric body.
type RutValidateResponse struct {
	Valid      bool   `json:"valid" example:"true"`
	CheckDigit string `json:"check_digit,omitempty" example:"5"`
}

// PhoneNormalizeResponse is the result of normalizing a phone number
type PhoneNormalizeResponse struct {
	Normalized    string `json:"normalized" example:"+56987654321"`
	Valid         bool   `json:"valid" example:"true"`
	International string `json:"international,omitempty" example:"+56 9 8765 4321"`
}

// FormatRut godoc
// @ID           formatRut
// @Summary      Format a RUT
// @Description  Cleans and formats a RUT as XX.XXX.XXX-X and reports whether it is valid
// @Tags         identity
// @Accept       json
// @Produce      json
// @Param        request body IdentityValueRequest true "Raw RUT"
// @Success      200 {object} APIResponse[RutFormatResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /identity/rut/format [post]
func (h *IdentityHandler) FormatRut(c *gin.Context) {
	var req IdentityValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	valid := valueobject.ValidateRut(req.Value)
	h.metrics.RecordRutCheck(c.Request.Context(), valid)

	h.Success(c, RutFormatResponse{
		Clean:     valueobject.CleanRut(req.Value),
		Formatted: valueobject.FormatRut(req.Value),
		Valid:     valid,
	})
}

// ValidateRut godoc
// @ID           validateRut
// @Summary      Validate a RUT
// @Description  Checks the Módulo 11 check digit of a RUT in any notation
// @Tags         identity
// @Accept       json
// @Produce      json
// @Param        request body IdentityValueRequest true "Raw RUT"
// @Success      200 {object} APIResponse[RutValidateResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /identity/rut/validate [post]
func (h *IdentityHandler) ValidateRut(c *gin.Context) {
	var req IdentityValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	valid := valueobject.ValidateRut(req.Value)
	h.metrics.RecordRutCheck(c.Request.Context(), valid)

	resp := RutValidateResponse{Valid: valid}
	if clean := valueobject.CleanRut(req.Value); len(clean) >= 2 {
		if digit, ok := valueobject.RutCheckDigit(clean[:len(clean)-1]); ok {
			resp.CheckDigit = digit
		}
	}
	h.Success(c, resp)
}

// NormalizePhone godoc
// @ID           normalizePhone
// @Summary      Normalize a phone number
// @Description  Converts a Chilean mobile number to +569XXXXXXXX and reports whether the result is valid
// @Tags         identity
// @Accept       json
// @Produce      json
// @Param        request body IdentityValueRequest true "Raw phone number"
// @Success      200 {object} APIResponse[PhoneNormalizeResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /identity/phone/normalize [post]
func (h *IdentityHandler) NormalizePhone(c *gin.Context) {
	var req IdentityValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	normalized := valueobject.NormalizePhone(req.Value)
	valid := valueobject.IsValidChileanMobile(normalized)
	h.metrics.RecordPhoneCheck(c.Request.Context(), valid)

	resp := PhoneNormalizeResponse{Normalized: normalized, Valid: valid}
	if valid {
		if phone, err := valueobject.NewMobilePhone(normalized); err == nil {
			resp.International = phone.International()
		}
	}
	h.Success(c, resp)
}
