// Package handler holds the gin handlers of the HTTP API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pymeboard/backend/internal/domain/shared"
	csvimport "github.com/pymeboard/backend/internal/infrastructure/import"
	"github.com/pymeboard/backend/internal/infrastructure/logger"
	"github.com/pymeboard/backend/internal/interfaces/http/dto"
	"github.com/pymeboard/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// errNoIdentity is returned when a protected handler runs without JWTAuth
var errNoIdentity = errors.New("caller identity not found in context")

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return middleware.GetRequestID(c)
}

// getOrganizationID returns the organization of the authenticated caller
func getOrganizationID(c *gin.Context) (uuid.UUID, error) {
	orgID, ok := middleware.GetOrganizationID(c)
	if !ok || orgID == uuid.Nil {
		return uuid.Nil, errNoIdentity
	}
	return orgID, nil
}

// getUserID returns the authenticated caller
func getUserID(c *gin.Context) (uuid.UUID, error) {
	userID, ok := middleware.GetUserID(c)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, errNoIdentity
	}
	return userID, nil
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError maps domain and import errors to HTTP responses.
// Anything unknown is logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := getRequestID(c)

	if domainErr, ok := shared.AsDomainError(err); ok {
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, domainErr.Message, requestID))
		return
	}

	var missing *csvimport.MissingColumnsError
	switch {
	case errors.Is(err, errNoIdentity):
		h.Unauthorized(c, "Autenticación requerida")
	case errors.Is(err, csvimport.ErrFileTooLarge):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeImportTooLarge,
			"El archivo supera el tamaño máximo permitido")
	case errors.As(err, &missing):
		resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeImportColumns, "Faltan columnas obligatorias", requestID)
		resp.Error.Details = missingColumnDetails(missing.Columns)
		c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, csvimport.ErrEmptyFile),
		errors.Is(err, csvimport.ErrNoDataRows),
		errors.Is(err, csvimport.ErrMissingHeader):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeImportInvalidFile, "El archivo no contiene datos")
	case errors.Is(err, csvimport.ErrInvalidEncoding):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeImportInvalidFile, "El archivo debe estar codificado en UTF-8")
	default:
		logger.FromContext(c.Request.Context()).Error("Unhandled request error",
			zap.Error(err),
			zap.String("path", c.FullPath()),
		)
		h.InternalError(c, "Ocurrió un error inesperado")
	}
}

func missingColumnDetails(columns []string) []dto.ValidationDetail {
	details := make([]dto.ValidationDetail, len(columns))
	for i, col := range columns {
		details[i] = dto.ValidationDetail{
			Field:   col,
			Tag:     "required",
			Message: "La columna '" + col + "' es obligatoria",
		}
	}
	return details
}
