package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pymeboard/backend/internal/domain/shared/valueobject"
	"github.com/pymeboard/backend/internal/interfaces/http/dto"
)

// RequestIDKey is the gin context key for the request id
const RequestIDKey = "request_id"

// SetupValidator registers the json field names and the rut and cl_mobile tags
// on gin's validator engine.
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterValidations(v)
	}
}

// RegisterValidations installs the custom tags on v
func RegisterValidations(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation("rut", validateRutTag)
	_ = v.RegisterValidation("cl_mobile", validateMobileTag)
}

func validateRutTag(fl validator.FieldLevel) bool {
	return valueobject.ValidateRut(fl.Field().String())
}

// cl_mobile accepts any notation NormalizePhone turns into +569XXXXXXXX
func validateMobileTag(fl validator.FieldLevel) bool {
	return valueobject.IsValidChileanMobile(valueobject.NormalizePhone(fl.Field().String()))
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse(
		"Request validation failed",
		requestID,
		details,
	)
}

// HandleValidationError returns a validation error response
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

// GetRequestID returns the request id set by RequestID, falling back to the header
func GetRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDHeader)
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "Este campo es obligatorio"
	case "email":
		return "Correo electrónico inválido"
	case "rut":
		return "RUT inválido"
	case "cl_mobile":
		return "El teléfono debe ser un móvil chileno (+569XXXXXXXX)"
	case "min":
		if e.Kind() == reflect.String {
			return "Debe tener al menos " + e.Param() + " caracteres"
		}
		return "Debe ser al menos " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Debe tener como máximo " + e.Param() + " caracteres"
		}
		return "Debe ser como máximo " + e.Param()
	case "uuid":
		return "UUID inválido"
	case "oneof":
		return "Debe ser uno de: " + e.Param()
	case "gt":
		return "Debe ser mayor que " + e.Param()
	case "gte":
		return "Debe ser mayor o igual a " + e.Param()
	default:
		return "Valor inválido"
	}
}
