package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
	ErrCodeValidationLength   = "ERR_VALIDATION_LENGTH"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// Client identity error codes
const (
	ErrCodeInvalidRut          = "ERR_INVALID_RUT"
	ErrCodeInvalidPhone        = "ERR_INVALID_PHONE"
	ErrCodeInvalidEmail        = "ERR_INVALID_EMAIL"
	ErrCodeInvalidBusinessName = "ERR_INVALID_BUSINESS_NAME"
	ErrCodeInvalidAddress      = "ERR_INVALID_ADDRESS"
	ErrCodeInvalidAmount       = "ERR_INVALID_AMOUNT"
	ErrCodeDuplicateRut        = "ERR_DUPLICATE_RUT"
)

// File error codes
const (
	ErrCodeImportInvalidFile = "ERR_IMPORT_INVALID_FILE"
	ErrCodeImportTooLarge    = "ERR_IMPORT_FILE_TOO_LARGE"
	ErrCodeImportColumns     = "ERR_IMPORT_MISSING_COLUMNS"
	ErrCodeImportRejected    = "ERR_IMPORT_REJECTED"
	ErrCodeStorageDisabled   = "ERR_STORAGE_DISABLED"
	ErrCodeExportFormat      = "ERR_EXPORT_FORMAT"
	ErrCodePrintingDisabled  = "ERR_PRINTING_DISABLED"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationLength:   http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	ErrCodeInvalidRut:          http.StatusBadRequest,
	ErrCodeInvalidPhone:        http.StatusBadRequest,
	ErrCodeInvalidEmail:        http.StatusBadRequest,
	ErrCodeInvalidBusinessName: http.StatusBadRequest,
	ErrCodeInvalidAddress:      http.StatusBadRequest,
	ErrCodeInvalidAmount:       http.StatusBadRequest,
	ErrCodeDuplicateRut:        http.StatusConflict,

	ErrCodeImportInvalidFile: http.StatusBadRequest,
	ErrCodeImportTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeImportColumns:     http.StatusBadRequest,
	ErrCodeImportRejected:    http.StatusUnprocessableEntity,
	ErrCodeStorageDisabled:   http.StatusServiceUnavailable,
	ErrCodeExportFormat:      http.StatusBadRequest,
	ErrCodePrintingDisabled:  http.StatusServiceUnavailable,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                 ErrCodeNotFound,
	"ALREADY_EXISTS":            ErrCodeAlreadyExists,
	"INVALID_INPUT":             ErrCodeInvalidInput,
	"INVALID_STATE":             ErrCodeInvalidState,
	"UNAUTHORIZED":              ErrCodeUnauthorized,
	"FORBIDDEN":                 ErrCodeForbidden,
	"VALIDATION_ERROR":          ErrCodeValidation,
	"BAD_REQUEST":               ErrCodeBadRequest,
	"INTERNAL_ERROR":            ErrCodeInternal,
	"INVALID_RUT":               ErrCodeInvalidRut,
	"INVALID_PHONE":             ErrCodeInvalidPhone,
	"INVALID_EMAIL":             ErrCodeInvalidEmail,
	"INVALID_BUSINESS_NAME":     ErrCodeInvalidBusinessName,
	"INVALID_ADDRESS":           ErrCodeInvalidAddress,
	"INVALID_AMOUNT":            ErrCodeInvalidAmount,
	"DUPLICATE_RUT":             ErrCodeDuplicateRut,
	"STORAGE_DISABLED":          ErrCodeStorageDisabled,
	"UNSUPPORTED_EXPORT_FORMAT": ErrCodeExportFormat,
	"PRINTING_DISABLED":         ErrCodePrintingDisabled,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes that are already in the API format or unknown are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
