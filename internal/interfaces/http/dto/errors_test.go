package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeInvalidRut, http.StatusBadRequest},
		{ErrCodeInvalidPhone, http.StatusBadRequest},
		{ErrCodeInvalidEmail, http.StatusBadRequest},
		{ErrCodeDuplicateRut, http.StatusConflict},
		{ErrCodeImportTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeImportColumns, http.StatusBadRequest},
		{ErrCodeImportRejected, http.StatusUnprocessableEntity},
		{ErrCodeStorageDisabled, http.StatusServiceUnavailable},
		{ErrCodeExportFormat, http.StatusBadRequest},
		{ErrCodePrintingDisabled, http.StatusServiceUnavailable},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"INVALID_STATE", ErrCodeInvalidState},
		{"INVALID_RUT", ErrCodeInvalidRut},
		{"INVALID_PHONE", ErrCodeInvalidPhone},
		{"INVALID_BUSINESS_NAME", ErrCodeInvalidBusinessName},
		{"DUPLICATE_RUT", ErrCodeDuplicateRut},
		{"STORAGE_DISABLED", ErrCodeStorageDisabled},
		{"UNSUPPORTED_EXPORT_FORMAT", ErrCodeExportFormat},
		{"PRINTING_DISABLED", ErrCodePrintingDisabled},
		{ErrCodeNotFound, ErrCodeNotFound},
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestDomainCodesHaveStatus(t *testing.T) {
	for domainCode, apiCode := range DomainErrorCodeMapping {
		_, ok := ErrorCodeHTTPStatus[apiCode]
		assert.True(t, ok, "%s maps to %s which has no HTTP status", domainCode, apiCode)
	}
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1", []ValidationDetail{
		{Field: "rut", Tag: "rut", Message: "RUT inválido"},
	})

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, false, body["success"])
	errBody := body["error"].(map[string]any)
	assert.Equal(t, ErrCodeValidation, errBody["code"])
	assert.Equal(t, "req-1", errBody["request_id"])
	assert.Len(t, errBody["details"], 1)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a"}, 41, 2, 20)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	resp = NewSuccessResponseWithMeta(nil, 0, 1, 0)
	assert.Equal(t, 0, resp.Meta.TotalPages)
}
