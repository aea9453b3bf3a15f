package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pymeboard/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactRequest struct {
	Rut   string `json:"rut" validate:"required,rut"`
	Phone string `json:"phone" validate:"omitempty,cl_mobile"`
}

func TestRegisterValidations(t *testing.T) {
	v := validator.New()
	RegisterValidations(v)

	tests := []struct {
		name  string
		req   contactRequest
		valid bool
	}{
		{"formatted rut", contactRequest{Rut: "12.345.678-5"}, true},
		{"clean rut with K", contactRequest{Rut: "10000013k"}, true},
		{"whitelisted 1-9", contactRequest{Rut: "1-9"}, true},
		{"wrong check digit", contactRequest{Rut: "12.345.678-9"}, false},
		{"mobile in national form", contactRequest{Rut: "11.111.111-1", Phone: "9 8765 4321"}, true},
		{"mobile in e164", contactRequest{Rut: "11.111.111-1", Phone: "+56987654321"}, true},
		{"landline", contactRequest{Rut: "11.111.111-1", Phone: "+56221234567"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestHandleValidationError(t *testing.T) {
	type createRequest struct {
		BusinessName string `json:"business_name" binding:"required,max=200"`
		Rut          string `json:"rut" binding:"required,rut"`
		Phone        string `json:"phone" binding:"omitempty,cl_mobile"`
	}

	SetupValidator()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req createRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	t.Run("reports every invalid field by json name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test",
			strings.NewReader(`{"rut": "12.345.678-9", "phone": "221234567"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(RequestIDHeader, "req-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-42", resp.Error.RequestID)

		byField := map[string]dto.ValidationDetail{}
		for _, d := range resp.Error.Details {
			byField[d.Field] = d
		}
		assert.Equal(t, "required", byField["business_name"].Tag)
		assert.Equal(t, "RUT inválido", byField["rut"].Message)
		assert.Equal(t, "cl_mobile", byField["phone"].Tag)
	})

	t.Run("valid body passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/test",
			strings.NewReader(`{"business_name": "Andes", "rut": "12345678-5", "phone": "987654321"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
