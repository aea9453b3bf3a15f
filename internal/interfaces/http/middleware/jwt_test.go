package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pymeboard/backend/internal/infrastructure/auth"
	"github.com/pymeboard/backend/internal/infrastructure/config"
	"github.com/pymeboard/backend/internal/infrastructure/logger"
	"github.com/pymeboard/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-key-at-least-32-chars",
		Issuer:            "pymeboard-auth",
		OrganizationClaim: "organization_id",
	}
}

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	router := gin.New()
	router.Use(RequestID(), JWTAuth(auth.NewTokenVerifier(testJWTConfig()), nil))
	router.GET("/me", func(c *gin.Context) {
		orgID, ok := GetOrganizationID(c)
		require.True(t, ok)
		userID, ok := GetUserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{
			"organization_id": orgID.String(),
			"user_id":         userID.String(),
			"logger_org":      logger.GetOrganizationID(c.Request.Context()),
		})
	})
	return router
}

func TestJWTAuth(t *testing.T) {
	router := newAuthRouter(t)
	signer := auth.NewTokenSigner(testJWTConfig())
	userID := uuid.New()
	orgID := uuid.New()

	t.Run("accepts a valid token", func(t *testing.T) {
		token, err := signer.Sign(userID, orgID, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, orgID.String(), body["organization_id"])
		assert.Equal(t, userID.String(), body["user_id"])
		assert.Equal(t, orgID.String(), body["logger_org"])
	})

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{name: "missing header", header: "", code: dto.ErrCodeUnauthorized},
		{name: "not bearer", header: "Basic abc", code: dto.ErrCodeUnauthorized},
		{name: "empty token", header: "Bearer ", code: dto.ErrCodeUnauthorized},
		{name: "garbage token", header: "Bearer not.a.token", code: dto.ErrCodeUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(AuthHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
		})
	}

	t.Run("expired token", func(t *testing.T) {
		token, err := signer.Sign(userID, orgID, -time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeTokenExpired, resp.Error.Code)
		assert.Equal(t, "La sesión ha expirado", resp.Error.Message)
	})
}

func TestGetOrganizationID_WithoutAuth(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetOrganizationID(c)
	assert.False(t, ok)
	_, ok = GetUserID(c)
	assert.False(t, ok)
}
