package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pymeboard/backend/internal/infrastructure/auth"
	"github.com/pymeboard/backend/internal/infrastructure/logger"
	"github.com/pymeboard/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Auth context keys
const (
	IdentityKey       = "auth_identity"
	UserIDKey         = "user_id"
	OrganizationIDKey = "organization_id"
	AuthHeaderKey     = "Authorization"
	BearerPrefix      = "Bearer "
)

// JWTAuth requires a valid bearer token and stores the caller identity.
// The organization and user ids are also put on the request logger.
func JWTAuth(verifier *auth.TokenVerifier, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Falta el encabezado de autorización")
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Formato de autorización inválido")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
		if token == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Falta el token")
			return
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			abortUnauthorized(c, log, err, authErrorMessage(err))
			return
		}

		c.Set(IdentityKey, identity)
		c.Set(UserIDKey, identity.UserID.String())
		c.Set(OrganizationIDKey, identity.OrganizationID.String())

		ctx := c.Request.Context()
		reqLog := logger.FromContext(ctx)
		ctx, reqLog = logger.WithUserID(ctx, reqLog, identity.UserID.String())
		ctx, _ = logger.WithOrganizationID(ctx, reqLog, identity.OrganizationID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func authErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "La sesión ha expirado"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		return "El token aún no es válido"
	case errors.Is(err, auth.ErrMissingOrganization):
		return "El token no indica una organización"
	default:
		return "Token inválido"
	}
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, message string) {
	log.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", GetRequestID(c)),
	)

	code := dto.ErrCodeUnauthorized
	if errors.Is(err, auth.ErrExpiredToken) {
		code = dto.ErrCodeTokenExpired
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetIdentity returns the identity stored by JWTAuth
func GetIdentity(c *gin.Context) (*auth.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*auth.Identity)
	return identity, ok && identity != nil
}

// GetOrganizationID returns the caller's organization
func GetOrganizationID(c *gin.Context) (uuid.UUID, bool) {
	identity, ok := GetIdentity(c)
	if !ok {
		return uuid.Nil, false
	}
	return identity.OrganizationID, true
}

// GetUserID returns the caller's user id
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	identity, ok := GetIdentity(c)
	if !ok {
		return uuid.Nil, false
	}
	return identity.UserID, true
}
