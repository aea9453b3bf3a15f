package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pymeboard/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrExpiredToken        = errors.New("token has expired")
	ErrTokenNotYetValid    = errors.New("token is not yet valid")
	ErrInvalidClaims       = errors.New("invalid token claims")
	ErrMissingUserID       = errors.New("missing sub in claims")
	ErrMissingOrganization = errors.New("missing organization in claims")
)

// Identity is the caller extracted from a verified token
type Identity struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	TokenID        string
	ExpiresAt      time.Time
}

// TokenVerifier verifies HS256 tokens issued by the identity provider.
// The user is taken from "sub" and the organization from a configurable claim.
type TokenVerifier struct {
	secret   []byte
	issuer   string
	audience string
	orgClaim string
	leeway   time.Duration
	now      func() time.Time
}

// NewTokenVerifier creates a verifier from JWT configuration
func NewTokenVerifier(cfg config.JWTConfig) *TokenVerifier {
	orgClaim := cfg.OrganizationClaim
	if orgClaim == "" {
		orgClaim = "organization_id"
	}
	return &TokenVerifier{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		orgClaim: orgClaim,
		leeway:   cfg.Leeway,
		now:      time.Now,
	}
}

// Verify parses and validates a token string
func (v *TokenVerifier) Verify(tokenString string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidClaims
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrMissingUserID
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidClaims
	}

	rawOrg, ok := claims[v.orgClaim].(string)
	if !ok || rawOrg == "" {
		return nil, ErrMissingOrganization
	}
	orgID, err := uuid.Parse(rawOrg)
	if err != nil || orgID == uuid.Nil {
		return nil, ErrInvalidClaims
	}

	identity := &Identity{UserID: userID, OrganizationID: orgID}
	if jti, ok := claims["jti"].(string); ok {
		identity.TokenID = jti
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		identity.ExpiresAt = exp.Time
	}
	return identity, nil
}

// TokenSigner issues tokens the verifier accepts. The identity provider owns
// token issuance in production; the signer backs local tooling and tests.
type TokenSigner struct {
	secret   []byte
	issuer   string
	audience string
	orgClaim string
}

// NewTokenSigner creates a signer sharing the verifier's configuration
func NewTokenSigner(cfg config.JWTConfig) *TokenSigner {
	orgClaim := cfg.OrganizationClaim
	if orgClaim == "" {
		orgClaim = "organization_id"
	}
	return &TokenSigner{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		orgClaim: orgClaim,
	}
}

// Sign issues a token for the user and organization valid for ttl
func (s *TokenSigner) Sign(userID, orgID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"jti":      uuid.New().String(),
		"sub":      userID.String(),
		"iat":      jwt.NewNumericDate(now),
		"nbf":      jwt.NewNumericDate(now),
		"exp":      jwt.NewNumericDate(now.Add(ttl)),
		s.orgClaim: orgID.String(),
	}
	if s.issuer != "" {
		claims["iss"] = s.issuer
	}
	if s.audience != "" {
		claims["aud"] = s.audience
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
