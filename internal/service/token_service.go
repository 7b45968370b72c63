package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/darsa-app/darsa-api/internal/models"
	"github.com/darsa-app/darsa-api/pkg/config"
	appErrors "github.com/darsa-app/darsa-api/pkg/errors"
)

// TokenService validates access tokens minted by the identity provider.
// Tokens carry the tenant and role claims every request is scoped by.
type TokenService struct {
	secret   []byte
	issuer   string
	audience []string
}

// NewTokenService constructs a TokenService from JWT configuration.
func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *TokenService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	opts := []jwt.ParserOption{jwt.WithIssuer(s.issuer)}
	if len(s.audience) > 0 {
		opts = append(opts, jwt.WithAudience(s.audience[0]))
	}
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.TenantID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token missing tenant")
	}
	if !claims.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token carries unknown role")
	}

	return claims, nil
}

// GenerateToken signs an access token for the given identity. Used by local
// tooling and tests; production tokens come from the identity provider.
func (s *TokenService) GenerateToken(userID, tenantID string, role models.UserRole, fullName string, ttl time.Duration) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID:   userID,
		TenantID: tenantID,
		Role:     role,
		FullName: fullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			Audience:  s.audience,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
