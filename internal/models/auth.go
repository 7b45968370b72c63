package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the JWT payload of inbound access tokens. Tokens are
// issued by the identity collaborator; this service only validates them and
// scopes every operation to the embedded tenant.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	TenantID string   `json:"tenant_id"`
	Role     UserRole `json:"role"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}
