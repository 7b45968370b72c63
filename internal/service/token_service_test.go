package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darsa-app/darsa-api/internal/models"
	"github.com/darsa-app/darsa-api/pkg/config"
	appErrors "github.com/darsa-app/darsa-api/pkg/errors"
)

func tokenConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "darsa-api", Audience: []string{"darsa-app"}}
}

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService(tokenConfig())

	token, err := svc.GenerateToken("user-1", "tenant-1", models.RoleTeacher, "Tri Wibowo", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "tenant-1", claims.TenantID)
	assert.Equal(t, models.RoleTeacher, claims.Role)
}

func TestTokenServiceRejectsExpired(t *testing.T) {
	svc := NewTokenService(tokenConfig())

	token, err := svc.GenerateToken("user-1", "tenant-1", models.RoleTeacher, "Tri Wibowo", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestTokenServiceRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenService(config.JWTConfig{Secret: "other-secret", Issuer: "darsa-api", Audience: []string{"darsa-app"}})
	token, err := issuer.GenerateToken("user-1", "tenant-1", models.RoleAdmin, "Admin", time.Hour)
	require.NoError(t, err)

	svc := NewTokenService(tokenConfig())
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}

func TestTokenServiceRejectsMissingTenant(t *testing.T) {
	svc := NewTokenService(tokenConfig())
	token, err := svc.GenerateToken("user-1", "", models.RoleTeacher, "Tri Wibowo", time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
