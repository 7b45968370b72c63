package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darsa-app/darsa-api/internal/models"
	"github.com/darsa-app/darsa-api/internal/service"
	"github.com/darsa-app/darsa-api/pkg/config"
)

func testTokenService() *service.TokenService {
	return service.NewTokenService(config.JWTConfig{Secret: "test-secret", Issuer: "darsa-api", Audience: []string{"darsa-app"}})
}

func protectedRouter(tokens *service.TokenService, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/", JWT(tokens))
	if len(roles) > 0 {
		group.Use(RequireRoles(roles...))
	}
	group.GET("/ping", func(c *gin.Context) {
		claims := c.MustGet(ContextUserKey).(*models.JWTClaims)
		c.JSON(http.StatusOK, gin.H{"tenant": claims.TenantID})
	})
	return r
}

func TestJWTMissingHeader(t *testing.T) {
	r := protectedRouter(testTokenService())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTMalformedHeader(t *testing.T) {
	r := protectedRouter(testTokenService())
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTValidTokenPasses(t *testing.T) {
	tokens := testTokenService()
	token, err := tokens.GenerateToken("teacher-1", "tenant-1", models.RoleTeacher, "Tri Wibowo", time.Hour)
	require.NoError(t, err)

	r := protectedRouter(tokens)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tenant-1")
}

func TestRequireRolesForbidsOtherRole(t *testing.T) {
	tokens := testTokenService()
	token, err := tokens.GenerateToken("teacher-1", "tenant-1", models.RoleTeacher, "Tri Wibowo", time.Hour)
	require.NoError(t, err)

	r := protectedRouter(tokens, models.RoleAdmin)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	tokens := testTokenService()
	token, err := tokens.GenerateToken("admin-1", "tenant-1", models.RoleAdmin, "Admin", time.Hour)
	require.NoError(t, err)

	r := protectedRouter(tokens, models.RoleAdmin)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
