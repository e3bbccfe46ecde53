package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appAuth "github.com/ribat/admissions/internal/app/auth"
	"github.com/ribat/admissions/internal/app/models"
	"github.com/ribat/admissions/internal/middleware"
	"github.com/ribat/admissions/internal/pkg/auth"
	"github.com/ribat/admissions/internal/pkg/logger"
)

func newRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwt := auth.NewJWTService(auth.JWTConfig{SecretKey: "middleware-test", AccessTokenExp: time.Hour, TokenIssuer: "admissions-test"})
	authz, err := appAuth.NewAuthorizationService()
	require.NoError(t, err)
	m := middleware.NewAuthMiddleware(jwt, authz, logger.Nop())

	router := gin.New()
	staff := router.Group("/api/v1", m.JWTAuth(), m.PolicyRequired())
	whoami := func(c *gin.Context) {
		identity, ok := middleware.IdentityFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, identity)
	}
	staff.GET("/applications/stats", whoami)
	staff.POST("/applications/:id/approve", whoami)
	return router, jwt
}

func serve(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth_StoresIdentity(t *testing.T) {
	router, jwt := newRouter(t)

	token, _, err := jwt.GenerateAccessToken(&models.Identity{ID: "2", Email: "teacher@madrasa.pk", Name: "استاذ محترم", Role: models.RoleTeacher})
	require.NoError(t, err)

	rec := serve(router, http.MethodGet, "/api/v1/applications/stats", token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var identity models.Identity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &identity))
	assert.Equal(t, "2", identity.ID)
	assert.Equal(t, "teacher@madrasa.pk", identity.Email)
	assert.Equal(t, "استاذ محترم", identity.Name)
	assert.Equal(t, models.RoleTeacher, identity.Role)
}

func TestJWTAuth_RejectsMissingOrBadToken(t *testing.T) {
	router, _ := newRouter(t)

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/api/v1/applications/stats", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/api/v1/applications/stats", "garbage").Code)
}

func TestPolicyRequired(t *testing.T) {
	router, jwt := newRouter(t)

	teacher, _, err := jwt.GenerateAccessToken(&models.Identity{ID: "2", Email: "teacher@madrasa.pk", Role: models.RoleTeacher})
	require.NoError(t, err)
	admin, _, err := jwt.GenerateAccessToken(&models.Identity{ID: "1", Email: "admin@madrasa.pk", Role: models.RoleAdmin})
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodPost, "/api/v1/applications/7/approve", teacher).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/api/v1/applications/7/approve", admin).Code)
}

func TestIdentityFromContext_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := middleware.IdentityFromContext(c)
	assert.False(t, ok)
}
