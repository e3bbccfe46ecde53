package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	appAuth "github.com/ribat/admissions/internal/app/auth"
	"github.com/ribat/admissions/internal/app/models"
	"github.com/ribat/admissions/internal/app/models/dto"
	"github.com/ribat/admissions/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextIdentityID = "identityID"
	ContextRole       = "role"
	ContextIdentity   = "identity"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	authz      *appAuth.AuthorizationService
	logger     zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, authz *appAuth.AuthorizationService, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		authz:      authz,
		logger:     logger.With().Str("component", "auth_middleware").Logger(),
	}
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	errorDetail := dto.NewErrorDetail(code, "Authentication required").WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

// tokenFromRequest reads the bearer token from the header, falling back to the
// "token" query parameter which browsers use for websocket upgrades
func tokenFromRequest(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		authHeader = c.Query("token")
	}
	authHeader = strings.Trim(strings.TrimSpace(authHeader), "\"'")
	return auth.ExtractBearerToken(authHeader)
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := tokenFromRequest(c)
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing")
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrorCodeExpiredToken, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrorCodeInvalidToken, "Invalid token")
			return
		}

		c.Set(ContextIdentityID, claims.IdentityID)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextIdentity, claims.Identity())

		c.Next()
	}
}

// IdentityFromContext returns the signed-in identity stored by JWTAuth
func IdentityFromContext(c *gin.Context) (*models.Identity, bool) {
	value, exists := c.Get(ContextIdentity)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*models.Identity)
	return identity, ok && identity != nil
}

// RoleFromContext returns the role stored by JWTAuth
func RoleFromContext(c *gin.Context) (models.Role, bool) {
	value, exists := c.Get(ContextRole)
	if !exists {
		return "", false
	}
	role, ok := value.(models.Role)
	return role, ok
}

// PolicyRequired checks the RBAC policy for the caller's role, the request path and method
func (m *AuthMiddleware) PolicyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User role not found")
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		allowed, err := m.authz.Authorize(role, route, c.Request.Method)
		if err != nil {
			m.logger.Error().Err(err).Msg("RBAC check failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
			return
		}
		if !allowed {
			m.logger.Info().Str("role", string(role)).Str("route", route).Str("method", c.Request.Method).Msg("RBAC denied")
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("You don't have sufficient permissions for this operation")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
			return
		}

		c.Next()
	}
}
