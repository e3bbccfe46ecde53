// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/ribat/admissions/internal/app/models"
	"github.com/ribat/admissions/internal/app/models/dto"
	"github.com/ribat/admissions/internal/app/services"
	"github.com/ribat/admissions/internal/middleware"
	"github.com/ribat/admissions/internal/pkg/apperrors"
)

// AuthController exposes the session store over HTTP
type AuthController struct {
	sessionService *services.SessionService
	logger         zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(sessionService *services.SessionService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		sessionService: sessionService,
		logger:         logger.With().Str("controller", "auth").Logger(),
	}
}

func (c *AuthController) respondWithToken(ctx *gin.Context, status int, identity *models.Identity) {
	token, err := c.sessionService.IssueToken(identity)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to issue access token")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(status, dto.NewSuccessResponse(dto.AuthResponse{
		Token:    *token,
		Identity: dto.NewIdentityResponse(identity),
	}, ""))
}

// Login handles user login
// @Summary Sign in
// @Description Signs an identity in. Unknown but well-formed emails are signed in as students.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Invalid email or password"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid login request payload")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	identity, err := c.sessionService.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.respondWithToken(ctx, http.StatusOK, identity)
}

// Signup handles account creation
// @Summary Create an account
// @Description Creates an identity with the requested role and signs it in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.SignupRequest true "Account information"
// @Success 201 {object} dto.APIResponse{data=dto.AuthResponse} "Account created"
// @Failure 400 {object} dto.ErrorResponse "Invalid email or password (min 6 characters)"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /auth/signup [post]
func (c *AuthController) Signup(ctx *gin.Context) {
	var req dto.SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid signup request payload")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	identity, err := c.sessionService.Signup(ctx.Request.Context(), req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.respondWithToken(ctx, http.StatusCreated, identity)
}

// Logout handles sign out
// @Summary Sign out
// @Description Clears the current identity and the persisted session. Always succeeds.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.APIResponse "Signed out"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.sessionService.Logout(ctx.Request.Context()); err != nil {
		c.logger.Error().Err(err).Msg("Failed to sign out")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Signed out"))
}

// Me returns the current identity
// @Summary Current identity
// @Description Returns the signed-in identity with its derived role flags
// @Tags auth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.IdentityResponse}
// @Failure 401 {object} dto.ErrorResponse "No identity is signed in"
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	identity := c.sessionService.Current()
	if identity == nil {
		middleware.HandleAPIError(ctx, apperrors.ErrNotSignedIn)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewIdentityResponse(identity), ""))
}
