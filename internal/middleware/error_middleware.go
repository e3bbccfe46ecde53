package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/ribat/admissions/internal/app/models/dto"
	"github.com/ribat/admissions/internal/pkg/apperrors"
)

// messageOf prefers the CustomError message over the generic fallback
func messageOf(err error, fallback string) string {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	return fallback
}

func abortWith(c *gin.Context, status int, detail *dto.ErrorDetail) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// HandleAPIError maps service errors to HTTP status codes and the error envelope
func HandleAPIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		abortWith(c, http.StatusBadRequest, dto.HandleValidationError(err))
	case errors.Is(err, apperrors.ErrBadRequest):
		abortWith(c, http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeBadRequest, messageOf(err, "Bad request")))
	case errors.Is(err, apperrors.ErrResourceNotFound), errors.Is(err, apperrors.ErrUserNotFound):
		abortWith(c, http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, messageOf(err, "Resource not found")))
	case errors.Is(err, apperrors.ErrNotSignedIn):
		abortWith(c, http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "No identity is signed in"))
	case errors.Is(err, apperrors.ErrPermissionDenied):
		abortWith(c, http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, messageOf(err, "Permission denied")))
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		abortWith(c, http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, messageOf(err, "Invalid credentials")))
	case errors.Is(err, apperrors.ErrTokenExpired):
		abortWith(c, http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired"))
	case errors.Is(err, apperrors.ErrTokenInvalid):
		abortWith(c, http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token"))
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		abortWith(c, http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Email already exists").WithField("email"))
	case errors.Is(err, apperrors.ErrResourceAlreadyExists):
		abortWith(c, http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, messageOf(err, "Resource already exists")))
	case errors.Is(err, apperrors.ErrConflict):
		abortWith(c, http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConflict, messageOf(err, "Conflict")))
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Unhandled API error")
		abortWith(c, http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"))
	}
}

// RequestLogger logs one line per request with the global zerolog logger
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("clientIP", c.ClientIP()).
			Msg("HTTP request")
	}
}
