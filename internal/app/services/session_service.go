package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/ribat/admissions/internal/app/models"
	"github.com/ribat/admissions/internal/app/models/dto"
	"github.com/ribat/admissions/internal/app/repositories"
	"github.com/ribat/admissions/internal/pkg/apperrors"
	"github.com/ribat/admissions/internal/pkg/auth"
	"github.com/ribat/admissions/internal/pkg/helpers"
	"github.com/ribat/admissions/internal/pkg/validation"
)

// User-facing messages of the session store
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgInvalidSignup      = "Invalid email or password (min 6 characters)"
)

// SessionService holds the single signed-in identity of the running process.
//
// Login is a mock placeholder: any well-formed email with a long enough password
// is let in as a student. Identities created through Signup carry a bcrypt hash
// which is checked on later logins.
type SessionService struct {
	mu         sync.RWMutex
	current    *models.Identity
	identities repositories.IdentityRepository
	slot       repositories.SessionSlot
	jwtService *auth.JWTService
	logger     zerolog.Logger
	now        func() time.Time
}

// NewSessionService creates a new SessionService
func NewSessionService(
	identities repositories.IdentityRepository,
	slot repositories.SessionSlot,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) *SessionService {
	return &SessionService{
		identities: identities,
		slot:       slot,
		jwtService: jwtService,
		logger:     logger.With().Str("component", "session").Logger(),
		now:        time.Now,
	}
}

// Login signs an identity in
func (s *SessionService) Login(ctx context.Context, email, password string) (*models.Identity, error) {
	email = strings.TrimSpace(email)
	if !validation.IsValidPassword(password) {
		return nil, apperrors.NewInvalidCredentialsError(MsgInvalidCredentials)
	}

	identity, err := s.identities.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if identity.PasswordHash != "" && !auth.CheckPassword(identity.PasswordHash, password) {
			s.logger.Info().Str("email", email).Msg("Login rejected: password mismatch")
			return nil, apperrors.NewInvalidCredentialsError(MsgInvalidCredentials)
		}
	case errors.Is(err, apperrors.ErrUserNotFound):
		if !validation.LooksLikeEmail(email) {
			return nil, apperrors.NewInvalidCredentialsError(MsgInvalidCredentials)
		}
		identity = s.synthesizeStudent(email)
		s.logger.Debug().Str("email", email).Msg("Unknown email, signing in as student")
	default:
		return nil, fmt.Errorf("failed to look up identity: %w", err)
	}

	if err := s.setCurrent(ctx, identity); err != nil {
		return nil, err
	}
	s.logger.Info().Str("identityID", identity.ID).Str("role", string(identity.Role)).Msg("Signed in")
	return identity.Clone(), nil
}

func (s *SessionService) synthesizeStudent(email string) *models.Identity {
	name := email
	if at := strings.Index(email, "@"); at >= 0 {
		name = email[:at]
	}
	return &models.Identity{
		ID:        uuid.NewString(),
		Email:     email,
		Role:      models.RoleStudent,
		Name:      name,
		CreatedAt: helpers.Truncate(s.now()),
	}
}

// Signup creates an identity with the requested role and signs it in
func (s *SessionService) Signup(ctx context.Context, email, password, name string, role models.Role) (*models.Identity, error) {
	req := dto.SignupRequest{
		Email:    strings.TrimSpace(email),
		Password: password,
		Name:     strings.TrimSpace(name),
		Role:     role,
	}
	if err := validation.Struct(req); err != nil {
		var verr *apperrors.ValidationError
		if errors.As(err, &verr) {
			return nil, apperrors.NewValidationError(MsgInvalidSignup, verr.Fields)
		}
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	identity := &models.Identity{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Role:         req.Role,
		Name:         req.Name,
		CreatedAt:    helpers.Truncate(s.now()),
		PasswordHash: hash,
	}
	if err := s.identities.Create(ctx, identity); err != nil {
		return nil, err
	}

	if err := s.setCurrent(ctx, identity); err != nil {
		return nil, err
	}
	s.logger.Info().Str("identityID", identity.ID).Str("role", string(identity.Role)).Msg("Signed up")
	return identity.Clone(), nil
}

// Logout clears the current identity and the persisted slot. Safe to call when signed out.
func (s *SessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := s.slot.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session slot: %w", err)
	}
	return nil
}

// Restore loads the identity persisted by a previous run. A corrupt slot is cleared.
func (s *SessionService) Restore(ctx context.Context) error {
	identity, err := s.slot.Load(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrCorruptSlot) {
			s.logger.Warn().Err(err).Msg("Discarding unreadable session slot")
			return s.slot.Clear(ctx)
		}
		return fmt.Errorf("failed to restore session: %w", err)
	}

	s.mu.Lock()
	s.current = identity
	s.mu.Unlock()

	if identity != nil {
		s.logger.Info().Str("identityID", identity.ID).Msg("Session restored")
	}
	return nil
}

// Current returns a copy of the signed-in identity, or nil
func (s *SessionService) Current() *models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

func (s *SessionService) hasRole(role models.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil && s.current.Role == role
}

// IsAdmin reports whether the current identity is an admin
func (s *SessionService) IsAdmin() bool { return s.hasRole(models.RoleAdmin) }

// IsTeacher reports whether the current identity is a teacher
func (s *SessionService) IsTeacher() bool { return s.hasRole(models.RoleTeacher) }

// IsStudent reports whether the current identity is a student
func (s *SessionService) IsStudent() bool { return s.hasRole(models.RoleStudent) }

// IssueToken signs an access token for identity
func (s *SessionService) IssueToken(identity *models.Identity) (*dto.TokenResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateAccessToken(identity)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	}, nil
}

func (s *SessionService) setCurrent(ctx context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.slot.Save(ctx, identity); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	s.current = identity.Clone()
	return nil
}
