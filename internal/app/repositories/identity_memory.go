package repositories

import (
	"context"
	"strings"
	"sync"

	"github.com/ribat/admissions/internal/app/models"
	"github.com/ribat/admissions/internal/pkg/apperrors"
)

// MemoryIdentityRepository is an in-process identity directory keyed by lower-cased email
type MemoryIdentityRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*models.Identity
}

// NewMemoryIdentityRepository creates an empty directory
func NewMemoryIdentityRepository() *MemoryIdentityRepository {
	return &MemoryIdentityRepository{
		byEmail: make(map[string]*models.Identity),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetByEmail looks an identity up by email
func (r *MemoryIdentityRepository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	identity, ok := r.byEmail[emailKey(email)]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return identity.Clone(), nil
}

// Create stores identity unless the email is taken
func (r *MemoryIdentityRepository) Create(ctx context.Context, identity *models.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := emailKey(identity.Email)
	if _, exists := r.byEmail[key]; exists {
		return apperrors.ErrEmailAlreadyExists
	}
	r.byEmail[key] = identity.Clone()
	return nil
}
