package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ribat/admissions/internal/app/models"
)

// ApplicationRepository stores admission applications.
// Implementations hand out copies; callers never share memory with the store.
type ApplicationRepository interface {
	// Create inserts a new application; the id must be unused
	Create(ctx context.Context, app *models.Application) error
	// GetByID returns apperrors.ErrApplicationNotFound when absent
	GetByID(ctx context.Context, id string) (*models.Application, error)
	// Update replaces the stored record if its updatedAt still equals expectedUpdatedAt,
	// otherwise it returns apperrors.ErrStaleApplication
	Update(ctx context.Context, app *models.Application, expectedUpdatedAt time.Time) error
	// Delete removes the application and reports whether it existed
	Delete(ctx context.Context, id string) (bool, error)
	// List returns the matching page sorted by createdAt descending plus the total match count
	List(ctx context.Context, filter models.ApplicationFilter) ([]*models.Application, int, error)
	// Stats counts applications by status
	Stats(ctx context.Context) (*models.Stats, error)
}

// IdentityRepository is the identity directory used by login and signup
type IdentityRepository interface {
	// GetByEmail returns apperrors.ErrUserNotFound when no identity has the email
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	// Create returns apperrors.ErrEmailAlreadyExists for a duplicate email
	Create(ctx context.Context, identity *models.Identity) error
}

// SessionSlot persists the signed-in identity between process runs
type SessionSlot interface {
	// Load returns nil without error when the slot is empty
	Load(ctx context.Context) (*models.Identity, error)
	Save(ctx context.Context, identity *models.Identity) error
	// Clear empties the slot; clearing an empty slot is not an error
	Clear(ctx context.Context) error
}

// Repositories holds all the repository instances
type Repositories struct {
	Applications ApplicationRepository
	Identities   IdentityRepository
}

// NewMemoryRepositories creates process-local repositories
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Applications: NewMemoryApplicationRepository(),
		Identities:   NewMemoryIdentityRepository(),
	}
}

// NewPostgresRepositories creates repositories backed by the pool
func NewPostgresRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		Applications: NewPostgresApplicationRepository(db),
		Identities:   NewPostgresIdentityRepository(db),
	}
}
