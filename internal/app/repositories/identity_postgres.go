package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ribat/admissions/internal/app/models"
	"github.com/ribat/admissions/internal/pkg/apperrors"
	"github.com/ribat/admissions/internal/pkg/dberrors"
)

const identitiesEmailKey = "identities_email_key"

// PostgresIdentityRepository stores identities in the identities table
type PostgresIdentityRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPostgresIdentityRepository creates a new PostgresIdentityRepository
func NewPostgresIdentityRepository(db *pgxpool.Pool) *PostgresIdentityRepository {
	return &PostgresIdentityRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByEmail retrieves an identity by email, ignoring case
func (r *PostgresIdentityRepository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	query, args, err := r.sb.Select("id", "email", "role", "name", "password_hash", "created_at").
		From("identities").
		Where(squirrel.Eq{"email": strings.ToLower(strings.TrimSpace(email))}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get identity query: %w", err)
	}

	var (
		identity models.Identity
		role     string
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&identity.ID, &identity.Email, &role, &identity.Name, &identity.PasswordHash, &identity.CreatedAt,
	)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving identity: %w", err)
	}
	identity.Role = models.Role(role)
	identity.CreatedAt = identity.CreatedAt.UTC()
	return &identity, nil
}

// Create inserts an identity
func (r *PostgresIdentityRepository) Create(ctx context.Context, identity *models.Identity) error {
	query, args, err := r.sb.Insert("identities").
		Columns("id", "email", "role", "name", "password_hash", "created_at").
		Values(
			identity.ID, strings.ToLower(strings.TrimSpace(identity.Email)), string(identity.Role),
			identity.Name, identity.PasswordHash, identity.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert identity query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, identitiesEmailKey) {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to insert identity: %w", err)
	}
	return nil
}
