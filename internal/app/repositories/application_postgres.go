package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ribat/admissions/internal/app/models"
	"github.com/ribat/admissions/internal/pkg/apperrors"
	"github.com/ribat/admissions/internal/pkg/dberrors"
	"github.com/ribat/admissions/internal/pkg/helpers"
	"github.com/ribat/admissions/internal/pkg/logger"
)

const applicationsPKey = "applications_pkey"

var applicationColumns = []string{
	"id", "full_name", "father_name", "date_of_birth", "gender", "address",
	"phone_number", "previous_education", "class_applying_for", "id_number",
	"status", "roll_number", "section", "academic_year", "created_at", "updated_at",
}

// PostgresApplicationRepository handles application database operations
type PostgresApplicationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPostgresApplicationRepository creates a new PostgresApplicationRepository
func NewPostgresApplicationRepository(db *pgxpool.Pool) *PostgresApplicationRepository {
	return &PostgresApplicationRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new application
func (r *PostgresApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	query, args, err := r.sb.Insert("applications").
		Columns(applicationColumns...).
		Values(
			app.ID, app.FullName, app.FatherName, app.DateOfBirth, string(app.Gender), app.Address,
			app.PhoneNumber, app.PreviousEducation, app.ClassApplyingFor, app.IDNumber,
			string(app.Status), app.RollNumber, app.Section, app.AcademicYear, app.CreatedAt, app.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert application query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, applicationsPKey) {
			return apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, fmt.Sprintf("application %s already exists", app.ID))
		}
		logger.Error().Err(err).Str("applicationID", app.ID).Msg("Error inserting application")
		return fmt.Errorf("failed to insert application: %w", err)
	}
	return nil
}

// GetByID retrieves an application by ID
func (r *PostgresApplicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	query, args, err := r.sb.Select(applicationColumns...).
		From("applications").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}

	app, err := scanApplication(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("error retrieving application: %w", err)
	}
	return app, nil
}

// Update writes every mutable column, guarded by the updated_at the caller read
func (r *PostgresApplicationRepository) Update(ctx context.Context, app *models.Application, expectedUpdatedAt time.Time) error {
	query, args, err := r.sb.Update("applications").
		SetMap(map[string]interface{}{
			"full_name":          app.FullName,
			"father_name":        app.FatherName,
			"date_of_birth":      app.DateOfBirth,
			"gender":             string(app.Gender),
			"address":            app.Address,
			"phone_number":       app.PhoneNumber,
			"previous_education": app.PreviousEducation,
			"class_applying_for": app.ClassApplyingFor,
			"id_number":          app.IDNumber,
			"status":             string(app.Status),
			"roll_number":        app.RollNumber,
			"section":            app.Section,
			"academic_year":      app.AcademicYear,
			"updated_at":         app.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": app.ID, "updated_at": expectedUpdatedAt}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update application query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if dberrors.IsCheckViolation(err) {
			return apperrors.NewConflictError("application update violates a table constraint")
		}
		return fmt.Errorf("error updating application: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		// either gone or changed underneath us
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM applications WHERE id = $1)`, app.ID).Scan(&exists); err != nil {
			return fmt.Errorf("error checking application existence: %w", err)
		}
		if !exists {
			return apperrors.ErrApplicationNotFound
		}
		return apperrors.ErrStaleApplication
	}
	return nil
}

// Delete deletes an application by ID
func (r *PostgresApplicationRepository) Delete(ctx context.Context, id string) (bool, error) {
	query, args, err := r.sb.Delete("applications").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build delete application query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("error deleting application: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// likeEscaper makes LIKE wildcards in search text match literally, backslash being the default escape
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// applicationFilterCondition translates a filter into a WHERE clause
func applicationFilterCondition(filter models.ApplicationFilter) squirrel.And {
	where := squirrel.And{}
	if filter.Status != "" {
		where = append(where, squirrel.Eq{"status": string(filter.Status)})
	}
	if filter.ClassCode != "" {
		where = append(where, squirrel.Eq{"class_applying_for": filter.ClassCode})
	}
	if filter.Search != "" {
		pattern := "%" + likeEscaper.Replace(filter.Search) + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"full_name": pattern},
			squirrel.ILike{"father_name": pattern},
			squirrel.Like{"phone_number": pattern},
			squirrel.ILike{"roll_number": pattern},
		})
	}
	return where
}

// applicationOrderBy maps a list order to ORDER BY terms; seq is the insertion sequence
func applicationOrderBy(order models.ListOrder) []string {
	if order == models.OrderInserted {
		return []string{"seq ASC"}
	}
	return []string{"created_at DESC", "seq DESC"}
}

// List retrieves matching applications in the requested order
func (r *PostgresApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]*models.Application, int, error) {
	where := applicationFilterCondition(filter)

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("applications").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count applications query: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count applications query")
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}
	if total == 0 {
		return []*models.Application{}, 0, nil
	}

	selectBuilder := r.sb.Select(applicationColumns...).
		From("applications").
		Where(where).
		OrderBy(applicationOrderBy(filter.Order)...)
	if filter.Size > 0 {
		offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)
		selectBuilder = selectBuilder.Limit(uint64(limit)).Offset(offset)
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list applications query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list applications query")
		return nil, 0, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan application row: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}

// Stats counts applications per status in one pass
func (r *PostgresApplicationRepository) Stats(ctx context.Context) (*models.Stats, error) {
	query, args, err := r.sb.Select(
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE status = 'pending')",
		"COUNT(*) FILTER (WHERE status = 'approved')",
		"COUNT(*) FILTER (WHERE status = 'rejected')",
	).From("applications").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build stats query: %w", err)
	}

	stats := &models.Stats{}
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&stats.TotalStudents,
		&stats.PendingAdmissions,
		&stats.ApprovedStudents,
		&stats.RejectedStudents,
	); err != nil {
		return nil, fmt.Errorf("failed to compute application stats: %w", err)
	}
	return stats, nil
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	var (
		app            models.Application
		gender, status string
	)
	err := row.Scan(
		&app.ID, &app.FullName, &app.FatherName, &app.DateOfBirth, &gender, &app.Address,
		&app.PhoneNumber, &app.PreviousEducation, &app.ClassApplyingFor, &app.IDNumber,
		&status, &app.RollNumber, &app.Section, &app.AcademicYear, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	app.Gender = models.Gender(gender)
	app.Status = models.ApplicationStatus(status)
	app.CreatedAt = app.CreatedAt.UTC()
	app.UpdatedAt = app.UpdatedAt.UTC()
	return &app, nil
}
