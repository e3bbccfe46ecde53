package seed

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/ribat/admissions/internal/app/models"
	appRepos "github.com/ribat/admissions/internal/app/repositories"
	"github.com/ribat/admissions/internal/pkg/apperrors"
	"github.com/ribat/admissions/internal/pkg/helpers"
)

// Options selects what CreateDefaultData writes
type Options struct {
	SampleApplications bool
	Now                func() time.Time
}

// DefaultIdentities are the staff accounts of the directory. They carry no password hash.
func DefaultIdentities(now time.Time) []*models.Identity {
	now = helpers.Truncate(now)
	return []*models.Identity{
		{ID: "1", Email: "admin@madrasa.pk", Role: models.RoleAdmin, Name: "مدیر اعلیٰ", CreatedAt: now},
		{ID: "2", Email: "teacher@madrasa.pk", Role: models.RoleTeacher, Name: "استاذ محترم", CreatedAt: now},
	}
}

func date(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t.UTC()
}

func ptr(s string) *string { return &s }

// SampleApplications returns the demo applications shown on a fresh dashboard
func SampleApplications() []*models.Application {
	return []*models.Application{
		{
			ID:                "1",
			FullName:          "محمد احمد",
			FatherName:        "محمد علی",
			DateOfBirth:       "2010-05-15",
			Gender:            models.GenderMale,
			Address:           "رباط دیر، خیبر پختونخواہ",
			PhoneNumber:       "03001234567",
			PreviousEducation: "پرائمری پاس",
			ClassApplyingFor:  "hifz",
			Status:            models.StatusApproved,
			RollNumber:        ptr("H-001"),
			Section:           ptr("A"),
			AcademicYear:      "2024-2025",
			CreatedAt:         date("2024-01-15"),
			UpdatedAt:         date("2024-01-20"),
		},
		{
			ID:                "2",
			FullName:          "عبداللہ خان",
			FatherName:        "یوسف خان",
			DateOfBirth:       "2012-08-20",
			Gender:            models.GenderMale,
			Address:           "تمرگرہ، دیر لوئر",
			PhoneNumber:       "03009876543",
			PreviousEducation: "مڈل پاس",
			ClassApplyingFor:  "nazra",
			Status:            models.StatusPending,
			AcademicYear:      "2024-2025",
			CreatedAt:         date("2024-06-10"),
			UpdatedAt:         date("2024-06-10"),
		},
		{
			ID:                "3",
			FullName:          "حافظ عمر فاروق",
			FatherName:        "فاروق احمد",
			DateOfBirth:       "2008-03-12",
			Gender:            models.GenderMale,
			Address:           "چکدرہ، دیر لوئر",
			PhoneNumber:       "03451234567",
			PreviousEducation: "حفظ مکمل",
			ClassApplyingFor:  "aalim",
			Status:            models.StatusApproved,
			RollNumber:        ptr("D-015"),
			Section:           ptr("B"),
			AcademicYear:      "2024-2025",
			CreatedAt:         date("2024-02-01"),
			UpdatedAt:         date("2024-02-05"),
		},
		{
			ID:                "4",
			FullName:          "زید الرحمان",
			FatherName:        "عبدالرحمان",
			DateOfBirth:       "2011-11-25",
			Gender:            models.GenderMale,
			Address:           "بلامبٹ، دیر لوئر",
			PhoneNumber:       "03331234567",
			PreviousEducation: "پرائمری",
			ClassApplyingFor:  "tajweed",
			Status:            models.StatusPending,
			AcademicYear:      "2024-2025",
			CreatedAt:         date("2024-06-15"),
			UpdatedAt:         date("2024-06-15"),
		},
	}
}

// CreateDefaultData writes the staff identities and, for an empty application store,
// the sample applications. Existing data is left alone.
func CreateDefaultData(ctx context.Context, repos *appRepos.Repositories, opts Options, lgr zerolog.Logger) error {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	lgr.Info().Msg("Checking/Creating default data (identities/applications)...")
	var finalErr error

	for _, identity := range DefaultIdentities(now()) {
		err := repos.Identities.Create(ctx, identity)
		switch {
		case err == nil:
			lgr.Info().Str("email", identity.Email).Str("role", string(identity.Role)).Msg("Default identity created")
		case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		default:
			lgr.Error().Err(err).Str("email", identity.Email).Msg("Error creating default identity")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if !opts.SampleApplications {
		return finalErr
	}

	stats, err := repos.Applications.Stats(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Error counting applications")
		return errors.Join(finalErr, err)
	}
	if stats.TotalStudents > 0 {
		lgr.Info().Int("applications", stats.TotalStudents).Msg("Application store not empty, skipping samples")
		return finalErr
	}

	for _, app := range SampleApplications() {
		if err := repos.Applications.Create(ctx, app); err != nil {
			lgr.Error().Err(err).Str("applicationID", app.ID).Msg("Error creating sample application")
			finalErr = errors.Join(finalErr, err)
		}
	}
	lgr.Info().Msg("Default data check/creation completed.")
	return finalErr
}
