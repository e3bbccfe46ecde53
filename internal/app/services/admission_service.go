package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/ribat/admissions/internal/app/models"
	"github.com/ribat/admissions/internal/app/models/dto"
	"github.com/ribat/admissions/internal/app/repositories"
	"github.com/ribat/admissions/internal/pkg/apperrors"
	"github.com/ribat/admissions/internal/pkg/helpers"
	"github.com/ribat/admissions/internal/pkg/validation"
)

// EventPublisher receives a notification after every successful mutation.
// Publish must not block.
type EventPublisher interface {
	Publish(event models.AdmissionEvent)
}

// AdmissionOption customises an AdmissionService
type AdmissionOption func(*AdmissionService)

// WithClock replaces time.Now
func WithClock(now func() time.Time) AdmissionOption {
	return func(s *AdmissionService) { s.now = now }
}

// WithIDGenerator replaces the uuid generator for new applications
func WithIDGenerator(newID func() string) AdmissionOption {
	return func(s *AdmissionService) { s.newID = newID }
}

// WithPublisher attaches an event publisher
func WithPublisher(publisher EventPublisher) AdmissionOption {
	return func(s *AdmissionService) { s.publisher = publisher }
}

// AdmissionService owns the application collection and its status workflow
type AdmissionService struct {
	repo      repositories.ApplicationRepository
	publisher EventPublisher
	logger    zerolog.Logger
	now       func() time.Time
	newID     func() string
}

// NewAdmissionService creates a new AdmissionService
func NewAdmissionService(repo repositories.ApplicationRepository, logger zerolog.Logger, opts ...AdmissionOption) *AdmissionService {
	s := &AdmissionService{
		repo:   repo,
		logger: logger.With().Str("component", "admissions").Logger(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddApplication validates the admission form and stores a new pending application
func (s *AdmissionService) AddApplication(ctx context.Context, req *dto.ApplicationRequest) (*models.Application, error) {
	if req == nil {
		return nil, apperrors.NewBadRequestError("application form is required")
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	now := helpers.Truncate(s.now())
	app := &models.Application{
		ID:                s.newID(),
		FullName:          req.FullName,
		FatherName:        req.FatherName,
		DateOfBirth:       req.DateOfBirth,
		Gender:            req.Gender,
		Address:           req.Address,
		PhoneNumber:       req.PhoneNumber,
		PreviousEducation: req.PreviousEducation,
		ClassApplyingFor:  req.ClassApplyingFor,
		IDNumber:          optionalString(req.IDNumber),
		Status:            models.StatusPending,
		AcademicYear:      req.AcademicYear,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, app); err != nil {
		return nil, err
	}

	s.logger.Info().Str("applicationID", app.ID).Str("class", app.ClassApplyingFor).Msg("Application received")
	s.publish(ctx, models.EventApplicationCreated, app)
	return app, nil
}

// UpdateApplication applies staff corrections to applicant fields.
// An unknown id is reported as apperrors.ErrApplicationNotFound.
func (s *AdmissionService) UpdateApplication(ctx context.Context, id string, patch *dto.ApplicationPatchRequest) (*models.Application, error) {
	if patch == nil {
		patch = &dto.ApplicationPatchRequest{}
	}
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.ExpectedUpdatedAt != nil && !current.UpdatedAt.Equal(helpers.Truncate(*patch.ExpectedUpdatedAt)) {
		return nil, apperrors.ErrStaleApplication
	}

	updated := current.Clone()
	applyPatch(updated, patch)
	updated.UpdatedAt = helpers.NextTimestamp(current.UpdatedAt, s.now())

	if err := s.repo.Update(ctx, updated, current.UpdatedAt); err != nil {
		return nil, err
	}

	s.logger.Info().Str("applicationID", id).Msg("Application updated")
	s.publish(ctx, models.EventApplicationUpdated, updated)
	return updated, nil
}

func applyPatch(app *models.Application, patch *dto.ApplicationPatchRequest) {
	if patch.FullName != nil {
		app.FullName = *patch.FullName
	}
	if patch.FatherName != nil {
		app.FatherName = *patch.FatherName
	}
	if patch.DateOfBirth != nil {
		app.DateOfBirth = *patch.DateOfBirth
	}
	if patch.Gender != nil {
		app.Gender = *patch.Gender
	}
	if patch.Address != nil {
		app.Address = *patch.Address
	}
	if patch.PhoneNumber != nil {
		app.PhoneNumber = *patch.PhoneNumber
	}
	if patch.PreviousEducation != nil {
		app.PreviousEducation = *patch.PreviousEducation
	}
	if patch.ClassApplyingFor != nil {
		app.ClassApplyingFor = *patch.ClassApplyingFor
	}
	if patch.IDNumber != nil {
		app.IDNumber = optionalString(patch.IDNumber)
	}
	if patch.AcademicYear != nil {
		app.AcademicYear = *patch.AcademicYear
	}
}

// DeleteApplication removes an application. Deleting an unknown id is a no-op.
func (s *AdmissionService) DeleteApplication(ctx context.Context, id string) error {
	existed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !existed {
		s.logger.Debug().Str("applicationID", id).Msg("Delete of unknown application ignored")
		return nil
	}

	s.logger.Info().Str("applicationID", id).Msg("Application deleted")
	s.publish(ctx, models.EventApplicationDeleted, &models.Application{ID: id})
	return nil
}

// Approve places a pending applicant with a roll number and section
func (s *AdmissionService) Approve(ctx context.Context, id, rollNumber, section string) (*models.Application, error) {
	req := dto.ApproveRequest{
		RollNumber: strings.TrimSpace(rollNumber),
		Section:    strings.TrimSpace(section),
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	app, err := s.decide(ctx, id, models.StatusApproved, func(app *models.Application) {
		app.RollNumber = &req.RollNumber
		app.Section = &req.Section
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("applicationID", id).Str("rollNumber", req.RollNumber).Str("section", req.Section).Msg("Application approved")
	s.publish(ctx, models.EventApplicationApproved, app)
	return app, nil
}

// Reject declines a pending application; roll number and section stay untouched
func (s *AdmissionService) Reject(ctx context.Context, id string) (*models.Application, error) {
	app, err := s.decide(ctx, id, models.StatusRejected, nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("applicationID", id).Msg("Application rejected")
	s.publish(ctx, models.EventApplicationRejected, app)
	return app, nil
}

// decide moves a pending application to next. A concurrent decision surfaces as
// ErrInvalidTransition, any other concurrent edit as ErrStaleApplication.
func (s *AdmissionService) decide(ctx context.Context, id string, next models.ApplicationStatus, mutate func(*models.Application)) (*models.Application, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, apperrors.ErrInvalidTransition
	}

	updated := current.Clone()
	updated.Status = next
	if mutate != nil {
		mutate(updated)
	}
	updated.UpdatedAt = helpers.NextTimestamp(current.UpdatedAt, s.now())

	if err := s.repo.Update(ctx, updated, current.UpdatedAt); err != nil {
		if !errors.Is(err, apperrors.ErrStaleApplication) {
			return nil, err
		}
		latest, getErr := s.repo.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		if latest.Status != models.StatusPending {
			return nil, apperrors.ErrInvalidTransition
		}
		return nil, err
	}
	return updated, nil
}

// GetByID returns one application
func (s *AdmissionService) GetByID(ctx context.Context, id string) (*models.Application, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns the matching applications newest first with the total match count
func (s *AdmissionService) List(ctx context.Context, filter models.ApplicationFilter) ([]*models.Application, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperrors.NewValidationError("Unknown status", map[string]string{
			"status": "status must be one of: pending approved rejected",
		})
	}
	return s.repo.List(ctx, filter)
}

// Stats recomputes the status counts
func (s *AdmissionService) Stats(ctx context.Context) (*models.Stats, error) {
	return s.repo.Stats(ctx)
}

func (s *AdmissionService) publish(ctx context.Context, eventType models.AdmissionEventType, app *models.Application) {
	if s.publisher == nil {
		return
	}

	event := models.AdmissionEvent{
		Type:          eventType,
		ApplicationID: app.ID,
		Timestamp:     helpers.Truncate(s.now()),
	}
	if eventType != models.EventApplicationDeleted {
		event.Application = app.Clone()
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to compute stats for event")
	} else {
		event.Stats = stats
	}

	s.publisher.Publish(event)
}

// optionalString maps blank input to nil
func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
