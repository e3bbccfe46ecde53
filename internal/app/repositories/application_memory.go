package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ribat/admissions/internal/app/models"
	"github.com/ribat/admissions/internal/pkg/apperrors"
	"github.com/ribat/admissions/internal/pkg/helpers"
)

// MemoryApplicationRepository keeps applications in a map guarded by a RWMutex
type MemoryApplicationRepository struct {
	mu    sync.RWMutex
	byID  map[string]*models.Application
	order []string // insertion order, breaks createdAt ties
}

// NewMemoryApplicationRepository creates an empty repository
func NewMemoryApplicationRepository() *MemoryApplicationRepository {
	return &MemoryApplicationRepository{
		byID: make(map[string]*models.Application),
	}
}

// Create inserts a copy of app
func (r *MemoryApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[app.ID]; exists {
		return apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, fmt.Sprintf("application %s already exists", app.ID))
	}
	r.byID[app.ID] = app.Clone()
	r.order = append(r.order, app.ID)
	return nil
}

// GetByID returns a copy of the stored application
func (r *MemoryApplicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	app, ok := r.byID[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	return app.Clone(), nil
}

// Update swaps in a copy of app when the stored updatedAt matches
func (r *MemoryApplicationRepository) Update(ctx context.Context, app *models.Application, expectedUpdatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[app.ID]
	if !ok {
		return apperrors.ErrApplicationNotFound
	}
	if !current.UpdatedAt.Equal(expectedUpdatedAt) {
		return apperrors.ErrStaleApplication
	}
	r.byID[app.ID] = app.Clone()
	return nil
}

// Delete removes id and reports whether it was present
func (r *MemoryApplicationRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// List filters, orders and pages the collection
func (r *MemoryApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]*models.Application, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	matched := make([]*models.Application, 0, len(r.order))
	for _, id := range r.order {
		if app := r.byID[id]; filter.Matches(app) {
			matched = append(matched, app.Clone())
		}
	}
	r.mu.RUnlock()

	if filter.Order == models.OrderNewestFirst {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
		// newest insertion is first now, so a stable sort keeps it first on equal createdAt
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	}

	total := len(matched)
	if filter.Size > 0 {
		start, end := helpers.CalculateSliceIndices(filter.Page, filter.Size, total)
		matched = matched[start:end]
	}
	return matched, total, nil
}

// Stats scans the whole collection
func (r *MemoryApplicationRepository) Stats(ctx context.Context) (*models.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &models.Stats{}
	for _, app := range r.byID {
		stats.Add(app.Status)
	}
	return stats, nil
}
