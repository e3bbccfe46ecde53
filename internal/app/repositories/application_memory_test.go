package repositories_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ribat/admissions/internal/app/models"
	"github.com/ribat/admissions/internal/app/repositories"
	"github.com/ribat/admissions/internal/pkg/apperrors"
)

var base = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func newApp(id string, created time.Time, status models.ApplicationStatus) *models.Application {
	return &models.Application{
		ID:               id,
		FullName:         "Student " + id,
		FatherName:       "Father " + id,
		PhoneNumber:      "0300000000" + id,
		ClassApplyingFor: "hifz",
		Status:           status,
		AcademicYear:     "2024-2025",
		CreatedAt:        created,
		UpdatedAt:        created,
	}
}

func TestMemoryApplicationRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryApplicationRepository()

	app := newApp("1", base, models.StatusPending)
	require.NoError(t, repo.Create(ctx, app))

	err := repo.Create(ctx, app)
	assert.ErrorIs(t, err, apperrors.ErrResourceAlreadyExists)

	got, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, app, got)

	// returned values are copies
	got.FullName = "changed"
	again, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Student 1", again.FullName)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	existed, err := repo.Delete(ctx, "1")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = repo.Delete(ctx, "1")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestMemoryApplicationRepository_UpdateChecksVersion(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryApplicationRepository()
	require.NoError(t, repo.Create(ctx, newApp("1", base, models.StatusPending)))

	updated := newApp("1", base, models.StatusApproved)
	updated.UpdatedAt = base.Add(time.Minute)
	require.NoError(t, repo.Update(ctx, updated, base))

	// the old version is stale now
	err := repo.Update(ctx, newApp("1", base, models.StatusRejected), base)
	assert.ErrorIs(t, err, apperrors.ErrStaleApplication)

	err = repo.Update(ctx, newApp("2", base, models.StatusRejected), base)
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)

	got, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
}

func TestMemoryApplicationRepository_ListOrderAndPaging(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryApplicationRepository()

	require.NoError(t, repo.Create(ctx, newApp("a", base.Add(2*time.Hour), models.StatusPending)))
	require.NoError(t, repo.Create(ctx, newApp("b", base, models.StatusApproved)))
	require.NoError(t, repo.Create(ctx, newApp("c", base.Add(time.Hour), models.StatusPending)))
	// same createdAt as "b"; inserted later so listed first
	require.NoError(t, repo.Create(ctx, newApp("d", base, models.StatusRejected)))

	all, total, err := repo.List(ctx, models.ApplicationFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, []string{"a", "c", "d", "b"}, ids(all))

	page, total, err := repo.List(ctx, models.ApplicationFilter{Page: 2, Size: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Equal(t, []string{"b"}, ids(page))

	pending, total, err := repo.List(ctx, models.ApplicationFilter{Status: models.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{"a", "c"}, ids(pending))

	inserted, _, err := repo.List(ctx, models.ApplicationFilter{Order: models.OrderInserted})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(inserted))

	// deleting keeps the relative order of the rest
	_, err = repo.Delete(ctx, "b")
	require.NoError(t, err)
	inserted, total, err = repo.List(ctx, models.ApplicationFilter{Order: models.OrderInserted, Page: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"a", "c"}, ids(inserted))
}

func TestMemoryApplicationRepository_ListSearch(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryApplicationRepository()

	approved := newApp("1", base, models.StatusApproved)
	approved.FullName = "Muhammad Ahmad"
	approved.RollNumber = strPtr("H-001")
	approved.Section = strPtr("A")
	require.NoError(t, repo.Create(ctx, approved))

	other := newApp("2", base.Add(time.Hour), models.StatusPending)
	other.FullName = "Abdullah Khan"
	other.FatherName = "Yousaf Ahmad"
	other.ClassApplyingFor = "nazra"
	require.NoError(t, repo.Create(ctx, other))

	tests := []struct {
		name   string
		filter models.ApplicationFilter
		want   []string
	}{
		{"name is case-insensitive", models.ApplicationFilter{Search: "MUHAMMAD"}, []string{"1"}},
		{"father name", models.ApplicationFilter{Search: "ahmad"}, []string{"2", "1"}},
		{"roll number", models.ApplicationFilter{Search: "h-001"}, []string{"1"}},
		{"phone substring", models.ApplicationFilter{Search: "00000002"}, []string{"2"}},
		{"class", models.ApplicationFilter{ClassCode: "nazra"}, []string{"2"}},
		{"class and search", models.ApplicationFilter{ClassCode: "nazra", Search: "muhammad"}, []string{}},
		{"empty search", models.ApplicationFilter{Search: ""}, []string{"2", "1"}},
		{"spaces are matched as typed", models.ApplicationFilter{Search: " ahmad"}, []string{"2", "1"}},
		{"trailing space", models.ApplicationFilter{Search: "khan "}, []string{}},
		{"blank search", models.ApplicationFilter{Search: "   "}, []string{}},
		{"wildcards are literal", models.ApplicationFilter{Search: "%"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, len(tt.want), total)
		})
	}
}

func TestMemoryApplicationRepository_Stats(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryApplicationRepository()

	for i, status := range []models.ApplicationStatus{
		models.StatusPending, models.StatusPending, models.StatusApproved, models.StatusRejected,
	} {
		require.NoError(t, repo.Create(ctx, newApp(fmt.Sprint(i), base, status)))
	}

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &models.Stats{TotalStudents: 4, PendingAdmissions: 2, ApprovedStudents: 1, RejectedStudents: 1}, stats)
}

func TestMemoryApplicationRepository_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryApplicationRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.Create(ctx, newApp(fmt.Sprint(i), base, models.StatusPending))
			_, _, _ = repo.List(ctx, models.ApplicationFilter{})
		}(i)
	}
	wg.Wait()

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, stats.TotalStudents)
}

func TestMemoryIdentityRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryIdentityRepository()

	identity := &models.Identity{ID: "1", Email: "Admin@Madrasa.pk", Role: models.RoleAdmin, Name: "Admin"}
	require.NoError(t, repo.Create(ctx, identity))

	got, err := repo.GetByEmail(ctx, " admin@madrasa.pk ")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)

	err = repo.Create(ctx, &models.Identity{ID: "2", Email: "admin@madrasa.pk", Role: models.RoleTeacher})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	_, err = repo.GetByEmail(ctx, "nobody@madrasa.pk")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func ids(apps []*models.Application) []string {
	out := make([]string, 0, len(apps))
	for _, app := range apps {
		out = append(out, app.ID)
	}
	return out
}
