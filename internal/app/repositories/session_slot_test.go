package repositories_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ribat/admissions/internal/app/models"
	"github.com/ribat/admissions/internal/app/repositories"
)

func TestFileSessionSlot_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "slot")

	slot, err := repositories.NewFileSessionSlot(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, repositories.SessionSlotFile), slot.Path())

	empty, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, empty)

	identity := &models.Identity{
		ID:           "2",
		Email:        "teacher@madrasa.pk",
		Role:         models.RoleTeacher,
		Name:         "استاذ محترم",
		CreatedAt:    base,
		PasswordHash: "secret-hash",
	}
	require.NoError(t, slot.Save(ctx, identity))

	info, err := os.Stat(slot.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := slot.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "2", loaded.ID)
	assert.Equal(t, "استاذ محترم", loaded.Name)
	assert.True(t, base.Equal(loaded.CreatedAt))
	assert.Empty(t, loaded.PasswordHash, "password hashes never reach the slot")

	require.NoError(t, slot.Clear(ctx))
	require.NoError(t, slot.Clear(ctx))

	cleared, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, cleared)
}

func TestFileSessionSlot_Corrupt(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{oops"},
		{"missing id", `{"email":"a@b","role":"admin"}`},
		{"unknown role", `{"id":"1","email":"a@b","role":"janitor"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, err := repositories.NewFileSessionSlot(t.TempDir())
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(slot.Path(), []byte(tt.content), 0o600))

			_, err = slot.Load(ctx)
			assert.ErrorIs(t, err, repositories.ErrCorruptSlot)
		})
	}
}
