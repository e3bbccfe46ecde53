package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ribat/admissions/internal/app/models"
	"github.com/ribat/admissions/internal/pkg/logger"
)

// SessionSlotFile is the file name of the persisted identity
const SessionSlotFile = "madrasa_user.json"

// ErrCorruptSlot is returned when the slot holds something that is not an identity
var ErrCorruptSlot = errors.New("session slot is corrupt")

// FileSessionSlot keeps the signed-in identity as a JSON file on local disk
type FileSessionSlot struct {
	mu   sync.Mutex
	path string
}

// NewFileSessionSlot creates a slot under dir, creating the directory when missing
func NewFileSessionSlot(dir string) (*FileSessionSlot, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create session slot directory")
		return nil, fmt.Errorf("failed to create session slot directory %s: %w", dir, err)
	}
	return &FileSessionSlot{path: filepath.Join(dir, SessionSlotFile)}, nil
}

// Path returns the slot file location
func (s *FileSessionSlot) Path() string {
	return s.path
}

// Load reads the identity from disk
func (s *FileSessionSlot) Load(ctx context.Context) (*models.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session slot: %w", err)
	}

	var identity models.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSlot, err)
	}
	if identity.ID == "" || identity.Email == "" || !identity.Role.Valid() {
		return nil, ErrCorruptSlot
	}
	return &identity, nil
}

// Save writes identity atomically via a temp file and rename
func (s *FileSessionSlot) Save(ctx context.Context, identity *models.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session slot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace session slot: %w", err)
	}
	return nil
}

// Clear removes the slot file
func (s *FileSessionSlot) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear session slot: %w", err)
	}
	return nil
}
