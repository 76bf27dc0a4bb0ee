package draft

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"plateful/internal/models"
	"plateful/internal/observability"
)

// FileStore keeps one JSON file per user under a fixed directory.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

// NewFileStore creates the directory if needed and returns a FileStore.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create draft dir: %w", err)
	}
	return &FileStore{dir: dir, logger: slog.Default()}, nil
}

func (s *FileStore) path(userID string) string {
	// User ids are opaque; hex/uuid shaped in practice. Anything else is
	// rejected rather than risking a path escape.
	return filepath.Join(s.dir, userID+".json")
}

func validSlot(userID string) bool {
	if userID == "" {
		return false
	}
	for _, r := range userID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

func (s *FileStore) Save(userID string, d models.Draft) error {
	if !validSlot(userID) {
		return fmt.Errorf("invalid draft slot %q", userID)
	}
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(userID), data, 0o644)
}

func (s *FileStore) Load(userID string) (models.Draft, bool, error) {
	if !validSlot(userID) {
		return models.Draft{}, false, fmt.Errorf("invalid draft slot %q", userID)
	}
	data, err := os.ReadFile(s.path(userID))
	if errors.Is(err, fs.ErrNotExist) {
		return models.Draft{}, false, nil
	}
	if err != nil {
		return models.Draft{}, false, err
	}

	var d models.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		// Corrupt slot: fall back to an empty composition.
		s.logger.Warn("discarding malformed draft",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		observability.DraftDiscards.Inc()
		return models.Draft{}, false, nil
	}
	return d, true, nil
}

func (s *FileStore) Clear(userID string) error {
	if !validSlot(userID) {
		return fmt.Errorf("invalid draft slot %q", userID)
	}
	err := os.Remove(s.path(userID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
