package draft

import (
	"sync"

	"plateful/internal/models"
)

// MemoryStore is an in-process Store for tests and ephemeral deployments.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[string]models.Draft
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]models.Draft)}
}

func (s *MemoryStore) Save(userID string, d models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[userID] = d
	return nil
}

func (s *MemoryStore) Load(userID string) (models.Draft, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.slots[userID]
	return d, ok, nil
}

func (s *MemoryStore) Clear(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, userID)
	return nil
}
