package credentials

import (
	"context"
	"sync"

	"neoquiz/internal/auth/models"
)

// InMemoryStore keeps credentials for the lifetime of the process.
type InMemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{values: make(map[string][]byte)}
}

func (s *InMemoryStore) SaveToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[TokenKey] = []byte(token)
	return nil
}

func (s *InMemoryStore) GetToken(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return string(s.values[TokenKey]), nil
}

func (s *InMemoryStore) SaveUser(_ context.Context, user *models.User) error {
	raw, err := encodeUser(user)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[UserKey] = raw
	return nil
}

func (s *InMemoryStore) GetUser(_ context.Context) (*models.User, error) {
	s.mu.RLock()
	raw := s.values[UserKey]
	s.mu.RUnlock()
	return decodeUser(raw)
}

func (s *InMemoryStore) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, TokenKey)
	delete(s.values, UserKey)
	return nil
}
