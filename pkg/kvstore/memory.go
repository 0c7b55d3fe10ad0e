package kvstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryBackend is the in-memory storage facility. One backend models the
// per-origin store; each Open call models one page session (tab) with its
// own origin identity.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
	bus    *Broadcaster
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		values: map[string]string{},
		bus:    NewBroadcaster(),
	}
}

// Open returns a new session handle on the shared backend.
func (m *MemoryBackend) Open() Store {
	return &memoryStore{backend: m, origin: uuid.New()}
}

type memoryStore struct {
	backend *MemoryBackend
	origin  uuid.UUID
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()
	value, ok := s.backend.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.backend.mu.Lock()
	s.backend.values[key] = value
	s.backend.mu.Unlock()

	s.backend.bus.Publish(Event{Key: key, NewValue: value, Origin: s.origin})
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.backend.mu.Lock()
	_, existed := s.backend.values[key]
	delete(s.backend.values, key)
	s.backend.mu.Unlock()

	// Removing an absent key fires no event, matching browser behaviour.
	if existed {
		s.backend.bus.Publish(Event{Key: key, Deleted: true, Origin: s.origin})
	}
	return nil
}

func (s *memoryStore) Watch(ctx context.Context) (<-chan Event, error) {
	return s.backend.bus.Subscribe(ctx, s.origin), nil
}

func (s *memoryStore) Origin() uuid.UUID {
	return s.origin
}

func (s *memoryStore) Close() error {
	return nil
}
