// Package settings implements the externally managed toggle store the
// engine consults before touching availability.
package settings

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Writer mutates the operator toggles. Both stores implement it; the CLI
// writes through it.
type Writer interface {
	SetAutomation(ctx context.Context, resourceID uuid.UUID, enabled bool) error
	SetLogging(ctx context.Context, enabled bool) error
}

// MemoryStore keeps toggles in process memory. It backs local mode and
// tests; production uses the Redis-backed store.
type MemoryStore struct {
	mu         sync.RWMutex
	logging    bool
	automation map[uuid.UUID]bool
}

// NewMemoryStore creates a store with logging on and no automation flags
// set. Automation defaults to off per resource until enabled.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		logging:    true,
		automation: make(map[uuid.UUID]bool),
	}
}

func (s *MemoryStore) AutomationEnabled(_ context.Context, resourceID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.automation[resourceID], nil
}

func (s *MemoryStore) LoggingEnabled(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logging, nil
}

// SetAutomation flips the automation toggle for one resource.
func (s *MemoryStore) SetAutomation(_ context.Context, resourceID uuid.UUID, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.automation[resourceID] = enabled
	return nil
}

// SetLogging flips the diagnostic logging toggle.
func (s *MemoryStore) SetLogging(_ context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logging = enabled
	return nil
}
