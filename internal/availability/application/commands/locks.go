package commands

import (
	"sync"

	"github.com/google/uuid"
)

// resourceLocks serializes reconciliation per resource. Rule collections
// are mutated read-modify-write across a sibling set, so two runs over the
// same resource must not interleave. Locks are per-process; cross-process
// writers are last-write-wins.
type resourceLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newResourceLocks() *resourceLocks {
	return &resourceLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// lock acquires the mutex for one resource and returns its release func.
func (l *resourceLocks) lock(resourceID uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[resourceID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[resourceID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
