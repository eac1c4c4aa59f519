package service

import (
	"sync"

	"github.com/google/uuid"
)

// InFlight is the set of requests whose namespace is in use. The parse
// service registers a request for as long as it holds a device slot and the
// output sweeper leaves registered namespaces alone. A nil *InFlight tracks
// nothing.
type InFlight struct {
	mu  sync.Mutex
	ids map[uuid.UUID]struct{}
}

// NewInFlight creates an empty set.
func NewInFlight() *InFlight {
	return &InFlight{ids: make(map[uuid.UUID]struct{})}
}

// Add registers id.
func (s *InFlight) Add(id uuid.UUID) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.ids[id] = struct{}{}
	s.mu.Unlock()
}

// Remove unregisters id.
func (s *InFlight) Remove(id uuid.UUID) {
	if s == nil {
		return
	}
	s.mu.Lock()
	delete(s.ids, id)
	s.mu.Unlock()
}

// Contains reports whether id is registered.
func (s *InFlight) Contains(id uuid.UUID) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of registered requests.
func (s *InFlight) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
