package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a volatile Store implementation keeping records in process
// local maps. It is safe for concurrent access and best suited for tests or
// ephemeral demo setups. Returned records are cloned to prevent external
// mutation of internal state.
type MemoryStore struct {
	mu        sync.RWMutex
	contents  map[string]*Content
	schedules map[string]*Schedule
}

// Compile-time interface assertion.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		contents:  make(map[string]*Content),
		schedules: make(map[string]*Schedule),
	}
}

// CreateContent stores a clone of the record.
func (s *MemoryStore) CreateContent(_ context.Context, c *Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *c
	s.contents[c.ID] = &clone
	return nil
}

// GetContent returns a clone of the record or ErrNotFound.
func (s *MemoryStore) GetContent(_ context.Context, id string) (*Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contents[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *c
	return &clone, nil
}

// ListContents returns clones of all matching records, newest first.
func (s *MemoryStore) ListContents(_ context.Context, filter ContentFilter) ([]*Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Content
	for _, c := range s.contents {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.ContentType != "" && c.ContentType != filter.ContentType {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// UpdateContent overwrites an existing record, bumping UpdatedAt.
func (s *MemoryStore) UpdateContent(_ context.Context, c *Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contents[c.ID]; !ok {
		return ErrNotFound
	}
	clone := *c
	clone.UpdatedAt = time.Now().UTC()
	s.contents[c.ID] = &clone
	c.UpdatedAt = clone.UpdatedAt
	return nil
}

// CreateSchedule stores a clone of the schedule.
func (s *MemoryStore) CreateSchedule(_ context.Context, sched *Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *sched
	s.schedules[sched.ID] = &clone
	return nil
}

// GetSchedule returns a clone of the schedule or ErrNotFound.
func (s *MemoryStore) GetSchedule(_ context.Context, id string) (*Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sched, ok := s.schedules[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *sched
	return &clone, nil
}

// ListSchedules returns clones of schedules ordered by name.
func (s *MemoryStore) ListSchedules(_ context.Context, activeOnly bool) ([]*Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Schedule
	for _, sched := range s.schedules {
		if activeOnly && !sched.Active {
			continue
		}
		clone := *sched
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UpdateSchedule overwrites an existing schedule.
func (s *MemoryStore) UpdateSchedule(_ context.Context, sched *Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[sched.ID]; !ok {
		return ErrNotFound
	}
	clone := *sched
	s.schedules[sched.ID] = &clone
	return nil
}

// DeleteSchedule removes a schedule or returns ErrNotFound.
func (s *MemoryStore) DeleteSchedule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schedules[id]; !ok {
		return ErrNotFound
	}
	delete(s.schedules, id)
	return nil
}
