package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Simplici0/supportquote/internal/pricing"
)

type memoryEntry struct {
	quote   *pricing.Quote
	expires time.Time
}

// MemoryStore is an in-process Store. Entries expire ttl after their last
// access.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*pricing.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	now := s.now()
	if !now.Before(e.expires) {
		delete(s.entries, id)
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	e.expires = now.Add(s.ttl)
	s.entries[id] = e
	return e.quote.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, id string, q *pricing.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = memoryEntry{quote: q.Clone(), expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
