package store

import (
	"context"
	"sync"
)

// MemoryStore keeps keyword documents in process memory. Subscriber order is
// insertion order.
type MemoryStore struct {
	mu       sync.RWMutex
	keywords map[string][]string
}

func NewMemory() *MemoryStore {
	return &MemoryStore{keywords: make(map[string][]string)}
}

func (s *MemoryStore) Get(_ context.Context, keyword string) ([]string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs, ok := s.keywords[keyword]
	if !ok {
		return nil, false, nil
	}
	out := make([]string, len(subs))
	copy(out, subs)
	return out, true, nil
}

func (s *MemoryStore) UnionSubscriber(_ context.Context, keyword, subscriberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := s.keywords[keyword]
	for _, existing := range subs {
		if existing == subscriberID {
			return nil
		}
	}
	s.keywords[keyword] = append(subs, subscriberID)
	return nil
}

func (s *MemoryStore) RemoveSubscriber(_ context.Context, keyword, subscriberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, ok := s.keywords[keyword]
	if !ok {
		return nil
	}
	kept := make([]string, 0, len(subs))
	for _, existing := range subs {
		if existing != subscriberID {
			kept = append(kept, existing)
		}
	}
	// Emptied keywords stay in the index.
	s.keywords[keyword] = kept
	return nil
}

func (s *MemoryStore) Close() error { return nil }
