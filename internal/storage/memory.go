package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const memoryLimit = 50

// InMemoryStore is a thread-safe store used when a database is not configured.
type InMemoryStore struct {
	mu       sync.RWMutex
	analyses []Analysis
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{analyses: make([]Analysis, 0)}
}

// SaveAnalysis prepends the analysis, capping the history length.
func (s *InMemoryStore) SaveAnalysis(_ context.Context, input Analysis) (Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}

	s.analyses = append([]Analysis{input}, s.analyses...)
	if len(s.analyses) > memoryLimit {
		s.analyses = s.analyses[:memoryLimit]
	}

	return input, nil
}

// ListAnalyses returns a snapshot of stored analyses, newest first.
func (s *InMemoryStore) ListAnalyses(_ context.Context) ([]Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]Analysis, len(s.analyses))
	copy(snapshot, s.analyses)
	return snapshot, nil
}

// GetAnalysis returns a single analysis by id.
func (s *InMemoryStore) GetAnalysis(_ context.Context, id string) (Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.analyses {
		if item.ID == id {
			return item, nil
		}
	}
	return Analysis{}, ErrNotFound
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() {}
