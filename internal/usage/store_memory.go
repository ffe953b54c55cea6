package usage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// memoryStore keeps analysis records in process memory. Used when no
// DATABASE_URL is configured; the mutex gives the same count-then-insert
// atomicity the Postgres store gets from its row lock.
type memoryStore struct {
	mu     sync.Mutex
	byID   map[string]AnalysisRecord
	byUser map[string][]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		byID:   make(map[string]AnalysisRecord),
		byUser: make(map[string][]string),
	}
}

func (s *memoryStore) CountForUser(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byUser[userID]), nil
}

func (s *memoryStore) Insert(_ context.Context, rec AnalysisRecord, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.byUser[rec.UserID]) >= limit {
		return ErrLimitReached
	}
	if _, exists := s.byID[rec.ID]; exists {
		return fmt.Errorf("duplicate record id %s", rec.ID)
	}
	s.byID[rec.ID] = rec
	s.byUser[rec.UserID] = append(s.byUser[rec.UserID], rec.ID)
	return nil
}

func (s *memoryStore) GetByID(_ context.Context, userID, recordID string) (AnalysisRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[recordID]
	if !ok || rec.UserID != userID {
		return AnalysisRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *memoryStore) ListForUser(_ context.Context, userID string, limit, offset int) ([]AnalysisRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.byUser[userID]
	records := make([]AnalysisRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, s.byID[id])
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if offset >= len(records) {
		return nil, nil
	}
	records = records[offset:]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}
