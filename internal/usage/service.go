package usage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type store interface {
	CountForUser(ctx context.Context, userID string) (int, error)
	Insert(ctx context.Context, rec AnalysisRecord, limit int) error
	GetByID(ctx context.Context, userID, recordID string) (AnalysisRecord, error)
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]AnalysisRecord, error)
}

// Service is the usage ledger: it counts completed analyses per user and
// gates new records against the lifetime quota.
type Service struct {
	store store
	limit int
}

// NewService constructs a Service with an in-memory store.
func NewService(limit int) *Service {
	return &Service{store: newMemoryStore(), limit: limit}
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore *PGStore, limit int) *Service {
	return &Service{store: pgStore, limit: limit}
}

// Limit returns the lifetime quota.
func (s *Service) Limit() int {
	return s.limit
}

// CountForUser returns the number of analysis records the user owns.
func (s *Service) CountForUser(ctx context.Context, userID string) (int, error) {
	return s.store.CountForUser(ctx, userID)
}

// CanConsume reports whether the user is below the quota. This is the cheap
// admission test run before any expensive work; Record re-checks inside a
// transaction and is the enforcement point.
func (s *Service) CanConsume(ctx context.Context, userID string) (bool, int, error) {
	count, err := s.store.CountForUser(ctx, userID)
	if err != nil {
		return false, 0, err
	}
	return count < s.limit, count, nil
}

// Record persists a new analysis record, consuming one quota slot. The
// count-and-insert is a single guarded operation; a concurrent request that
// would push the user past the limit fails with ErrLimitReached.
func (s *Service) Record(ctx context.Context, userID, sourceText string, result json.RawMessage) (AnalysisRecord, error) {
	if userID == "" {
		return AnalysisRecord{}, errors.New("userID is required")
	}
	rec := AnalysisRecord{
		ID:         uuid.NewString(),
		UserID:     userID,
		SourceText: sourceText,
		Result:     result,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, rec, s.limit); err != nil {
		return AnalysisRecord{}, err
	}
	return rec, nil
}

// GetByID returns one record owned by the user.
func (s *Service) GetByID(ctx context.Context, userID, recordID string) (AnalysisRecord, error) {
	return s.store.GetByID(ctx, userID, recordID)
}

// ListForUser returns the user's records newest-first.
func (s *Service) ListForUser(ctx context.Context, userID string, limit, offset int) ([]AnalysisRecord, error) {
	return s.store.ListForUser(ctx, userID, limit, offset)
}
