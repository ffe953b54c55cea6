package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGStore persists analysis records in Postgres. The row count in
// resume_analyses is the usage counter; there is no separate tally to drift.
type PGStore struct {
	DB *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) CountForUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM resume_analyses WHERE user_id = $1`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count analyses: %w", err)
	}
	return count, nil
}

// Insert records one analysis inside a single transaction. It locks the
// owning user row, re-counts the user's records, and inserts only if the
// count is still below limit. Two racing requests serialize on the row lock,
// so the quota cannot be oversubscribed.
func (s *PGStore) Insert(ctx context.Context, rec AnalysisRecord, limit int) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var lockedID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM users WHERE id = $1 FOR UPDATE`, rec.UserID,
	).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lock user %s: not found", rec.UserID)
		}
		return fmt.Errorf("lock user: %w", err)
	}

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM resume_analyses WHERE user_id = $1`, rec.UserID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("count analyses: %w", err)
	}
	if count >= limit {
		return ErrLimitReached
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO resume_analyses (id, user_id, source_text, result, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.UserID, rec.SourceText, []byte(rec.Result), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PGStore) GetByID(ctx context.Context, userID, recordID string) (AnalysisRecord, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT id, user_id, source_text, result, created_at
		 FROM resume_analyses WHERE id = $1 AND user_id = $2`,
		recordID, userID,
	)
	return scanRecord(row)
}

func (s *PGStore) ListForUser(ctx context.Context, userID string, limit, offset int) ([]AnalysisRecord, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, user_id, source_text, result, created_at
		 FROM resume_analyses
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var records []AnalysisRecord
	for rows.Next() {
		var rec AnalysisRecord
		var result []byte
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.SourceText, &result, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		rec.Result = result
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (AnalysisRecord, error) {
	var rec AnalysisRecord
	var result []byte
	err := row.Scan(&rec.ID, &rec.UserID, &rec.SourceText, &result, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AnalysisRecord{}, ErrNotFound
		}
		return AnalysisRecord{}, fmt.Errorf("scan analysis: %w", err)
	}
	rec.Result = result
	return rec, nil
}
