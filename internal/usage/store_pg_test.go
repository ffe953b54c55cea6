package usage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func testRecord() AnalysisRecord {
	return AnalysisRecord{
		ID:         "rec-1",
		UserID:     "user-1",
		SourceText: "resume text",
		Result:     json.RawMessage(`{"overall_score":80}`),
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestPGStoreInsertUnderLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rec := testRecord()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM users WHERE id = \$1 FOR UPDATE`).
		WithArgs(rec.UserID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(rec.UserID))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM resume_analyses WHERE user_id = \$1`).
		WithArgs(rec.UserID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(49))
	mock.ExpectExec(`INSERT INTO resume_analyses`).
		WithArgs(rec.ID, rec.UserID, rec.SourceText, []byte(rec.Result), rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := NewPGStore(db)
	if err := store.Insert(context.Background(), rec, 50); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreInsertAtLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rec := testRecord()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM users WHERE id = \$1 FOR UPDATE`).
		WithArgs(rec.UserID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(rec.UserID))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM resume_analyses WHERE user_id = \$1`).
		WithArgs(rec.UserID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(50))
	mock.ExpectRollback()

	store := NewPGStore(db)
	err = store.Insert(context.Background(), rec, 50)
	if !errors.Is(err, ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreInsertUnknownUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rec := testRecord()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM users WHERE id = \$1 FOR UPDATE`).
		WithArgs(rec.UserID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	store := NewPGStore(db)
	if err := store.Insert(context.Background(), rec, 50); err == nil {
		t.Fatal("expected error for unknown user")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreCountForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM resume_analyses WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	store := NewPGStore(db)
	count, err := store.CountForUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CountForUser: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7, got %d", count)
	}
}

func TestPGStoreGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, user_id, source_text, result, created_at`).
		WithArgs("missing", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "source_text", "result", "created_at"}))

	store := NewPGStore(db)
	_, err = store.GetByID(context.Background(), "user-1", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
