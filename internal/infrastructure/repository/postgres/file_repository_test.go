package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/docnamer/internal/core/domain"
)

func TestFileRepositoryMarkProcessing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewFileRepository(db)
	start := time.Now().UTC()
	mock.ExpectExec("UPDATE file_records").
		WithArgs("f-1", string(domain.StateProcessing), start, string(domain.StatePending)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkProcessing(context.Background(), "f-1", start); err != nil {
		t.Fatalf("MarkProcessing() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFileRepositoryCompleteRejectsTerminalRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewFileRepository(db)
	mock.ExpectExec("UPDATE file_records").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT state FROM file_records").
		WithArgs("f-1").
		WillReturnRows(sqlmock.NewRows([]string{"state"}).AddRow(string(domain.StateSuccess)))

	now := time.Now().UTC()
	rec := &domain.FileRecord{ID: "f-1", State: domain.StateSuccess, ExtractionEnd: &now, UpdatedAt: now}
	err = repo.Complete(context.Background(), rec)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFileRepositoryCompleteMissingRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewFileRepository(db)
	mock.ExpectExec("UPDATE file_records").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT state FROM file_records").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"state"}))

	now := time.Now().UTC()
	rec := &domain.FileRecord{ID: "missing", State: domain.StateFailed, ExtractionEnd: &now, UpdatedAt: now}
	err = repo.Complete(context.Background(), rec)
	if !domain.IsKind(err, domain.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFileRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewFileRepository(db)
	mock.ExpectQuery("FROM file_records").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetByID(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
