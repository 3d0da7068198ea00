package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the processing tables. Queue positions come from the
// BIGSERIAL sequence: allocation is a single INSERT..RETURNING, collision-free
// under concurrent sessions. Aggregate totals are a constrained singleton row.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026052801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS queue_entries (
	position BIGSERIAL PRIMARY KEY,
	files_uploaded BIGINT NOT NULL DEFAULT 0,
	files_treated BIGINT NOT NULL DEFAULT 0,
	files_not_treated BIGINT NOT NULL DEFAULT 0,
	total_processing_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT chk_counters CHECK (files_treated + files_not_treated <= files_uploaded)
);

CREATE TABLE IF NOT EXISTS file_records (
	id TEXT PRIMARY KEY,
	original_name TEXT NOT NULL,
	queue_position BIGINT NOT NULL REFERENCES queue_entries(position),
	synthesized_name TEXT NOT NULL DEFAULT '',
	input_type TEXT NOT NULL,
	output_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	document_type TEXT NOT NULL DEFAULT '',
	language TEXT NOT NULL DEFAULT '',
	extraction_start TIMESTAMPTZ,
	extraction_end TIMESTAMPTZ,
	duration_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
	state TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_file_records_queue ON file_records(queue_position);
CREATE INDEX IF NOT EXISTS idx_file_records_state ON file_records(state);

CREATE TABLE IF NOT EXISTS aggregate_totals (
	singleton BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
	total_queues BIGINT NOT NULL DEFAULT 0,
	total_files BIGINT NOT NULL DEFAULT 0
);

INSERT INTO aggregate_totals (singleton) VALUES (TRUE) ON CONFLICT DO NOTHING;
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
