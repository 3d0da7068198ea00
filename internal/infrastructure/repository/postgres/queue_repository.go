package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kirillkom/docnamer/internal/core/domain"
)

type QueueRepository struct {
	db *sql.DB
}

func NewQueueRepository(db *sql.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

// AllocatePosition inserts a fresh entry and lets the BIGSERIAL sequence hand
// out the position. Monotonic and collision-free under concurrent callers;
// never derived from a row count. The aggregate queue counter is bumped in
// the same transaction.
func (r *QueueRepository) AllocatePosition(ctx context.Context) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin allocate tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var position int64
	err = tx.QueryRowContext(ctx, `
INSERT INTO queue_entries DEFAULT VALUES
RETURNING position
`).Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("allocate queue position: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE aggregate_totals SET total_queues = total_queues + 1 WHERE singleton
`); err != nil {
		return 0, fmt.Errorf("increment total queues: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit allocate tx: %w", err)
	}
	return position, nil
}

// RecordFileUploaded bumps the entry's uploaded counter and the aggregate
// file counter in one transaction, so a storage error never leaves a partial
// aggregate update behind.
func (r *QueueRepository) RecordFileUploaded(ctx context.Context, position int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upload tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `
UPDATE queue_entries SET files_uploaded = files_uploaded + 1 WHERE position = $1
`, position)
	if err != nil {
		return fmt.Errorf("increment files uploaded: %w", err)
	}
	if err := requireQueueRow(result, position); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE aggregate_totals SET total_files = total_files + 1 WHERE singleton
`); err != nil {
		return fmt.Errorf("increment total files: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upload tx: %w", err)
	}
	return nil
}

// RecordOutcome applies treated/not-treated increments and recomputes the
// entry's total processing time as a sum over its successful file records.
// Re-aggregation instead of an incremental add keeps the total correct under
// partial failures and retries. Single-statement update, serializable per
// entry through the row lock.
func (r *QueueRepository) RecordOutcome(ctx context.Context, position int64, succeeded, failed int64) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE queue_entries SET
	files_treated = files_treated + $2,
	files_not_treated = files_not_treated + $3,
	total_processing_seconds = (
		SELECT COALESCE(SUM(duration_seconds), 0)
		FROM file_records
		WHERE queue_position = $1 AND state = $4
	)
WHERE position = $1
`, position, succeeded, failed, string(domain.StateSuccess))
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return requireQueueRow(result, position)
}

func (r *QueueRepository) Stats(ctx context.Context, position int64) (domain.QueueStats, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT files_uploaded, files_treated, files_not_treated, total_processing_seconds
FROM queue_entries
WHERE position = $1
`, position)

	var stats domain.QueueStats
	err := row.Scan(&stats.Uploaded, &stats.Treated, &stats.NotTreated, &stats.TotalProcessingTimeSeconds)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.QueueStats{}, domain.WrapError(domain.ErrQueueNotFound, "queue stats",
				fmt.Errorf("position=%d", position))
		}
		return domain.QueueStats{}, fmt.Errorf("scan queue stats: %w", err)
	}
	return stats, nil
}

func (r *QueueRepository) Totals(ctx context.Context) (domain.AggregateTotals, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT total_queues, total_files FROM aggregate_totals WHERE singleton
`)

	var totals domain.AggregateTotals
	if err := row.Scan(&totals.TotalQueues, &totals.TotalFiles); err != nil {
		return domain.AggregateTotals{}, fmt.Errorf("scan aggregate totals: %w", err)
	}
	return totals, nil
}

func requireQueueRow(result sql.Result, position int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("queue update rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrQueueNotFound, "queue update", fmt.Errorf("position=%d", position))
	}
	return nil
}
