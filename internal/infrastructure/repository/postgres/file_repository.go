package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kirillkom/docnamer/internal/core/domain"
)

type FileRepository struct {
	db *sql.DB
}

func NewFileRepository(db *sql.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, rec *domain.FileRecord) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO file_records (
	id, original_name, queue_position, synthesized_name, input_type, output_type,
	storage_path, document_type, language, extraction_start, extraction_end,
	duration_seconds, state, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
`,
		rec.ID, rec.OriginalName, rec.QueuePosition, rec.SynthesizedName, rec.InputType,
		rec.OutputType, rec.StoragePath, string(rec.DocumentType), rec.Language,
		rec.ExtractionStart, rec.ExtractionEnd, rec.Duration, string(rec.State),
		rec.Error, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert file record: %w", err)
	}
	return nil
}

func (r *FileRepository) GetByID(ctx context.Context, id string) (*domain.FileRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, original_name, queue_position, synthesized_name, input_type, output_type,
	storage_path, document_type, language, extraction_start, extraction_end,
	duration_seconds, state, error_message, created_at, updated_at
FROM file_records
WHERE id = $1
`, id)

	var rec domain.FileRecord
	var docType, state string

	err := row.Scan(
		&rec.ID, &rec.OriginalName, &rec.QueuePosition, &rec.SynthesizedName,
		&rec.InputType, &rec.OutputType, &rec.StoragePath, &docType, &rec.Language,
		&rec.ExtractionStart, &rec.ExtractionEnd, &rec.Duration, &state,
		&rec.Error, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrFileNotFound, "get file record", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan file record: %w", err)
	}

	rec.DocumentType = domain.DocumentType(docType)
	rec.State = domain.FileState(state)
	return &rec, nil
}

// MarkProcessing stamps the extraction window start. The state guard in the
// WHERE clause keeps the transition atomic under concurrent workers.
func (r *FileRepository) MarkProcessing(ctx context.Context, id string, start time.Time) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE file_records
SET state = $2, extraction_start = $3, updated_at = $3
WHERE id = $1 AND state = $4
`, id, string(domain.StateProcessing), start, string(domain.StatePending))
	if err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	return r.checkTransitioned(ctx, id, result, "mark processing")
}

// Complete persists the terminal transition. The state guard rejects a second
// completion: zero affected rows on an existing record means the record was
// already terminal.
func (r *FileRepository) Complete(ctx context.Context, rec *domain.FileRecord) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE file_records
SET state = $2, synthesized_name = $3, document_type = $4, language = $5,
	extraction_end = $6, duration_seconds = $7, error_message = $8, updated_at = $9
WHERE id = $1 AND state IN ($10, $11)
`,
		rec.ID, string(rec.State), rec.SynthesizedName, string(rec.DocumentType),
		rec.Language, rec.ExtractionEnd, rec.Duration, rec.Error, rec.UpdatedAt,
		string(domain.StatePending), string(domain.StateProcessing),
	)
	if err != nil {
		return fmt.Errorf("complete file record: %w", err)
	}
	return r.checkTransitioned(ctx, rec.ID, result, "complete file record")
}

func (r *FileRepository) checkTransitioned(ctx context.Context, id string, result sql.Result, operation string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if rows > 0 {
		return nil
	}

	var state string
	err = r.db.QueryRowContext(ctx, `SELECT state FROM file_records WHERE id = $1`, id).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WrapError(domain.ErrFileNotFound, operation, fmt.Errorf("id=%s", id))
	}
	if err != nil {
		return fmt.Errorf("%s state lookup: %w", operation, err)
	}
	return domain.WrapError(domain.ErrIllegalTransition, operation,
		fmt.Errorf("id=%s state=%s", id, state))
}
