package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/docnamer/internal/core/domain"
)

// FileRepository persists file lifecycle state. Complete must apply the
// terminal transition atomically and reject records already in a terminal
// state with domain.ErrIllegalTransition.
type FileRepository interface {
	Create(ctx context.Context, rec *domain.FileRecord) error
	GetByID(ctx context.Context, id string) (*domain.FileRecord, error)
	MarkProcessing(ctx context.Context, id string, start time.Time) error
	Complete(ctx context.Context, rec *domain.FileRecord) error
}

// QueueRepository owns queue entries and the process-wide aggregate totals.
// AllocatePosition must be collision-free under concurrent callers; counter
// updates must be atomic per entry. Recording an outcome recomputes the
// entry's total processing time as the sum over its successful file records.
type QueueRepository interface {
	AllocatePosition(ctx context.Context) (int64, error)
	RecordFileUploaded(ctx context.Context, position int64) error
	RecordOutcome(ctx context.Context, position int64, succeeded, failed int64) error
	Stats(ctx context.Context, position int64) (domain.QueueStats, error)
	Totals(ctx context.Context) (domain.AggregateTotals, error)
}

// ObjectStorage stores source uploads and renamed output copies.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes file-uploaded events.
type MessageQueue interface {
	PublishFileUploaded(ctx context.Context, fileID string) error
	SubscribeFileUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text from a stored file. Engine errors are the
// only failure mode; unreadable content with no engine error is an empty
// result, not an error.
type TextExtractor interface {
	Extract(ctx context.Context, rec *domain.FileRecord) (domain.ExtractionResult, error)
}
