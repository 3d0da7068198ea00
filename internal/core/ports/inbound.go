package ports

import (
	"context"
	"io"

	"github.com/kirillkom/docnamer/internal/core/domain"
)

// FileIngestor is the inbound contract for file upload orchestration.
type FileIngestor interface {
	Upload(ctx context.Context, queuePosition int64, originalName, mimeType string, body io.Reader) (*domain.FileRecord, error)
}

// FileProcessor is the inbound contract for asynchronous file processing.
type FileProcessor interface {
	ProcessByID(ctx context.Context, fileID string) error
	ProcessBatch(ctx context.Context, queuePosition int64, fileIDs []string) (*domain.BatchResult, error)
	Complete(ctx context.Context, fileID string, success bool, language string) error
}

// QueueService is the inbound contract for queue allocation and statistics.
type QueueService interface {
	AllocatePosition(ctx context.Context) (int64, error)
	Stats(ctx context.Context, position int64) (domain.QueueStats, error)
	Totals(ctx context.Context) (domain.AggregateTotals, error)
}

// FileReader is the inbound read model for file lifecycle state.
type FileReader interface {
	GetByID(ctx context.Context, id string) (*domain.FileRecord, error)
}
