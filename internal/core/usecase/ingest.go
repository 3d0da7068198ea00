package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/docnamer/internal/core/domain"
	"github.com/kirillkom/docnamer/internal/core/ports"
)

type IngestFileUseCase struct {
	files   ports.FileRepository
	queues  ports.QueueRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestFileUseCase(
	files ports.FileRepository,
	queues ports.QueueRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *IngestFileUseCase {
	return &IngestFileUseCase{
		files:   files,
		queues:  queues,
		storage: storage,
		queue:   queue,
	}
}

// Upload stores the raw file, creates its pending lifecycle record under the
// given queue position and publishes the uploaded event. An unknown queue
// position is rejected before any state mutation.
func (uc *IngestFileUseCase) Upload(
	ctx context.Context,
	queuePosition int64,
	originalName, mimeType string,
	body io.Reader,
) (*domain.FileRecord, error) {
	if queuePosition <= 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload file", errors.New("queue position is required"))
	}
	if _, err := uc.queues.Stats(ctx, queuePosition); err != nil {
		if domain.IsKind(err, domain.ErrQueueNotFound) {
			return nil, domain.WrapError(domain.ErrInvalidInput, "upload file", err)
		}
		return nil, fmt.Errorf("verify queue position: %w", err)
	}

	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(originalName))
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeStorageName(originalName))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	rec := &domain.FileRecord{
		ID:            id,
		OriginalName:  originalName,
		QueuePosition: queuePosition,
		InputType:     mimeType,
		OutputType:    ext,
		StoragePath:   storageKey,
		State:         domain.StatePending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.files.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create file record: %w", err)
	}

	if err := uc.queues.RecordFileUploaded(ctx, queuePosition); err != nil {
		return nil, fmt.Errorf("record file uploaded: %w", err)
	}

	if err := uc.queue.PublishFileUploaded(ctx, rec.ID); err != nil {
		return nil, fmt.Errorf("publish uploaded event: %w", err)
	}

	return rec, nil
}

func sanitizeStorageName(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		return "document.bin"
	}
	return base
}
