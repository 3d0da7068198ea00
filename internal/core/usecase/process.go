package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/docnamer/internal/core/domain"
	"github.com/kirillkom/docnamer/internal/core/naming"
	"github.com/kirillkom/docnamer/internal/core/ports"
)

const unknownLanguage = "unknown"

type ProcessFileUseCase struct {
	files     ports.FileRepository
	queues    ports.QueueRepository
	storage   ports.ObjectStorage
	extractor ports.TextExtractor

	batchWorkers  int
	renamedPrefix string
	now           func() time.Time
}

// SetRenamedPrefix places output copies under a storage sub-path instead of
// next to the source uploads.
func (uc *ProcessFileUseCase) SetRenamedPrefix(prefix string) {
	uc.renamedPrefix = strings.Trim(prefix, "/")
}

func NewProcessFileUseCase(
	files ports.FileRepository,
	queues ports.QueueRepository,
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
) *ProcessFileUseCase {
	return &ProcessFileUseCase{
		files:        files,
		queues:       queues,
		storage:      storage,
		extractor:    extractor,
		batchWorkers: defaultBatchWorkers,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ProcessByID runs the full pipeline for one uploaded file: extraction,
// classification, name synthesis and the terminal lifecycle transition, then
// records the outcome on the owning queue entry. An extraction engine error
// ends in the failed state; empty extracted text is still a success with the
// empty-document fallback name.
func (uc *ProcessFileUseCase) ProcessByID(ctx context.Context, fileID string) error {
	success, position, err := uc.processOne(ctx, fileID)
	if position == 0 {
		// Validation failed before any state mutation.
		return err
	}

	var succeeded, failed int64
	if success {
		succeeded = 1
	} else {
		failed = 1
	}
	if recErr := uc.queues.RecordOutcome(ctx, position, succeeded, failed); recErr != nil {
		if err != nil {
			return fmt.Errorf("%w; record outcome: %w", err, recErr)
		}
		return fmt.Errorf("record outcome: %w", recErr)
	}
	return err
}

// Complete applies a caller-reported outcome to a file record. Used when the
// extraction collaborator runs outside the worker (e.g. cancelled OCR must
// explicitly fail the record rather than letting it vanish). Completing a
// record twice is rejected as an illegal transition.
func (uc *ProcessFileUseCase) Complete(ctx context.Context, fileID string, success bool, language string) error {
	rec, err := uc.files.GetByID(ctx, fileID)
	if err != nil {
		return fmt.Errorf("fetch file record: %w", err)
	}

	if language == "" {
		language = unknownLanguage
	}
	rec.Language = language
	if err := rec.Complete(success, uc.now()); err != nil {
		return err
	}
	if err := uc.files.Complete(ctx, rec); err != nil {
		return fmt.Errorf("persist completion: %w", err)
	}

	var succeeded, failed int64
	if success {
		succeeded = 1
	} else {
		failed = 1
	}
	if err := uc.queues.RecordOutcome(ctx, rec.QueuePosition, succeeded, failed); err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

// processOne performs the per-file pipeline without touching queue counters,
// so single and bulk paths can record outcomes with the granularity they
// need. The returned position is zero when validation rejected the file
// before any mutation.
func (uc *ProcessFileUseCase) processOne(ctx context.Context, fileID string) (bool, int64, error) {
	rec, err := uc.files.GetByID(ctx, fileID)
	if err != nil {
		return false, 0, fmt.Errorf("fetch file record: %w", err)
	}
	if rec.State.Terminal() {
		return false, 0, domain.WrapError(domain.ErrIllegalTransition, "process file",
			fmt.Errorf("file %s already in state %s", rec.ID, rec.State))
	}

	start := uc.now()
	if err := rec.BeginProcessing(start); err != nil {
		return false, 0, err
	}
	if err := uc.files.MarkProcessing(ctx, rec.ID, start); err != nil {
		return false, 0, fmt.Errorf("mark processing: %w", err)
	}

	result, extractErr := uc.extractor.Extract(ctx, rec)
	if extractErr != nil {
		return false, rec.QueuePosition, uc.finishFailed(ctx, rec, extractErr)
	}

	name, cctx := naming.ClassifyAndName(result.Text)
	rec.SynthesizedName = name
	rec.DocumentType = cctx.DocumentType
	rec.Language = result.Language
	if rec.Language == "" {
		rec.Language = unknownLanguage
	}

	end := uc.now()
	if err := rec.Complete(true, end); err != nil {
		return false, rec.QueuePosition, err
	}
	if err := uc.files.Complete(ctx, rec); err != nil {
		return false, rec.QueuePosition, fmt.Errorf("persist completion: %w", err)
	}

	if err := uc.writeRenamedCopy(ctx, rec, end); err != nil {
		// The lifecycle transition already committed; surface the storage
		// error without reclassifying the file as failed.
		return true, rec.QueuePosition, fmt.Errorf("write renamed copy: %w", err)
	}

	return true, rec.QueuePosition, nil
}

func (uc *ProcessFileUseCase) finishFailed(ctx context.Context, rec *domain.FileRecord, cause error) error {
	rec.Language = unknownLanguage
	rec.Error = cause.Error()
	if err := rec.Complete(false, uc.now()); err != nil {
		return fmt.Errorf("%w; fail transition: %w", cause, err)
	}
	if err := uc.files.Complete(ctx, rec); err != nil {
		return fmt.Errorf("%w; persist failed state: %w", cause, err)
	}
	return domain.WrapError(domain.ErrExtraction, "extract text", cause)
}

// writeRenamedCopy materializes the output file under the synthesized name
// plus timestamp and original extension.
func (uc *ProcessFileUseCase) writeRenamedCopy(ctx context.Context, rec *domain.FileRecord, end time.Time) error {
	src, err := uc.storage.Open(ctx, rec.StoragePath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	outName := naming.OutputFileName(rec.SynthesizedName, rec.OutputType, end)
	if uc.renamedPrefix != "" {
		outName = uc.renamedPrefix + "/" + outName
	}
	if err := uc.storage.Save(ctx, outName, src); err != nil {
		return fmt.Errorf("save output: %w", err)
	}
	return nil
}
