package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kirillkom/docnamer/internal/core/domain"
)

type selectiveExtractorFake struct {
	failIDs map[string]bool
}

func (f *selectiveExtractorFake) Extract(_ context.Context, rec *domain.FileRecord) (domain.ExtractionResult, error) {
	if f.failIDs[rec.ID] {
		return domain.ExtractionResult{}, fmt.Errorf("engine error for %s", rec.ID)
	}
	return domain.ExtractionResult{Text: "report findings for " + rec.ID, Language: "en"}, nil
}

func TestProcessBatchMixedOutcomes(t *testing.T) {
	files := newFileRepoFake()
	queues := newQueueRepoFake()
	storage := newStorageFake()

	position, _ := queues.AllocatePosition(context.Background())
	var ids []string
	for i := range 6 {
		id := fmt.Sprintf("f-%d", i)
		ids = append(ids, id)
		rec := &domain.FileRecord{
			ID:            id,
			OriginalName:  id + ".txt",
			QueuePosition: position,
			OutputType:    ".txt",
			StoragePath:   "stored_" + id,
			State:         domain.StatePending,
		}
		if err := files.Create(context.Background(), rec); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := queues.RecordFileUploaded(context.Background(), position); err != nil {
			t.Fatalf("RecordFileUploaded() error = %v", err)
		}
		seedStorage(t, storage, rec.StoragePath)
	}

	extractor := &selectiveExtractorFake{failIDs: map[string]bool{"f-1": true, "f-4": true}}
	uc := NewProcessFileUseCase(files, queues, storage, extractor)
	uc.SetBatchWorkers(3)

	result, err := uc.ProcessBatch(context.Background(), position, ids)
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if result.BatchID == "" {
		t.Fatalf("expected batch id")
	}
	if result.Succeeded != 4 || result.Failed != 2 {
		t.Fatalf("succeeded/failed = %d/%d, want 4/2", result.Succeeded, result.Failed)
	}
	if len(result.Items) != 6 {
		t.Fatalf("expected 6 items, got %d", len(result.Items))
	}

	for _, item := range result.Items {
		shouldFail := item.FileID == "f-1" || item.FileID == "f-4"
		if item.Success == shouldFail {
			t.Fatalf("item %s success=%v, want %v", item.FileID, item.Success, !shouldFail)
		}
		if shouldFail && item.Error == "" {
			t.Fatalf("failed item %s missing error", item.FileID)
		}
	}

	// Bulk submissions record one aggregate outcome, not one per file.
	if len(queues.outcomeCalls) != 1 {
		t.Fatalf("expected 1 bulk outcome call, got %d", len(queues.outcomeCalls))
	}
	call := queues.outcomeCalls[0]
	if call.succeeded != 4 || call.failed != 2 {
		t.Fatalf("bulk outcome %+v, want 4/2", call)
	}

	stats, _ := queues.Stats(context.Background(), position)
	if stats.Treated != 4 || stats.NotTreated != 2 {
		t.Fatalf("treated/notTreated = %d/%d, want 4/2", stats.Treated, stats.NotTreated)
	}
	if stats.Treated+stats.NotTreated > stats.Uploaded {
		t.Fatalf("counter invariant violated: %+v", stats)
	}
}

func TestProcessBatchRequiresQueuePosition(t *testing.T) {
	uc := NewProcessFileUseCase(newFileRepoFake(), newQueueRepoFake(), newStorageFake(), &extractorFake{})
	_, err := uc.ProcessBatch(context.Background(), 0, []string{"f-1"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProcessBatchIsolatesUnknownFiles(t *testing.T) {
	files := newFileRepoFake()
	queues := newQueueRepoFake()
	storage := newStorageFake()
	position, _ := queues.AllocatePosition(context.Background())

	rec := &domain.FileRecord{
		ID:            "known",
		QueuePosition: position,
		OutputType:    ".txt",
		StoragePath:   "stored_known",
		State:         domain.StatePending,
	}
	if err := files.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := queues.RecordFileUploaded(context.Background(), position); err != nil {
		t.Fatalf("RecordFileUploaded() error = %v", err)
	}
	seedStorage(t, storage, "stored_known")

	uc := NewProcessFileUseCase(files, queues, storage, &extractorFake{texts: map[string]string{"known": "some body"}})
	result, err := uc.ProcessBatch(context.Background(), position, []string{"known", "missing"})
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if result.Succeeded != 1 || result.Failed != 1 {
		t.Fatalf("succeeded/failed = %d/%d, want 1/1", result.Succeeded, result.Failed)
	}

	// The unknown file never mutated state, so it must not reach counters.
	stats, _ := queues.Stats(context.Background(), position)
	if stats.Treated != 1 || stats.NotTreated != 0 {
		t.Fatalf("treated/notTreated = %d/%d, want 1/0", stats.Treated, stats.NotTreated)
	}
	if stats.Treated+stats.NotTreated > stats.Uploaded {
		t.Fatalf("counter invariant violated: %+v", stats)
	}
}

func seedStorage(t *testing.T, storage *storageFake, key string) {
	t.Helper()
	if err := storage.Save(context.Background(), key, strings.NewReader("payload")); err != nil {
		t.Fatalf("seed storage: %v", err)
	}
}
