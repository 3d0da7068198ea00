package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/docnamer/internal/core/domain"
)

const defaultBatchWorkers = 4

// SetBatchWorkers bounds the concurrency of bulk processing. Values below 1
// fall back to the default pool size.
func (uc *ProcessFileUseCase) SetBatchWorkers(n int) {
	if n < 1 {
		n = defaultBatchWorkers
	}
	uc.batchWorkers = n
}

// ProcessBatch processes all files of one bulk submission with a bounded
// worker pool. Per-file failures are isolated: one file's extraction error
// never aborts its siblings. The aggregate outcome is recorded once against
// the owning queue entry, so final counts equal the sum of individual
// outcomes regardless of completion order.
func (uc *ProcessFileUseCase) ProcessBatch(ctx context.Context, queuePosition int64, fileIDs []string) (*domain.BatchResult, error) {
	if queuePosition <= 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "process batch",
			fmt.Errorf("queue position is required"))
	}

	result := &domain.BatchResult{
		BatchID: newBatchID(),
		Items:   make([]domain.BatchItem, len(fileIDs)),
	}

	workers := uc.batchWorkers
	if workers < 1 {
		workers = defaultBatchWorkers
	}

	// positions[i] stays zero for files rejected before any state mutation;
	// those must not reach the queue counters.
	positions := make([]int64, len(fileIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, fileID := range fileIDs {
		g.Go(func() error {
			item := domain.BatchItem{FileID: fileID}
			success, position, err := uc.processOne(gctx, fileID)
			item.Success = success
			positions[i] = position
			if err != nil {
				item.Error = err.Error()
			}
			if rec, getErr := uc.files.GetByID(gctx, fileID); getErr == nil {
				item.OriginalName = rec.OriginalName
				item.SynthesizedName = rec.SynthesizedName
			}
			result.Items[i] = item
			// Failures are reported per item, never as a group error.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch wait: %w", err)
	}

	var succeeded, failed int64
	for i, item := range result.Items {
		if item.Success {
			result.Succeeded++
			succeeded++
			continue
		}
		result.Failed++
		if positions[i] != 0 {
			failed++
		}
	}

	if err := uc.queues.RecordOutcome(ctx, queuePosition, succeeded, failed); err != nil {
		return result, fmt.Errorf("record batch outcome: %w", err)
	}
	return result, nil
}

func newBatchID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
