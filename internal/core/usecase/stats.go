package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/docnamer/internal/core/domain"
	"github.com/kirillkom/docnamer/internal/core/ports"
)

type QueueStatsUseCase struct {
	queues ports.QueueRepository
}

func NewQueueStatsUseCase(queues ports.QueueRepository) *QueueStatsUseCase {
	return &QueueStatsUseCase{queues: queues}
}

// AllocatePosition returns a fresh queue position. Uniqueness under
// concurrent callers is the repository's contract (an atomic sequence, never
// count-then-add-one).
func (uc *QueueStatsUseCase) AllocatePosition(ctx context.Context) (int64, error) {
	position, err := uc.queues.AllocatePosition(ctx)
	if err != nil {
		return 0, fmt.Errorf("allocate queue position: %w", err)
	}
	return position, nil
}

func (uc *QueueStatsUseCase) Stats(ctx context.Context, position int64) (domain.QueueStats, error) {
	if position <= 0 {
		return domain.QueueStats{}, domain.WrapError(domain.ErrInvalidInput, "queue stats",
			fmt.Errorf("queue position is required"))
	}
	stats, err := uc.queues.Stats(ctx, position)
	if err != nil {
		return domain.QueueStats{}, fmt.Errorf("load queue stats: %w", err)
	}
	return stats, nil
}

func (uc *QueueStatsUseCase) Totals(ctx context.Context) (domain.AggregateTotals, error) {
	totals, err := uc.queues.Totals(ctx)
	if err != nil {
		return domain.AggregateTotals{}, fmt.Errorf("load aggregate totals: %w", err)
	}
	return totals, nil
}
