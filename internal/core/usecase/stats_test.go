package usecase

import (
	"context"
	"testing"

	"github.com/kirillkom/docnamer/internal/core/domain"
)

func TestQueueStatsAllocateAndRead(t *testing.T) {
	queues := newQueueRepoFake()
	uc := NewQueueStatsUseCase(queues)

	first, err := uc.AllocatePosition(context.Background())
	if err != nil {
		t.Fatalf("AllocatePosition() error = %v", err)
	}
	second, err := uc.AllocatePosition(context.Background())
	if err != nil {
		t.Fatalf("AllocatePosition() error = %v", err)
	}
	if first == second {
		t.Fatalf("positions collide: %d", first)
	}

	stats, err := uc.Stats(context.Background(), first)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Uploaded != 0 || stats.Treated != 0 {
		t.Fatalf("fresh entry has non-zero counters: %+v", stats)
	}

	totals, err := uc.Totals(context.Background())
	if err != nil {
		t.Fatalf("Totals() error = %v", err)
	}
	if totals.TotalQueues != 2 {
		t.Fatalf("total queues = %d, want 2", totals.TotalQueues)
	}
}

func TestQueueStatsRejectsMissingPosition(t *testing.T) {
	uc := NewQueueStatsUseCase(newQueueRepoFake())
	_, err := uc.Stats(context.Background(), 0)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
