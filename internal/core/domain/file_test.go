package domain

import (
	"testing"
	"time"
)

func TestFileRecordLifecycle(t *testing.T) {
	start := time.Date(2023, 1, 2, 15, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Second)

	rec := FileRecord{ID: "f-1", State: StatePending}
	if err := rec.BeginProcessing(start); err != nil {
		t.Fatalf("BeginProcessing() error = %v", err)
	}
	if rec.State != StateProcessing {
		t.Fatalf("state = %s, want processing", rec.State)
	}
	if err := rec.Complete(true, end); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if rec.State != StateSuccess {
		t.Fatalf("state = %s, want success", rec.State)
	}
	if rec.Duration != 3 {
		t.Fatalf("duration = %v, want 3s", rec.Duration)
	}
	if rec.ExtractionEnd == nil || !rec.ExtractionEnd.Equal(end) {
		t.Fatalf("extraction end not stamped")
	}
}

func TestFileRecordDoubleCompletionRejected(t *testing.T) {
	now := time.Now().UTC()
	rec := FileRecord{ID: "f-1", State: StatePending}
	if err := rec.Complete(false, now); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if rec.State != StateFailed {
		t.Fatalf("state = %s, want failed", rec.State)
	}

	err := rec.Complete(true, now)
	if err == nil {
		t.Fatalf("expected illegal transition error")
	}
	if !IsKind(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
	if rec.State != StateFailed {
		t.Fatalf("terminal state mutated to %s", rec.State)
	}
}

func TestFileRecordNoTransitionOutOfTerminal(t *testing.T) {
	rec := FileRecord{ID: "f-1", State: StateSuccess}
	if err := rec.BeginProcessing(time.Now().UTC()); err == nil {
		t.Fatalf("expected illegal transition error")
	}
}
