// Package memory holds in-process implementations of the repository ports.
// They back single-node deployments and tests that need real repository
// semantics without Postgres.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kirillkom/docnamer/internal/core/domain"
)

// FileRepository keeps file records in a mutex-guarded map. Records are
// stored by value so callers never share mutable state with the store.
type FileRepository struct {
	mu      sync.RWMutex
	records map[string]domain.FileRecord
}

func NewFileRepository() *FileRepository {
	return &FileRepository{records: make(map[string]domain.FileRecord)}
}

func (r *FileRepository) Create(_ context.Context, rec *domain.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.ID]; ok {
		return domain.WrapError(domain.ErrInvalidInput, "create file record",
			fmt.Errorf("duplicate id %s", rec.ID))
	}
	r.records[rec.ID] = *rec
	return nil
}

func (r *FileRepository) GetByID(_ context.Context, id string) (*domain.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrFileNotFound, "get file record", fmt.Errorf("id=%s", id))
	}
	out := rec
	return &out, nil
}

func (r *FileRepository) MarkProcessing(_ context.Context, id string, start time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return domain.WrapError(domain.ErrFileNotFound, "mark processing", fmt.Errorf("id=%s", id))
	}
	if rec.State != domain.StatePending {
		return domain.WrapError(domain.ErrIllegalTransition, "mark processing",
			fmt.Errorf("state=%s", rec.State))
	}
	rec.State = domain.StateProcessing
	rec.ExtractionStart = &start
	rec.UpdatedAt = start
	r.records[id] = rec
	return nil
}

// Complete applies the terminal transition under the store lock, so two
// concurrent completions of the same record cannot both win.
func (r *FileRepository) Complete(_ context.Context, rec *domain.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.records[rec.ID]
	if !ok {
		return domain.WrapError(domain.ErrFileNotFound, "complete file record", fmt.Errorf("id=%s", rec.ID))
	}
	if stored.State.Terminal() {
		return domain.WrapError(domain.ErrIllegalTransition, "complete file record",
			fmt.Errorf("state=%s", stored.State))
	}
	r.records[rec.ID] = *rec
	return nil
}

// QueueRepository keeps queue entries and the aggregate totals in memory.
// Position allocation is a counter increment under the lock; it is never
// derived from the entry count, so deletions or gaps cannot cause reuse.
type QueueRepository struct {
	mu           sync.Mutex
	nextPosition int64
	entries      map[int64]*domain.QueueEntry
	files        *FileRepository
	totals       domain.AggregateTotals
}

// NewQueueRepository wires the queue store to the file store it recomputes
// processing totals from.
func NewQueueRepository(files *FileRepository) *QueueRepository {
	return &QueueRepository{
		entries: make(map[int64]*domain.QueueEntry),
		files:   files,
	}
}

func (r *QueueRepository) AllocatePosition(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextPosition++
	position := r.nextPosition
	r.entries[position] = &domain.QueueEntry{Position: position, CreatedAt: time.Now().UTC()}
	r.totals.TotalQueues++
	return position, nil
}

func (r *QueueRepository) RecordFileUploaded(_ context.Context, position int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[position]
	if !ok {
		return domain.WrapError(domain.ErrQueueNotFound, "record file uploaded",
			fmt.Errorf("position=%d", position))
	}
	entry.FilesUploaded++
	r.totals.TotalFiles++
	return nil
}

// RecordOutcome applies the counter deltas and recomputes the entry's total
// processing time from its successful file records, mirroring the SQL
// implementation's re-aggregation.
func (r *QueueRepository) RecordOutcome(_ context.Context, position int64, succeeded, failed int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[position]
	if !ok {
		return domain.WrapError(domain.ErrQueueNotFound, "record outcome",
			fmt.Errorf("position=%d", position))
	}
	entry.FilesTreated += succeeded
	entry.FilesNotTreated += failed
	entry.TotalProcessingSecs = r.sumSuccessDurations(position)
	return nil
}

func (r *QueueRepository) sumSuccessDurations(position int64) float64 {
	if r.files == nil {
		return 0
	}
	r.files.mu.RLock()
	defer r.files.mu.RUnlock()
	var total float64
	for _, rec := range r.files.records {
		if rec.QueuePosition == position && rec.State == domain.StateSuccess {
			total += rec.Duration
		}
	}
	return total
}

func (r *QueueRepository) Stats(_ context.Context, position int64) (domain.QueueStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[position]
	if !ok {
		return domain.QueueStats{}, domain.WrapError(domain.ErrQueueNotFound, "queue stats",
			fmt.Errorf("position=%d", position))
	}
	return domain.QueueStats{
		Uploaded:                   entry.FilesUploaded,
		Treated:                    entry.FilesTreated,
		NotTreated:                 entry.FilesNotTreated,
		TotalProcessingTimeSeconds: entry.TotalProcessingSecs,
	}, nil
}

func (r *QueueRepository) Totals(_ context.Context) (domain.AggregateTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totals, nil
}
