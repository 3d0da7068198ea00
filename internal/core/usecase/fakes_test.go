package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/docnamer/internal/core/domain"
)

type fileRepoFake struct {
	mu      sync.Mutex
	records map[string]*domain.FileRecord
}

func newFileRepoFake() *fileRepoFake {
	return &fileRepoFake{records: make(map[string]*domain.FileRecord)}
}

func (f *fileRepoFake) Create(_ context.Context, rec *domain.FileRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copyRec := *rec
	f.records[rec.ID] = &copyRec
	return nil
}

func (f *fileRepoFake) GetByID(_ context.Context, id string) (*domain.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrFileNotFound, "get file", fmt.Errorf("id=%s", id))
	}
	copyRec := *rec
	return &copyRec, nil
}

func (f *fileRepoFake) MarkProcessing(_ context.Context, id string, start time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return domain.WrapError(domain.ErrFileNotFound, "mark processing", fmt.Errorf("id=%s", id))
	}
	return rec.BeginProcessing(start)
}

func (f *fileRepoFake) Complete(_ context.Context, rec *domain.FileRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.records[rec.ID]
	if !ok {
		return domain.WrapError(domain.ErrFileNotFound, "complete file", fmt.Errorf("id=%s", rec.ID))
	}
	if stored.State.Terminal() {
		return domain.WrapError(domain.ErrIllegalTransition, "complete file",
			fmt.Errorf("id=%s state=%s", rec.ID, stored.State))
	}
	copyRec := *rec
	f.records[rec.ID] = &copyRec
	return nil
}

type outcomeCall struct {
	position  int64
	succeeded int64
	failed    int64
}

type queueRepoFake struct {
	mu           sync.Mutex
	nextPosition int64
	entries      map[int64]*domain.QueueEntry
	totals       domain.AggregateTotals
	outcomeCalls []outcomeCall
	outcomeErr   error
	uploadedErr  error
}

func newQueueRepoFake() *queueRepoFake {
	return &queueRepoFake{entries: make(map[int64]*domain.QueueEntry)}
}

func (f *queueRepoFake) AllocatePosition(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextPosition++
	f.entries[f.nextPosition] = &domain.QueueEntry{Position: f.nextPosition}
	f.totals.TotalQueues++
	return f.nextPosition, nil
}

func (f *queueRepoFake) RecordFileUploaded(_ context.Context, position int64) error {
	if f.uploadedErr != nil {
		return f.uploadedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[position]
	if !ok {
		return domain.WrapError(domain.ErrQueueNotFound, "record uploaded", fmt.Errorf("position=%d", position))
	}
	entry.FilesUploaded++
	f.totals.TotalFiles++
	return nil
}

func (f *queueRepoFake) RecordOutcome(_ context.Context, position int64, succeeded, failed int64) error {
	if f.outcomeErr != nil {
		return f.outcomeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[position]
	if !ok {
		return domain.WrapError(domain.ErrQueueNotFound, "record outcome", fmt.Errorf("position=%d", position))
	}
	entry.FilesTreated += succeeded
	entry.FilesNotTreated += failed
	f.outcomeCalls = append(f.outcomeCalls, outcomeCall{position: position, succeeded: succeeded, failed: failed})
	return nil
}

func (f *queueRepoFake) Stats(_ context.Context, position int64) (domain.QueueStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[position]
	if !ok {
		return domain.QueueStats{}, domain.WrapError(domain.ErrQueueNotFound, "stats", fmt.Errorf("position=%d", position))
	}
	return domain.QueueStats{
		Uploaded:                   entry.FilesUploaded,
		Treated:                    entry.FilesTreated,
		NotTreated:                 entry.FilesNotTreated,
		TotalProcessingTimeSeconds: entry.TotalProcessingSecs,
	}, nil
}

func (f *queueRepoFake) Totals(context.Context) (domain.AggregateTotals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totals, nil
}

type storageFake struct {
	mu    sync.Mutex
	saved map[string]string
	err   error
}

func newStorageFake() *storageFake {
	return &storageFake{saved: make(map[string]string)}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[key] = string(raw)
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.saved[key]
	if !ok {
		return nil, errors.New("object not found: " + key)
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

type extractorFake struct {
	texts map[string]string
	lang  string
	err   error
}

func (f *extractorFake) Extract(_ context.Context, rec *domain.FileRecord) (domain.ExtractionResult, error) {
	if f.err != nil {
		return domain.ExtractionResult{}, f.err
	}
	text := f.texts[rec.ID]
	return domain.ExtractionResult{
		Text:              text,
		OriginalExtension: rec.OutputType,
		Language:          f.lang,
	}, nil
}

type messageQueueFake struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (f *messageQueueFake) PublishFileUploaded(_ context.Context, fileID string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, fileID)
	return nil
}

func (f *messageQueueFake) SubscribeFileUploaded(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}
