package domain

import "time"

type FileState string

const (
	StatePending    FileState = "pending"
	StateProcessing FileState = "processing"
	StateSuccess    FileState = "success"
	StateFailed     FileState = "failed"
)

// Terminal reports whether no further transition is legal from s.
func (s FileState) Terminal() bool {
	return s == StateSuccess || s == StateFailed
}

// FileRecord is one submitted file's lifecycle entry. It is created in state
// pending, moves through processing while extraction runs, and is completed
// exactly once as success or failed. Re-processing a file creates a new record.
type FileRecord struct {
	ID              string       `json:"id"`
	OriginalName    string       `json:"original_name"`
	QueuePosition   int64        `json:"queue_position"`
	SynthesizedName string       `json:"synthesized_name,omitempty"`
	InputType       string       `json:"input_type"`
	OutputType      string       `json:"output_type"`
	StoragePath     string       `json:"storage_path"`
	DocumentType    DocumentType `json:"document_type,omitempty"`
	Language        string       `json:"language,omitempty"`
	ExtractionStart *time.Time   `json:"extraction_start,omitempty"`
	ExtractionEnd   *time.Time   `json:"extraction_end,omitempty"`
	Duration        float64      `json:"duration_seconds"`
	State           FileState    `json:"state"`
	Error           string       `json:"error,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// BeginProcessing stamps the extraction window start and moves the record
// into the processing state.
func (f *FileRecord) BeginProcessing(now time.Time) error {
	if f.State.Terminal() {
		return WrapError(ErrIllegalTransition, "begin processing", stateError(f.State))
	}
	f.State = StateProcessing
	f.ExtractionStart = &now
	f.UpdatedAt = now
	return nil
}

// Complete moves the record into a terminal state, stamps the extraction
// window end and computes the processing duration in the same transition.
// Completing an already-terminal record is an illegal transition.
func (f *FileRecord) Complete(success bool, now time.Time) error {
	if f.State.Terminal() {
		return WrapError(ErrIllegalTransition, "complete file record", stateError(f.State))
	}
	f.ExtractionEnd = &now
	if f.ExtractionStart != nil {
		f.Duration = now.Sub(*f.ExtractionStart).Seconds()
	}
	if success {
		f.State = StateSuccess
	} else {
		f.State = StateFailed
	}
	f.UpdatedAt = now
	return nil
}
