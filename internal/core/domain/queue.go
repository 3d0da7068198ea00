package domain

import "time"

// QueueEntry aggregates one user's processing session. The position is a
// storage-allocated monotonic token; counters are mutated on every file
// completion belonging to the entry.
type QueueEntry struct {
	Position            int64     `json:"position"`
	FilesUploaded       int64     `json:"files_uploaded"`
	FilesTreated        int64     `json:"files_treated"`
	FilesNotTreated     int64     `json:"files_not_treated"`
	TotalProcessingSecs float64   `json:"total_processing_seconds"`
	CreatedAt           time.Time `json:"created_at"`
}

// QueueStats is the read model exposed to callers.
type QueueStats struct {
	Uploaded                   int64   `json:"uploaded"`
	Treated                    int64   `json:"treated"`
	NotTreated                 int64   `json:"not_treated"`
	TotalProcessingTimeSeconds float64 `json:"total_processing_time_seconds"`
}

// AggregateTotals is the process-wide singleton aggregate: one logical row,
// incremented on queue/file creation events.
type AggregateTotals struct {
	TotalQueues int64 `json:"total_queues"`
	TotalFiles  int64 `json:"total_files"`
}

// BatchItem is the per-file outcome of a bulk submission.
type BatchItem struct {
	FileID          string `json:"file_id"`
	OriginalName    string `json:"original_name"`
	SynthesizedName string `json:"synthesized_name,omitempty"`
	Success         bool   `json:"success"`
	Error           string `json:"error,omitempty"`
}

// BatchResult records per-file outcomes plus aggregate counts for one bulk
// submission. One file's failure never aborts its siblings.
type BatchResult struct {
	BatchID   string      `json:"batch_id"`
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}
