package domain

import "time"

// DownloadPriority orders a DownloadTask's place in the scheduling queue.
type DownloadPriority int

const (
	PriorityLow DownloadPriority = iota
	PriorityNormal
	PriorityHigh
	PriorityUrgent
)

func (p DownloadPriority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	default:
		return "unknown"
	}
}

// DownloadState is the lifecycle state of a DownloadTask.
type DownloadState string

const (
	DownloadQueued    DownloadState = "queued"
	DownloadRunning   DownloadState = "running"
	DownloadPaused    DownloadState = "paused"
	DownloadComplete  DownloadState = "complete"
	DownloadFailed    DownloadState = "failed"
	DownloadCancelled DownloadState = "cancelled"
)

// DownloadTask is a single scheduled byte-range download.
type DownloadTask struct {
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`
	ID               string           `json:"id"`
	SourceURL        string           `json:"source_url"`
	DestPath         string           `json:"dest_path"`
	ETag             string           `json:"etag,omitempty"`
	LastModified     string           `json:"last_modified,omitempty"`
	FailureReason    string           `json:"failure_reason,omitempty"`
	Priority         DownloadPriority `json:"priority"`
	State            DownloadState    `json:"state"`
	BytesDownloaded  int64            `json:"bytes_downloaded"`
	TotalBytes       *int64           `json:"total_bytes,omitempty"`
	SubmittedSeq     uint64           `json:"submitted_seq"`
	Attempts         int              `json:"attempts"`
	ExpectedChecksum string           `json:"expected_checksum,omitempty"` // hex blake2b-256, optional
	ActualChecksum   string           `json:"actual_checksum,omitempty"`
}

// NewDownloadTask creates a queued task, ready to enter the scheduler.
func NewDownloadTask(id, sourceURL, destPath string, priority DownloadPriority, submittedSeq uint64) *DownloadTask {
	now := time.Now()
	return &DownloadTask{
		ID:           id,
		SourceURL:    sourceURL,
		DestPath:     destPath,
		Priority:     priority,
		State:        DownloadQueued,
		SubmittedSeq: submittedSeq,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Progress returns (bytes_so_far, total_bytes_or_unknown).
func (t *DownloadTask) Progress() (int64, *int64) {
	return t.BytesDownloaded, t.TotalBytes
}

// MarkComplete transitions the task to Complete.
func (t *DownloadTask) MarkComplete() {
	now := time.Now()
	t.State = DownloadComplete
	t.CompletedAt = &now
	t.UpdatedAt = now
}

// MarkFailed transitions the task to Failed with a terminal reason.
func (t *DownloadTask) MarkFailed(reason string) {
	t.State = DownloadFailed
	t.FailureReason = reason
	t.UpdatedAt = time.Now()
}
