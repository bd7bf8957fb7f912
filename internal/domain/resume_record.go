package domain

import "time"

// ResumeRecord is the durable byte-range progress checkpoint for a single
// download source URL, independent of whatever DownloadTask currently
// references that URL. It survives process restarts so an interrupted
// download resumes from BytesDownloaded instead of restarting from zero,
// and its ETag/LastModified let the downloader detect that the remote
// resource changed underneath it and the partial bytes must be discarded.
type ResumeRecord struct {
	URL             string    `json:"url"`
	TempPath        string    `json:"temp_path"`
	ETag            string    `json:"etag,omitempty"`
	LastModified    string    `json:"last_modified,omitempty"`
	BytesDownloaded int64     `json:"bytes_downloaded"`
	TotalBytes      int64     `json:"total_bytes,omitempty"` // 0 = unknown
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewResumeRecord starts a fresh checkpoint for url at offset zero.
func NewResumeRecord(url, tempPath string) *ResumeRecord {
	return &ResumeRecord{
		URL:       url,
		TempPath:  tempPath,
		UpdatedAt: time.Now(),
	}
}

// Validator returns the source's validator headers, used to detect that the
// remote resource changed since the checkpoint was written.
func (r *ResumeRecord) Validator() (etag, lastModified string) {
	return r.ETag, r.LastModified
}

// Advance records bytesWritten additional bytes landed at TempPath.
func (r *ResumeRecord) Advance(bytesWritten int64) {
	r.BytesDownloaded += bytesWritten
	r.UpdatedAt = time.Now()
}

// StaleAgainst reports whether the remote resource's current validator
// headers no longer match the checkpoint's, meaning the partial download
// must be discarded and restarted rather than resumed.
func (r *ResumeRecord) StaleAgainst(etag, lastModified string) bool {
	if r.ETag != "" && etag != "" {
		return r.ETag != etag
	}
	if r.LastModified != "" && lastModified != "" {
		return r.LastModified != lastModified
	}
	return false
}
