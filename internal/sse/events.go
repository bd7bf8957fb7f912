// Package sse implements Server-Sent Events progress streaming for the
// control surface: scan, download, and sync engines all run on background
// goroutines with no caller to report progress to directly, so they emit
// through a shared Manager instead.
package sse

import "time"

// EventType identifies the kind of progress event.
type EventType string

const (
	EventScanStarted   EventType = "scan.started"
	EventScanProgress  EventType = "scan.progress"
	EventScanCompleted EventType = "scan.completed"
	EventScanError     EventType = "scan.error"

	EventDownloadProgress EventType = "download.progress"
	EventDownloadComplete EventType = "download.completed"
	EventDownloadFailed   EventType = "download.failed"

	EventSyncStarted   EventType = "sync.started"
	EventSyncCompleted EventType = "sync.completed"

	EventHeartbeat EventType = "heartbeat"
)

// Event is a single entry in the broadcast stream.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// ScanEventData is the payload for scan.* events.
type ScanEventData struct {
	Root  string `json:"root"`
	Count int    `json:"count,omitempty"`
	Error string `json:"error,omitempty"`
}

// DownloadEventData is the payload for download.* events.
type DownloadEventData struct {
	TaskID          string `json:"task_id"`
	BytesDownloaded int64  `json:"bytes_downloaded"`
	TotalBytes      int64  `json:"total_bytes"`
	State           string `json:"state"`
	FailureReason   string `json:"failure_reason,omitempty"`
}

// SyncEventData is the payload for sync.* events.
type SyncEventData struct {
	PushedChanges int `json:"pushed_changes"`
	PulledChanges int `json:"pulled_changes"`
}

func NewScanStartedEvent(root string) Event {
	return Event{Type: EventScanStarted, Timestamp: time.Now(), Data: ScanEventData{Root: root}}
}

func NewScanCompletedEvent(root string, count int) Event {
	return Event{Type: EventScanCompleted, Timestamp: time.Now(), Data: ScanEventData{Root: root, Count: count}}
}

func NewScanErrorEvent(root string, err error) Event {
	return Event{Type: EventScanError, Timestamp: time.Now(), Data: ScanEventData{Root: root, Error: err.Error()}}
}

func NewDownloadProgressEvent(taskID string, downloaded, total int64, state string) Event {
	return Event{
		Type:      EventDownloadProgress,
		Timestamp: time.Now(),
		Data:      DownloadEventData{TaskID: taskID, BytesDownloaded: downloaded, TotalBytes: total, State: state},
	}
}

func NewSyncCompletedEvent(pushed, pulled int) Event {
	return Event{Type: EventSyncCompleted, Timestamp: time.Now(), Data: SyncEventData{PushedChanges: pushed, PulledChanges: pulled}}
}

func NewHeartbeatEvent() Event {
	return Event{Type: EventHeartbeat, Timestamp: time.Now()}
}
