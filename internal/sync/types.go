package sync

import "github.com/DrTomLLC/StoryStream/internal/domain"

// Strategy is one of the four configurable conflict resolution policies
// from spec.md §4.7.
type Strategy string

const (
	UseNewest Strategy = "newest"
	UseLocal  Strategy = "local"
	UseRemote Strategy = "remote"
	Merge     Strategy = "merge"
)

// Request is a device's snapshot of unsynced local changes, sent to a peer.
type Request struct {
	DeviceID    string                 `json:"device_id"`
	SinceCursor int64                  `json:"since_cursor"`
	Changes     []*domain.ChangeRecord `json:"changes"`
}

// Response is what a peer returns after integrating a Request: its own
// unintegrated changes, plus the cursor the requesting device should start
// its next push/pull from.
type Response struct {
	RemoteChanges []*domain.ChangeRecord `json:"remote_changes"`
	NewCursor     int64                  `json:"new_cursor"`
}
