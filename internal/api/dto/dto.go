// Package dto holds the control surface's request/response bodies and their
// go-playground/validator rules. Huma already validates request shape
// against the JSON schema it derives from these structs; Validate adds the
// cross-field and business-level rules (e.g. priority enums, URL shape)
// schema validation alone doesn't express.
package dto

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validate      *validator.Validate
)

func get() *validator.Validate {
	validatorOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate runs struct-tag validation over req and returns a single
// formatted error naming every failing field, or nil.
func Validate(req any) error {
	if err := get().Struct(req); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		msg := "validation failed:"
		for _, fe := range verrs {
			msg += fmt.Sprintf(" %s=%s(%s)", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("%s", msg)
	}
	return nil
}

// ScanRequest triggers a one-shot scan and import of every configured library
// root; Root only labels the scan's progress events.
type ScanRequest struct {
	Root string `json:"root,omitempty" validate:"omitempty,dirpath"`
}

// ScanResponse reports how a scan's discovered paths were imported.
type ScanResponse struct {
	PathsFound  int      `json:"paths_found"`
	Imported    int      `json:"imported"`
	FailedPaths []string `json:"failed_paths,omitempty"`
}

// CreateDownloadRequest submits a new download task.
type CreateDownloadRequest struct {
	SourceURL string `json:"source_url" validate:"required,url"`
	DestPath  string `json:"dest_path" validate:"required"`
	Priority  string `json:"priority,omitempty" validate:"omitempty,oneof=low normal high urgent"`
}

// DownloadResponse mirrors a domain.DownloadTask for the control surface.
type DownloadResponse struct {
	ID              string `json:"id"`
	SourceURL       string `json:"source_url"`
	DestPath        string `json:"dest_path"`
	State           string `json:"state"`
	Priority        string `json:"priority"`
	BytesDownloaded int64  `json:"bytes_downloaded"`
	TotalBytes      *int64 `json:"total_bytes,omitempty"`
	FailureReason   string `json:"failure_reason,omitempty"`
}

// SyncPullResponse reports a pull. Applied is the number of remote changes in
// the applied Response, counting any that lost a conflict or failed to apply;
// Skipped is not set and stays 0.
type SyncPullResponse struct {
	Applied int `json:"applied"`
	Skipped int `json:"skipped"`
}

// SearchRequest is the control surface's fuzzy search query.
type SearchRequest struct {
	Query    string `json:"q" query:"q" validate:"omitempty,max=200"`
	Limit    int    `json:"limit,omitempty" query:"limit" validate:"omitempty,min=1,max=200"`
	Offset   int    `json:"offset,omitempty" query:"offset" validate:"omitempty,min=0"`
	Favorite *bool  `json:"favorite,omitempty" query:"favorite"`
}
