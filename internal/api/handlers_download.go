package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/DrTomLLC/StoryStream/internal/api/dto"
	"github.com/DrTomLLC/StoryStream/internal/domain"
	"github.com/DrTomLLC/StoryStream/internal/id"
)

type createDownloadInput struct {
	Body dto.CreateDownloadRequest
}

type downloadOutput struct {
	Body dto.DownloadResponse
}

type downloadIDInput struct {
	ID string `path:"id"`
}

func (s *Server) registerDownloadRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createDownload",
		Method:      http.MethodPost,
		Path:        "/api/v1/downloads",
		Summary:     "Submit a download task",
		Description: "Enqueues a byte-range download under C5's scheduler (spec.md §4.5).",
		Tags:        []string{"Downloads"},
	}, s.handleCreateDownload)

	huma.Register(s.api, huma.Operation{
		OperationID: "getDownload",
		Method:      http.MethodGet,
		Path:        "/api/v1/downloads/{id}",
		Summary:     "Get a download task's current state",
		Tags:        []string{"Downloads"},
	}, s.handleGetDownload)

	huma.Register(s.api, huma.Operation{
		OperationID: "pauseDownload",
		Method:      http.MethodPost,
		Path:        "/api/v1/downloads/{id}/pause",
		Summary:     "Pause a running or queued download",
		Tags:        []string{"Downloads"},
	}, s.handlePauseDownload)

	huma.Register(s.api, huma.Operation{
		OperationID: "resumeDownload",
		Method:      http.MethodPost,
		Path:        "/api/v1/downloads/{id}/resume",
		Summary:     "Resume a paused download",
		Tags:        []string{"Downloads"},
	}, s.handleResumeDownload)

	huma.Register(s.api, huma.Operation{
		OperationID: "cancelDownload",
		Method:      http.MethodDelete,
		Path:        "/api/v1/downloads/{id}",
		Summary:     "Cancel a download and discard its partial file",
		Tags:        []string{"Downloads"},
	}, s.handleCancelDownload)
}

func downloadPriority(s string) domain.DownloadPriority {
	switch s {
	case "low":
		return domain.PriorityLow
	case "high":
		return domain.PriorityHigh
	case "urgent":
		return domain.PriorityUrgent
	default:
		return domain.PriorityNormal
	}
}

func toDownloadResponse(t *domain.DownloadTask) dto.DownloadResponse {
	return dto.DownloadResponse{
		ID:              t.ID,
		SourceURL:       t.SourceURL,
		DestPath:        t.DestPath,
		State:           string(t.State),
		Priority:        t.Priority.String(),
		BytesDownloaded: t.BytesDownloaded,
		TotalBytes:      t.TotalBytes,
		FailureReason:   t.FailureReason,
	}
}

func (s *Server) handleCreateDownload(_ context.Context, input *createDownloadInput) (*downloadOutput, error) {
	if err := dto.Validate(input.Body); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	taskID, err := id.Generate("dl")
	if err != nil {
		return nil, huma.Error500InternalServerError("generate task id", err)
	}

	task := domain.NewDownloadTask(taskID, input.Body.SourceURL, input.Body.DestPath, downloadPriority(input.Body.Priority), 0)
	s.downloads.Submit(task)

	return &downloadOutput{Body: toDownloadResponse(task)}, nil
}

func (s *Server) handleGetDownload(_ context.Context, input *downloadIDInput) (*downloadOutput, error) {
	task, err := s.downloads.Get(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound("download not found")
	}
	return &downloadOutput{Body: toDownloadResponse(task)}, nil
}

func (s *Server) handlePauseDownload(_ context.Context, input *downloadIDInput) (*struct{}, error) {
	if err := s.downloads.Pause(input.ID); err != nil {
		return nil, huma.Error404NotFound("download not found")
	}
	return nil, nil
}

func (s *Server) handleResumeDownload(_ context.Context, input *downloadIDInput) (*struct{}, error) {
	if err := s.downloads.Resume(input.ID); err != nil {
		return nil, huma.Error404NotFound("download not found")
	}
	return nil, nil
}

func (s *Server) handleCancelDownload(ctx context.Context, input *downloadIDInput) (*struct{}, error) {
	if err := s.downloads.Cancel(ctx, input.ID); err != nil {
		return nil, huma.Error404NotFound("download not found")
	}
	return nil, nil
}
