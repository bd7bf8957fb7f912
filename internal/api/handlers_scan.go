package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/DrTomLLC/StoryStream/internal/api/dto"
	"github.com/DrTomLLC/StoryStream/internal/importer"
	"github.com/DrTomLLC/StoryStream/internal/sse"
)

type scanInput struct {
	Body dto.ScanRequest
}

type scanOutput struct {
	Body dto.ScanResponse
}

func (s *Server) registerScanRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "triggerScan",
		Method:      http.MethodPost,
		Path:        "/api/v1/scan",
		Summary:     "Scan the library roots and import discovered audiobooks",
		Description: "Runs a one-shot enumeration (spec.md §4.3) over every configured library root, then imports " +
			"every discovered file or folder (§4.4) into the catalog. Progress is also emitted over /events; " +
			"the request's root only labels those events.",
		Tags: []string{"Library"},
	}, s.handleScan)
}

func (s *Server) handleScan(ctx context.Context, input *scanInput) (*scanOutput, error) {
	if err := dto.Validate(input.Body); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	root := input.Body.Root
	if s.sseManager != nil {
		s.sseManager.Emit(sse.NewScanStartedEvent(root))
	}

	paths, err := s.scanner.Scan(ctx)
	if err != nil {
		if s.sseManager != nil {
			s.sseManager.Emit(sse.NewScanErrorEvent(root, err))
		}
		return nil, huma.Error502BadGateway("scan failed", err)
	}

	out := dto.ScanResponse{PathsFound: len(paths)}
	for _, path := range paths {
		if _, err := s.importer.ImportFile(ctx, path, importer.Options{ExtractCover: true}); err != nil {
			s.logger.Warn("api: import failed during scan", "path", path, "error", err)
			out.FailedPaths = append(out.FailedPaths, path)
			continue
		}
		out.Imported++
	}

	if s.sseManager != nil {
		s.sseManager.Emit(sse.NewScanCompletedEvent(root, out.Imported))
	}

	return &scanOutput{Body: out}, nil
}
