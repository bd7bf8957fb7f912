package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/DrTomLLC/StoryStream/internal/api/dto"
	"github.com/DrTomLLC/StoryStream/internal/sse"
	"github.com/DrTomLLC/StoryStream/internal/sync"
)

type syncPushOutput struct {
	Body *sync.Request
}

type syncPullInput struct {
	Body sync.Response
}

type syncPullOutput struct {
	Body dto.SyncPullResponse
}

func (s *Server) registerSyncRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createSyncPush",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/push",
		Summary:     "Snapshot this device's unsynced changes",
		Description: "Returns the Request a peer should apply via /sync/pull, per spec.md §4.7.",
		Tags:        []string{"Sync"},
	}, s.handleSyncPush)

	huma.Register(s.api, huma.Operation{
		OperationID: "applySyncPull",
		Method:      http.MethodPost,
		Path:        "/api/v1/sync/pull",
		Summary:     "Apply a peer's sync Response",
		Description: "Resolves conflicts against local unsynced changes and integrates the survivors.",
		Tags:        []string{"Sync"},
	}, s.handleSyncPull)
}

func (s *Server) handleSyncPush(ctx context.Context, _ *struct{}) (*syncPushOutput, error) {
	req, err := s.syncEngine.CreateSyncRequest(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("create sync request", err)
	}
	return &syncPushOutput{Body: req}, nil
}

func (s *Server) handleSyncPull(ctx context.Context, input *syncPullInput) (*syncPullOutput, error) {
	if err := s.syncEngine.ApplyResponse(ctx, &input.Body); err != nil {
		return nil, huma.Error502BadGateway("apply sync response", err)
	}
	if s.sseManager != nil {
		s.sseManager.Emit(sse.NewSyncCompletedEvent(0, len(input.Body.RemoteChanges)))
	}
	return &syncPullOutput{Body: dto.SyncPullResponse{Applied: len(input.Body.RemoteChanges)}}, nil
}
