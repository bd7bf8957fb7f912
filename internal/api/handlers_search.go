package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/DrTomLLC/StoryStream/internal/api/dto"
	"github.com/DrTomLLC/StoryStream/internal/search"
)

type searchInput struct {
	Query    string `query:"q" doc:"Free-text search query"`
	Limit    int    `query:"limit" doc:"Max results" default:"20"`
	Offset   int    `query:"offset" doc:"Pagination offset"`
	Favorite *bool  `query:"favorite" doc:"Filter to favorites only"`
}

type searchOutput struct {
	Body *search.Result
}

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Fuzzy full-text search over the catalog",
		Description: "Typo-tolerant search over title/author/narrator/series, complementing SQLite FTS5's exact matching.",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

func (s *Server) handleSearch(_ context.Context, input *searchInput) (*searchOutput, error) {
	req := dto.SearchRequest{Query: input.Query, Limit: input.Limit, Offset: input.Offset, Favorite: input.Favorite}
	if err := dto.Validate(req); err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	params := search.DefaultParams()
	params.Query = input.Query
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	params.Offset = input.Offset
	params.Favorite = input.Favorite

	result, err := s.searchIndex.Search(params)
	if err != nil {
		return nil, huma.Error500InternalServerError("search failed", err)
	}
	return &searchOutput{Body: result}, nil
}
