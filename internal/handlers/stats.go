package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/the-aether-lab/aether-lab-api/internal/auth"
	"github.com/the-aether-lab/aether-lab-api/internal/stats"
)

type StatsHandler struct {
	stats       *stats.Service
	authHandler *auth.AuthHandler
}

func NewStatsHandler(statsService *stats.Service, authHandler *auth.AuthHandler) *StatsHandler {
	return &StatsHandler{stats: statsService, authHandler: authHandler}
}

type CollectionStatsRequest struct {
	auth.AuthInput
}

type CollectionStatsResponse struct {
	Body stats.Report
}

func (h *StatsHandler) HandleCollectionStats(ctx context.Context, input *CollectionStatsRequest) (*CollectionStatsResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	report, err := h.stats.ComputeStats(userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to get stats: " + err.Error())
	}

	return &CollectionStatsResponse{Body: *report}, nil
}
