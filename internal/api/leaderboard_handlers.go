package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/zoneinapp/zonein-server/internal/timezone"
)

func (s *Server) registerLeaderboardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getLeaderboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/leaderboard",
		Summary:     "Get leaderboard",
		Description: "Returns published reports ranked by score with reaction counts. Anonymous access allowed.",
		Tags:        []string{"Leaderboard"},
	}, s.handleGetLeaderboard)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLifetimeLeaderboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/leaderboard/lifetime",
		Summary:     "Get lifetime leaderboard",
		Description: "Returns accounts ranked by their lifetime max score. Anonymous access allowed.",
		Tags:        []string{"Leaderboard"},
	}, s.handleGetLifetimeLeaderboard)

	huma.Register(s.api, huma.Operation{
		OperationID: "publishReport",
		Method:      http.MethodPost,
		Path:        "/api/v1/leaderboard/reports/{id}/publish",
		Summary:     "Publish report",
		Description: "Makes one of the user's reports visible on the public leaderboard",
		Tags:        []string{"Leaderboard"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handlePublishReport)

	huma.Register(s.api, huma.Operation{
		OperationID: "unpublishReport",
		Method:      http.MethodPost,
		Path:        "/api/v1/leaderboard/reports/{id}/unpublish",
		Summary:     "Unpublish report",
		Description: "Removes one of the user's reports from the public leaderboard",
		Tags:        []string{"Leaderboard"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnpublishReport)

	huma.Register(s.api, huma.Operation{
		OperationID: "reactToReport",
		Method:      http.MethodPost,
		Path:        "/api/v1/leaderboard/reports/{id}/react",
		Summary:     "React to report",
		Description: "Records the user's emoji reaction on a published report. A new emoji replaces the previous one.",
		Tags:        []string{"Leaderboard"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReact)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeReaction",
		Method:      http.MethodDelete,
		Path:        "/api/v1/leaderboard/reports/{id}/react",
		Summary:     "Remove reaction",
		Description: "Removes the user's reaction from a report",
		Tags:        []string{"Leaderboard"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUnreact)
}

// === DTOs ===

// LeaderboardEntryResponse is one ranked report tailored to the viewer.
// Owner email is deliberately absent: the leaderboard is public.
type LeaderboardEntryResponse struct {
	Rank           int            `json:"rank" doc:"1-based position"`
	Report         ReportResponse `json:"report" doc:"The published report"`
	OwnerName      string         `json:"owner_name" doc:"Owner display name"`
	OwnerUsername  string         `json:"owner_username" doc:"Owner public handle"`
	Reactions      map[string]int `json:"reactions" doc:"Reaction counts by emoji"`
	ViewerReaction string         `json:"viewer_reaction,omitempty" doc:"The viewer's own emoji, if any"`
	IsOwnReport    bool           `json:"is_own_report" doc:"True when the viewer owns this report"`
}

// LeaderboardResponse contains the ranked published reports.
type LeaderboardResponse struct {
	Entries []LeaderboardEntryResponse `json:"entries" doc:"Ranked entries, best score first"`
}

// LeaderboardOutput wraps the leaderboard response for Huma.
type LeaderboardOutput struct {
	Body LeaderboardResponse
}

// LeaderboardInput holds the display zone for leaderboard timestamps.
type LeaderboardInput struct {
	Timezone string `query:"timezone" doc:"IANA zone for timestamp display (default UTC)"`
}

// LifetimeEntryResponse is one ranked account on the lifetime leaderboard.
type LifetimeEntryResponse struct {
	Rank           int     `json:"rank" doc:"1-based position"`
	Username       string  `json:"username" doc:"Public handle"`
	Name           string  `json:"name" doc:"Display name"`
	MaxZoneInScore float64 `json:"max_zone_in_score" doc:"Lifetime best score"`
	IsOwnProfile   bool    `json:"is_own_profile" doc:"True when the viewer is this account"`
}

// LifetimeLeaderboardResponse contains the ranked accounts.
type LifetimeLeaderboardResponse struct {
	Entries []LifetimeEntryResponse `json:"entries" doc:"Ranked entries, best score first"`
}

// LifetimeLeaderboardOutput wraps the lifetime leaderboard for Huma.
type LifetimeLeaderboardOutput struct {
	Body LifetimeLeaderboardResponse
}

// PublishReportInput identifies the report to publish or unpublish.
type PublishReportInput struct {
	ID string `path:"id" doc:"Report ID"`
}

// ReactRequest is the request body for a reaction.
type ReactRequest struct {
	Emoji string `json:"emoji" doc:"One of the allowed reaction emojis"`
}

// ReactInput wraps the reaction request for Huma.
type ReactInput struct {
	ID   string `path:"id" doc:"Report ID"`
	Body ReactRequest
}

// ReactionResponse is the post-write state of one emoji on one report.
type ReactionResponse struct {
	ReportID string `json:"report_id" doc:"Report the reaction is on"`
	Emoji    string `json:"emoji" doc:"The recorded emoji"`
	Count    int    `json:"count" doc:"Total reactions with this emoji, including the caller's"`
}

// ReactOutput wraps the reaction response for Huma.
type ReactOutput struct {
	Body ReactionResponse
}

// UnreactInput identifies the reaction to remove.
type UnreactInput struct {
	ID string `path:"id" doc:"Report ID"`
}

// === Handlers ===

func (s *Server) handleGetLeaderboard(ctx context.Context, input *LeaderboardInput) (*LeaderboardOutput, error) {
	viewerID := optionalUserID(ctx)

	entries, err := s.services.Leaderboard.Leaderboard(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	loc := timezone.DisplayLocation(input.Timezone, s.logger)

	responses := make([]LeaderboardEntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = LeaderboardEntryResponse{
			Rank:           i + 1,
			Report:         mapReportResponse(&entry.Report, loc),
			OwnerName:      entry.OwnerName,
			OwnerUsername:  entry.OwnerUsername,
			Reactions:      entry.Reactions,
			ViewerReaction: entry.ViewerReaction,
			IsOwnReport:    entry.IsOwnReport,
		}
	}

	return &LeaderboardOutput{Body: LeaderboardResponse{Entries: responses}}, nil
}

func (s *Server) handleGetLifetimeLeaderboard(ctx context.Context, _ *struct{}) (*LifetimeLeaderboardOutput, error) {
	viewerID := optionalUserID(ctx)

	entries, err := s.services.Leaderboard.LifetimeLeaderboard(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	responses := make([]LifetimeEntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = LifetimeEntryResponse{
			Rank:           i + 1,
			Username:       entry.Username,
			Name:           entry.Name,
			MaxZoneInScore: entry.MaxZoneInScore,
			IsOwnProfile:   entry.IsOwnProfile,
		}
	}

	return &LifetimeLeaderboardOutput{Body: LifetimeLeaderboardResponse{Entries: responses}}, nil
}

func (s *Server) handlePublishReport(ctx context.Context, input *PublishReportInput) (*GetReportOutput, error) {
	return s.setPublished(ctx, input.ID, true)
}

func (s *Server) handleUnpublishReport(ctx context.Context, input *PublishReportInput) (*GetReportOutput, error) {
	return s.setPublished(ctx, input.ID, false)
}

func (s *Server) setPublished(ctx context.Context, reportID string, published bool) (*GetReportOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	report, err := s.services.Report.SetPublished(ctx, userID, reportID, published)
	if err != nil {
		return nil, err
	}

	return &GetReportOutput{Body: mapReportResponse(report, time.UTC)}, nil
}

func (s *Server) handleReact(ctx context.Context, input *ReactInput) (*ReactOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := s.services.Leaderboard.React(ctx, userID, input.ID, input.Body.Emoji)
	if err != nil {
		return nil, err
	}

	return &ReactOutput{
		Body: ReactionResponse{
			ReportID: summary.ReportID,
			Emoji:    summary.Emoji,
			Count:    summary.Count,
		},
	}, nil
}

func (s *Server) handleUnreact(ctx context.Context, input *UnreactInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Leaderboard.Unreact(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Reaction removed"}}, nil
}
