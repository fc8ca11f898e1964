package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/zoneinapp/zonein-server/internal/domain"
	"github.com/zoneinapp/zonein-server/internal/service"
	"github.com/zoneinapp/zonein-server/internal/timezone"
)

func (s *Server) registerReportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "submitReport",
		Method:      http.MethodPost,
		Path:        "/api/v1/reports",
		Summary:     "Submit session report",
		Description: "Stores a finished focus session. Resubmitting the same session replaces it in place.",
		Tags:        []string{"Reports"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSubmitReport)

	huma.Register(s.api, huma.Operation{
		OperationID: "listReports",
		Method:      http.MethodGet,
		Path:        "/api/v1/reports",
		Summary:     "List session reports",
		Description: "Returns the user's reports, optionally filtered by a local calendar date range",
		Tags:        []string{"Reports"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListReports)

	huma.Register(s.api, huma.Operation{
		OperationID: "getReport",
		Method:      http.MethodGet,
		Path:        "/api/v1/reports/{id}",
		Summary:     "Get session report",
		Description: "Returns one of the user's reports by ID",
		Tags:        []string{"Reports"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetReport)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteAllReports",
		Method:      http.MethodDelete,
		Path:        "/api/v1/reports",
		Summary:     "Delete all session reports",
		Description: "Removes every report the user owns. The lifetime max score is kept.",
		Tags:        []string{"Reports"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteAllReports)
}

// === DTOs ===

// SubmitReportInput wraps the report submission for Huma.
type SubmitReportInput struct {
	Body service.SubmitReportRequest
}

// ReportResponse contains one session report in API responses. Timestamps are
// rendered in the requested display zone; the instant is unchanged.
type ReportResponse struct {
	ID                  string    `json:"id" doc:"Report ID"`
	SessionID           string    `json:"session_id" doc:"Client-supplied session token"`
	StartedAt           time.Time `json:"started_at" doc:"Session start"`
	EndedAt             time.Time `json:"ended_at" doc:"Session end"`
	DurationSec         float64   `json:"duration_sec" doc:"Total session length in seconds"`
	FocusedSec          float64   `json:"focused_sec" doc:"Seconds spent focused"`
	DistractedSec       float64   `json:"distracted_sec" doc:"Seconds spent distracted"`
	NeutralSec          float64   `json:"neutral_sec" doc:"Seconds in neutral state"`
	SnoozedSec          float64   `json:"snoozed_sec" doc:"Seconds with tracking snoozed"`
	ZoneInScore         float64   `json:"zone_in_score" doc:"Focus score in [0,100]"`
	TimelineBucketsJSON *string   `json:"timeline_buckets_json" doc:"Timeline as submitted, null when absent"`
	CloudAIEnabled      bool      `json:"cloud_ai_enabled" doc:"Whether cloud AI was enabled for the session"`
	Published           bool      `json:"published" doc:"Whether the report is on the public leaderboard"`
	CreatedAt           time.Time `json:"created_at" doc:"First submission timestamp"`
}

// SubmitReportResponse pairs the stored report with the max-score outcome.
type SubmitReportResponse struct {
	Report      ReportResponse `json:"report" doc:"Stored report"`
	NewMaxScore bool           `json:"new_max_score" doc:"True when this submission raised the lifetime max"`
}

// SubmitReportOutput wraps the submission response for Huma.
type SubmitReportOutput struct {
	Body SubmitReportResponse
}

// ListReportsInput holds the range filter query parameters.
type ListReportsInput struct {
	From     string `query:"from" doc:"Start date (YYYY-MM-DD), inclusive"`
	To       string `query:"to" doc:"End date (YYYY-MM-DD), inclusive"`
	Timezone string `query:"timezone" doc:"IANA zone the dates are interpreted in (default UTC)"`
}

// ListReportsResponse contains the filtered reports.
type ListReportsResponse struct {
	Reports []ReportResponse `json:"reports" doc:"Reports, newest session first"`
	Total   int              `json:"total" doc:"Number of reports returned"`
}

// ListReportsOutput wraps the list response for Huma.
type ListReportsOutput struct {
	Body ListReportsResponse
}

// GetReportInput identifies one report.
type GetReportInput struct {
	ID       string `path:"id" doc:"Report ID"`
	Timezone string `query:"timezone" doc:"IANA zone for timestamp display (default UTC)"`
}

// GetReportOutput wraps a single report for Huma.
type GetReportOutput struct {
	Body ReportResponse
}

// DeleteReportsResponse contains the delete-all result.
type DeleteReportsResponse struct {
	Deleted int64 `json:"deleted" doc:"Number of reports removed"`
}

// DeleteReportsOutput wraps the delete response for Huma.
type DeleteReportsOutput struct {
	Body DeleteReportsResponse
}

// === Handlers ===

func (s *Server) handleSubmitReport(ctx context.Context, input *SubmitReportInput) (*SubmitReportOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Report.SubmitReport(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}

	return &SubmitReportOutput{
		Body: SubmitReportResponse{
			Report:      mapReportResponse(result.Report, time.UTC),
			NewMaxScore: result.NewMaxScore,
		},
	}, nil
}

func (s *Server) handleListReports(ctx context.Context, input *ListReportsInput) (*ListReportsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	reports, err := s.services.Report.ListReports(ctx, userID, input.From, input.To, input.Timezone)
	if err != nil {
		return nil, err
	}

	// The filter already rejected unknown zones, so this only falls back to
	// UTC when no zone was given.
	loc := timezone.DisplayLocation(input.Timezone, s.logger)

	responses := make([]ReportResponse, len(reports))
	for i, report := range reports {
		responses[i] = mapReportResponse(report, loc)
	}

	return &ListReportsOutput{
		Body: ListReportsResponse{
			Reports: responses,
			Total:   len(responses),
		},
	}, nil
}

func (s *Server) handleGetReport(ctx context.Context, input *GetReportInput) (*GetReportOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	report, err := s.services.Report.GetReport(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	loc := timezone.DisplayLocation(input.Timezone, s.logger)
	return &GetReportOutput{Body: mapReportResponse(report, loc)}, nil
}

func (s *Server) handleDeleteAllReports(ctx context.Context, _ *struct{}) (*DeleteReportsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	deleted, err := s.services.Report.DeleteAllReports(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &DeleteReportsOutput{Body: DeleteReportsResponse{Deleted: deleted}}, nil
}

// === Helpers ===

func mapReportResponse(report *domain.SessionReport, loc *time.Location) ReportResponse {
	return ReportResponse{
		ID:                  report.ID,
		SessionID:           report.SessionID,
		StartedAt:           report.StartedAt.In(loc),
		EndedAt:             report.EndedAt.In(loc),
		DurationSec:         report.DurationSec,
		FocusedSec:          report.FocusedSec,
		DistractedSec:       report.DistractedSec,
		NeutralSec:          report.NeutralSec,
		SnoozedSec:          report.SnoozedSec,
		ZoneInScore:         report.ZoneInScore,
		TimelineBucketsJSON: report.TimelineBucketsJSON,
		CloudAIEnabled:      report.CloudAIEnabled,
		Published:           report.Published,
		CreatedAt:           report.CreatedAt.In(loc),
	}
}
