package service

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"time"

	"github.com/zoneinapp/zonein-server/internal/domain"
	domainerrors "github.com/zoneinapp/zonein-server/internal/errors"
	"github.com/zoneinapp/zonein-server/internal/id"
	"github.com/zoneinapp/zonein-server/internal/store"
	"github.com/zoneinapp/zonein-server/internal/timezone"
	"github.com/zoneinapp/zonein-server/internal/validation"
)

// nowUTC returns the current time in UTC. Everything persisted goes through
// this so stored timestamps are always comparable.
func nowUTC() time.Time {
	return time.Now().UTC()
}

// ReportService handles session report submission, querying, and lifecycle.
type ReportService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewReportService creates a new report service.
func NewReportService(st *store.Store, v *validation.Validator, logger *slog.Logger) *ReportService {
	return &ReportService{
		store:     st,
		validator: v,
		logger:    logger,
	}
}

// SubmitReportRequest contains one finished focus session as measured by the
// client. The score arrives precomputed; the server only checks its range.
// Snoozed time, the timeline, and the AI flag are optional and default to
// zero values when omitted.
type SubmitReportRequest struct {
	SessionID       string                  `json:"session_id" validate:"required,max=64"`
	StartedAt       time.Time               `json:"started_at" validate:"required"`
	EndedAt         time.Time               `json:"ended_at" validate:"required"`
	DurationSec     float64                 `json:"duration_sec" validate:"gte=0"`
	FocusedSec      float64                 `json:"focused_sec" validate:"gte=0"`
	DistractedSec   float64                 `json:"distracted_sec" validate:"gte=0"`
	NeutralSec      float64                 `json:"neutral_sec" validate:"gte=0"`
	SnoozedSec      float64                 `json:"snoozed_sec,omitempty" validate:"gte=0"`
	ZoneInScore     float64                 `json:"zone_in_score" validate:"gte=0,lte=100"`
	TimelineBuckets []domain.TimelineBucket `json:"timeline_buckets,omitempty" validate:"omitempty,dive"`
	CloudAIEnabled  bool                    `json:"cloud_ai_enabled,omitempty"`
}

// SubmitReportResult pairs the stored report with whether this submission
// raised the user's lifetime max score.
type SubmitReportResult struct {
	Report      *domain.SessionReport
	NewMaxScore bool
}

// SubmitReport stores a session report idempotently: resubmitting the same
// session replaces it in place instead of creating a second row. The user's
// lifetime max score is raised when the score beats it, never lowered.
func (s *ReportService) SubmitReport(ctx context.Context, userID string, req SubmitReportRequest) (*SubmitReportResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if !req.EndedAt.After(req.StartedAt) {
		return nil, domainerrors.Validation("ended_at must be after started_at")
	}

	var timelineJSON *string
	if len(req.TimelineBuckets) > 0 {
		raw, err := json.Marshal(req.TimelineBuckets)
		if err != nil {
			return nil, fmt.Errorf("marshal timeline: %w", err)
		}
		str := string(raw)
		timelineJSON = &str
	}

	reportID, err := id.New("rep")
	if err != nil {
		return nil, fmt.Errorf("generate report ID: %w", err)
	}

	report := &domain.SessionReport{
		ID:                  reportID,
		UserID:              userID,
		SessionID:           req.SessionID,
		StartedAt:           req.StartedAt.UTC(),
		EndedAt:             req.EndedAt.UTC(),
		DurationSec:         req.DurationSec,
		FocusedSec:          req.FocusedSec,
		DistractedSec:       req.DistractedSec,
		NeutralSec:          req.NeutralSec,
		SnoozedSec:          req.SnoozedSec,
		ZoneInScore:         req.ZoneInScore,
		TimelineBucketsJSON: timelineJSON,
		CloudAIEnabled:      req.CloudAIEnabled,
		CreatedAt:           nowUTC(),
	}

	stored, err := s.store.UpsertReport(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("upsert report: %w", err)
	}

	raised, err := s.store.RaiseMaxScore(ctx, userID, stored.ZoneInScore)
	if err != nil {
		return nil, fmt.Errorf("raise max score: %w", err)
	}
	if raised {
		s.logger.Info("New lifetime max score",
			"user_id", userID,
			"score", stored.ZoneInScore,
		)
	}

	return &SubmitReportResult{Report: stored, NewMaxScore: raised}, nil
}

// ListReports returns the user's reports overlapping the given local calendar
// date range, newest session first. Dates are interpreted in the given IANA
// zone; an unknown zone is rejected rather than silently reinterpreted. With
// no date bound the zone is display-only and never rejected here.
func (s *ReportService) ListReports(ctx context.Context, userID, fromDate, toDate, zone string) ([]*domain.SessionReport, error) {
	var from, to *time.Time
	if fromDate != "" || toDate != "" {
		var err error
		from, to, err = timezone.Range(fromDate, toDate, zone)
		if err != nil {
			return nil, domainerrors.Validation(err.Error())
		}
	}

	reports, err := s.store.ListReports(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// GetReport returns one of the user's reports. A report owned by someone
// else is indistinguishable from a missing one.
func (s *ReportService) GetReport(ctx context.Context, userID, reportID string) (*domain.SessionReport, error) {
	report, err := s.store.GetReport(ctx, userID, reportID)
	if err == store.ErrReportNotFound {
		return nil, domainerrors.NotFound("report not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return report, nil
}

// DeleteAllReports removes every report the user owns and returns the count.
// The lifetime max score survives; deleting history does not rewrite it.
func (s *ReportService) DeleteAllReports(ctx context.Context, userID string) (int64, error) {
	n, err := s.store.DeleteUserReports(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete reports: %w", err)
	}
	if n > 0 {
		s.logger.Info("Deleted all reports", "user_id", userID, "count", n)
	}
	return n, nil
}

// SetPublished publishes or unpublishes one of the user's reports on the
// leaderboard. Both directions are idempotent.
func (s *ReportService) SetPublished(ctx context.Context, userID, reportID string, published bool) (*domain.SessionReport, error) {
	if err := s.store.SetReportPublished(ctx, userID, reportID, published); err != nil {
		if err == store.ErrReportNotFound {
			return nil, domainerrors.NotFound("report not found")
		}
		return nil, fmt.Errorf("set report published: %w", err)
	}
	return s.GetReport(ctx, userID, reportID)
}
