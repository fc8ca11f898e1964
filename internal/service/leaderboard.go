package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zoneinapp/zonein-server/internal/domain"
	domainerrors "github.com/zoneinapp/zonein-server/internal/errors"
	"github.com/zoneinapp/zonein-server/internal/id"
	"github.com/zoneinapp/zonein-server/internal/store"
)

// LeaderboardService builds the public leaderboards and manages reactions.
type LeaderboardService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewLeaderboardService creates a new leaderboard service.
func NewLeaderboardService(st *store.Store, logger *slog.Logger) *LeaderboardService {
	return &LeaderboardService{store: st, logger: logger}
}

// Leaderboard returns every published report ranked by score, decorated with
// reaction counts and the viewer's own state. viewerID is empty for
// anonymous viewers, who see no viewer-specific fields set.
func (s *LeaderboardService) Leaderboard(ctx context.Context, viewerID string) ([]*domain.LeaderboardEntry, error) {
	published, err := s.store.ListPublishedReports(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list published reports: %w", err)
	}

	reportIDs := make([]string, len(published))
	for i, p := range published {
		reportIDs[i] = p.Report.ID
	}

	reactions, err := s.store.ReactionsForReports(ctx, reportIDs)
	if err != nil {
		return nil, fmt.Errorf("load reactions: %w", err)
	}

	entries := make([]*domain.LeaderboardEntry, len(published))
	for i, p := range published {
		entry := &domain.LeaderboardEntry{
			PublishedReport: *p,
			Reactions:       make(map[string]int),
		}
		for _, r := range reactions[p.Report.ID] {
			entry.Reactions[r.Emoji]++
			if viewerID != "" && r.UserID == viewerID {
				entry.ViewerReaction = r.Emoji
			}
		}
		if viewerID != "" && p.OwnerID == viewerID {
			entry.IsOwnReport = true
		}
		entries[i] = entry
	}
	return entries, nil
}

// LifetimeLeaderboard ranks accounts by their lifetime max score. Accounts
// that never submitted a report do not appear.
func (s *LeaderboardService) LifetimeLeaderboard(ctx context.Context, viewerID string) ([]*domain.LifetimeEntry, error) {
	users, err := s.store.ListUsersWithMaxScore(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users with max score: %w", err)
	}

	entries := make([]*domain.LifetimeEntry, len(users))
	for i, u := range users {
		entries[i] = &domain.LifetimeEntry{
			UserID:         u.ID,
			Name:           u.Name,
			Email:          u.Email,
			Username:       u.Username,
			MaxZoneInScore: *u.MaxZoneInScore,
			IsOwnProfile:   viewerID != "" && u.ID == viewerID,
		}
	}
	return entries, nil
}

// ReactionSummary is the post-write state of one emoji on one report.
type ReactionSummary struct {
	ReportID string
	Emoji    string
	Count    int
}

// React records the viewer's emoji on a published report. A second reaction
// from the same viewer replaces the first. Unpublished reports are treated
// as missing so private reports stay undiscoverable.
func (s *LeaderboardService) React(ctx context.Context, viewerID, reportID, emoji string) (*ReactionSummary, error) {
	if !domain.EmojiAllowed(emoji) {
		return nil, domainerrors.Validationf("emoji %q is not allowed", emoji)
	}

	report, err := s.store.GetReportByID(ctx, reportID)
	if err == store.ErrReportNotFound {
		return nil, domainerrors.NotFound("report not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	if !report.Published {
		return nil, domainerrors.NotFound("report not found")
	}

	reactionID, err := id.New("rct")
	if err != nil {
		return nil, fmt.Errorf("generate reaction ID: %w", err)
	}

	reaction := &domain.Reaction{
		ID:        reactionID,
		UserID:    viewerID,
		ReportID:  reportID,
		Emoji:     emoji,
		CreatedAt: nowUTC(),
	}
	if err := s.store.UpsertReaction(ctx, reaction); err != nil {
		return nil, fmt.Errorf("upsert reaction: %w", err)
	}

	// Count after the write so the caller sees its own reaction included.
	count, err := s.store.CountReactions(ctx, reportID, emoji)
	if err != nil {
		return nil, fmt.Errorf("count reactions: %w", err)
	}

	return &ReactionSummary{ReportID: reportID, Emoji: emoji, Count: count}, nil
}

// Unreact removes the viewer's reaction from a report.
func (s *LeaderboardService) Unreact(ctx context.Context, viewerID, reportID string) error {
	err := s.store.DeleteReaction(ctx, viewerID, reportID)
	if err == store.ErrReactionNotFound {
		return domainerrors.NotFound("reaction not found")
	}
	if err != nil {
		return fmt.Errorf("delete reaction: %w", err)
	}
	return nil
}
