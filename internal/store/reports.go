package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/zoneinapp/zonein-server/internal/domain"
)

// reportColumns is the ordered list of columns selected in report queries.
// Must match the scan order in scanReport.
const reportColumns = `id, user_id, session_id, started_at, ended_at,
	duration_sec, focused_sec, distracted_sec, neutral_sec, snoozed_sec,
	zone_in_score, timeline_buckets_json, cloud_ai_enabled, published, created_at`

// scanReport scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.SessionReport.
func scanReport(scanner interface{ Scan(dest ...any) error }) (*domain.SessionReport, error) {
	var r domain.SessionReport

	var (
		startedAt string
		endedAt   string
		timeline  sql.NullString
		cloudAI   int
		published int
		createdAt string
	)

	err := scanner.Scan(
		&r.ID,
		&r.UserID,
		&r.SessionID,
		&startedAt,
		&endedAt,
		&r.DurationSec,
		&r.FocusedSec,
		&r.DistractedSec,
		&r.NeutralSec,
		&r.SnoozedSec,
		&r.ZoneInScore,
		&timeline,
		&cloudAI,
		&published,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if timeline.Valid {
		r.TimelineBucketsJSON = &timeline.String
	}
	r.CloudAIEnabled = cloudAI != 0
	r.Published = published != 0

	r.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return nil, err
	}
	r.EndedAt, err = parseTime(endedAt)
	if err != nil {
		return nil, err
	}
	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// UpsertReport inserts the report or, when the user already has a report for
// the session, replaces its mutable fields in place. The row identity (id,
// created_at) and the published flag survive resubmission. Returns the stored
// row, so callers see the original id on an update.
func (s *Store) UpsertReport(ctx context.Context, report *domain.SessionReport) (*domain.SessionReport, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_reports (
			id, user_id, session_id, started_at, ended_at,
			duration_sec, focused_sec, distracted_sec, neutral_sec, snoozed_sec,
			zone_in_score, timeline_buckets_json, cloud_ai_enabled, published, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, session_id) DO UPDATE SET
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			duration_sec = excluded.duration_sec,
			focused_sec = excluded.focused_sec,
			distracted_sec = excluded.distracted_sec,
			neutral_sec = excluded.neutral_sec,
			snoozed_sec = excluded.snoozed_sec,
			zone_in_score = excluded.zone_in_score,
			timeline_buckets_json = excluded.timeline_buckets_json,
			cloud_ai_enabled = excluded.cloud_ai_enabled`,
		report.ID,
		report.UserID,
		report.SessionID,
		formatTime(report.StartedAt),
		formatTime(report.EndedAt),
		report.DurationSec,
		report.FocusedSec,
		report.DistractedSec,
		report.NeutralSec,
		report.SnoozedSec,
		report.ZoneInScore,
		nullableString(report.TimelineBucketsJSON),
		boolToInt(report.CloudAIEnabled),
		boolToInt(report.Published),
		formatTime(report.CreatedAt),
	)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM session_reports
		WHERE user_id = ? AND session_id = ?`,
		report.UserID, report.SessionID)

	stored, err := scanReport(row)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// GetReport retrieves a report by ID scoped to its owner. A report owned by
// someone else is indistinguishable from a missing one.
// Returns ErrReportNotFound in both cases.
func (s *Store) GetReport(ctx context.Context, userID, id string) (*domain.SessionReport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM session_reports
		WHERE id = ? AND user_id = ?`, id, userID)

	r, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// GetReportByID retrieves a report regardless of owner. Used where any
// authenticated user may act on a published report, such as reactions.
// Returns ErrReportNotFound if the report does not exist.
func (s *Store) GetReportByID(ctx context.Context, id string) (*domain.SessionReport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM session_reports WHERE id = ?`, id)

	r, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListReports returns the user's reports, newest session first. Either bound
// may be nil. A report overlaps the window when it ended at or after from and
// started before to.
func (s *Store) ListReports(ctx context.Context, userID string, from, to *time.Time) ([]*domain.SessionReport, error) {
	query := `SELECT ` + reportColumns + ` FROM session_reports WHERE user_id = ?`
	args := []any{userID}

	if from != nil {
		query += ` AND ended_at >= ?`
		args = append(args, formatTime(*from))
	}
	if to != nil {
		query += ` AND started_at < ?`
		args = append(args, formatTime(*to))
	}
	query += ` ORDER BY started_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*domain.SessionReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}

// SetReportPublished flips the leaderboard visibility of a report, scoped to
// its owner. Returns ErrReportNotFound if the user owns no such report.
func (s *Store) SetReportPublished(ctx context.Context, userID, id string, published bool) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE session_reports SET published = ?
		WHERE id = ? AND user_id = ?`,
		boolToInt(published), id, userID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReportNotFound
	}
	return nil
}

// DeleteUserReports removes every report the user owns and returns how many
// rows were deleted. Reactions on those reports cascade away with them.
// Deleting zero reports is not an error.
func (s *Store) DeleteUserReports(ctx context.Context, userID string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM session_reports WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ListPublishedReports returns published reports joined to their owner's
// identity, best score first. Ties break toward the newer report. A limit of
// zero or less returns all rows.
func (s *Store) ListPublishedReports(ctx context.Context, limit int) ([]*domain.PublishedReport, error) {
	query := `
		SELECT ` + reportColumnsAliased + `,
			u.id, u.name, u.email, u.username
		FROM session_reports r
		JOIN users u ON u.id = r.user_id
		WHERE r.published = 1
		ORDER BY r.zone_in_score DESC, r.created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var published []*domain.PublishedReport
	for rows.Next() {
		p, err := scanPublishedReport(rows)
		if err != nil {
			return nil, err
		}
		published = append(published, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return published, nil
}

// reportColumnsAliased is reportColumns with the r. prefix for joins.
const reportColumnsAliased = `r.id, r.user_id, r.session_id, r.started_at, r.ended_at,
	r.duration_sec, r.focused_sec, r.distracted_sec, r.neutral_sec, r.snoozed_sec,
	r.zone_in_score, r.timeline_buckets_json, r.cloud_ai_enabled, r.published, r.created_at`

// scanPublishedReport scans a joined report-plus-owner row.
func scanPublishedReport(scanner interface{ Scan(dest ...any) error }) (*domain.PublishedReport, error) {
	var p domain.PublishedReport

	var (
		startedAt     string
		endedAt       string
		timeline      sql.NullString
		cloudAI       int
		published     int
		createdAt     string
		ownerUsername sql.NullString
	)

	err := scanner.Scan(
		&p.Report.ID,
		&p.Report.UserID,
		&p.Report.SessionID,
		&startedAt,
		&endedAt,
		&p.Report.DurationSec,
		&p.Report.FocusedSec,
		&p.Report.DistractedSec,
		&p.Report.NeutralSec,
		&p.Report.SnoozedSec,
		&p.Report.ZoneInScore,
		&timeline,
		&cloudAI,
		&published,
		&createdAt,
		&p.OwnerID,
		&p.OwnerName,
		&p.OwnerEmail,
		&ownerUsername,
	)
	if err != nil {
		return nil, err
	}

	if timeline.Valid {
		p.Report.TimelineBucketsJSON = &timeline.String
	}
	p.Report.CloudAIEnabled = cloudAI != 0
	p.Report.Published = published != 0
	if ownerUsername.Valid {
		p.OwnerUsername = ownerUsername.String
	}

	p.Report.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return nil, err
	}
	p.Report.EndedAt, err = parseTime(endedAt)
	if err != nil {
		return nil, err
	}
	p.Report.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}
