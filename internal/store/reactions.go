package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/zoneinapp/zonein-server/internal/domain"
)

// UpsertReaction inserts the reaction or, when the user already reacted to
// the report, swaps the emoji in place. The row identity and created_at
// survive a swap, so a reaction's age reflects the first time the user
// reacted.
func (s *Store) UpsertReaction(ctx context.Context, reaction *domain.Reaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reactions (id, user_id, report_id, emoji, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, report_id) DO UPDATE SET
			emoji = excluded.emoji`,
		reaction.ID,
		reaction.UserID,
		reaction.ReportID,
		reaction.Emoji,
		formatTime(reaction.CreatedAt),
	)
	return err
}

// DeleteReaction removes the user's reaction to a report.
// Returns ErrReactionNotFound if no reaction exists.
func (s *Store) DeleteReaction(ctx context.Context, userID, reportID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM reactions WHERE user_id = ? AND report_id = ?`,
		userID, reportID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReactionNotFound
	}
	return nil
}

// CountReactions returns how many users reacted to the report with the emoji.
func (s *Store) CountReactions(ctx context.Context, reportID, emoji string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reactions WHERE report_id = ? AND emoji = ?`,
		reportID, emoji).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ReactionsForReports returns every reaction on the given reports in one
// query, keyed by report ID. Missing reports simply have no entry.
func (s *Store) ReactionsForReports(ctx context.Context, reportIDs []string) (map[string][]*domain.Reaction, error) {
	byReport := make(map[string][]*domain.Reaction)
	if len(reportIDs) == 0 {
		return byReport, nil
	}

	placeholders := strings.Repeat("?, ", len(reportIDs)-1) + "?"
	args := make([]any, len(reportIDs))
	for i, id := range reportIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, report_id, emoji, created_at
		FROM reactions WHERE report_id IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scanReaction(rows)
		if err != nil {
			return nil, err
		}
		byReport[r.ReportID] = append(byReport[r.ReportID], r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return byReport, nil
}

// GetReaction retrieves the user's reaction to a report.
// Returns ErrReactionNotFound if no reaction exists.
func (s *Store) GetReaction(ctx context.Context, userID, reportID string) (*domain.Reaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, report_id, emoji, created_at
		FROM reactions WHERE user_id = ? AND report_id = ?`,
		userID, reportID)

	r, err := scanReaction(row)
	if err == sql.ErrNoRows {
		return nil, ErrReactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// scanReaction scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Reaction.
func scanReaction(scanner interface{ Scan(dest ...any) error }) (*domain.Reaction, error) {
	var r domain.Reaction
	var createdAt string

	err := scanner.Scan(&r.ID, &r.UserID, &r.ReportID, &r.Emoji, &createdAt)
	if err != nil {
		return nil, err
	}

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
