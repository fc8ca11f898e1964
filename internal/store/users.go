package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/zoneinapp/zonein-server/internal/domain"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, google_sub, email, name, username, max_zone_in_score,
	created_at, updated_at`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User

	var (
		username  sql.NullString
		maxScore  sql.NullFloat64
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&u.ID,
		&u.GoogleSub,
		&u.Email,
		&u.Name,
		&username,
		&maxScore,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if username.Valid {
		u.Username = username.String
	}
	if maxScore.Valid {
		u.MaxZoneInScore = &maxScore.Float64
	}

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// CreateUser inserts a new user into the database.
// Returns ErrAlreadyExists if the google_sub or username is already taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (
			id, google_sub, email, name, username, max_zone_in_score,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.GoogleSub,
		user.Email,
		user.Name,
		nullString(user.Username),
		nullableFloat(user.MaxZoneInScore),
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetUser retrieves a user by ID.
// Returns ErrUserNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByGoogleSub retrieves a user by their Google subject identifier.
// Returns ErrUserNotFound if no account is linked to the subject.
func (s *Store) GetUserByGoogleSub(ctx context.Context, sub string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE google_sub = ?`, sub)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUserIdentity refreshes the email and display name from the identity
// provider. Returns ErrUserNotFound if the user does not exist.
func (s *Store) UpdateUserIdentity(ctx context.Context, id, email, name string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET email = ?, name = ?, updated_at = ?
		WHERE id = ?`,
		email, name, formatTime(time.Now()), id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetUsername assigns a username to a user.
// Returns ErrAlreadyExists if another user holds the username and
// ErrUserNotFound if the user does not exist.
func (s *Store) SetUsername(ctx context.Context, id, username string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET username = ?, updated_at = ?
		WHERE id = ?`,
		username, formatTime(time.Now()), id)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyExists
		}
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UsernameExists reports whether any user holds the given username.
func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE username = ?`, username).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RaiseMaxScore lifts the user's lifetime max score to the given value if it
// is higher than the stored one. The comparison happens inside the UPDATE so
// concurrent submissions can never lower the max. Returns whether the stored
// value changed.
func (s *Store) RaiseMaxScore(ctx context.Context, userID string, score float64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET max_zone_in_score = ?, updated_at = ?
		WHERE id = ? AND (max_zone_in_score IS NULL OR max_zone_in_score < ?)`,
		score, formatTime(time.Now()), userID, score)
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListUsersWithMaxScore returns all users that have a lifetime max score,
// highest first. Ties break toward the older account.
func (s *Store) ListUsersWithMaxScore(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE max_zone_in_score IS NOT NULL
		ORDER BY max_zone_in_score DESC, created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
