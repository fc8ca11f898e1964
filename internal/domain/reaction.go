package domain

import "time"

// AllowedEmojis is the fixed set of reactions the leaderboard accepts.
var AllowedEmojis = []string{"👏", "🔥", "💪", "⭐", "🎉"}

// EmojiAllowed checks if the emoji is in the allow-list.
func EmojiAllowed(emoji string) bool {
	for _, e := range AllowedEmojis {
		if e == emoji {
			return true
		}
	}
	return false
}

// Reaction is a single user's emoji response to a published report.
// At most one reaction exists per (user, report) pair; reacting again
// overwrites the emoji rather than adding a second row.
type Reaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ReportID  string    `json:"report_id"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}
