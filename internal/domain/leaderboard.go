package domain

// PublishedReport is a leaderboard row joined to its owner's identity.
type PublishedReport struct {
	Report SessionReport

	OwnerID       string
	OwnerName     string
	OwnerEmail    string
	OwnerUsername string
}

// LeaderboardEntry is one ranked report tailored to the viewer.
type LeaderboardEntry struct {
	PublishedReport

	// Reactions maps emoji to the number of users who reacted with it.
	Reactions map[string]int

	// ViewerReaction is the emoji the viewing user reacted with, empty when
	// the viewer has not reacted or is anonymous.
	ViewerReaction string

	// IsOwnReport is true when the viewer owns this report.
	// Always false for anonymous viewers.
	IsOwnReport bool
}

// LifetimeEntry is one ranked account on the lifetime leaderboard.
// Only accounts with at least one submitted report appear.
type LifetimeEntry struct {
	UserID         string
	Name           string
	Email          string
	Username       string
	MaxZoneInScore float64

	// IsOwnProfile is true when the viewer is this account.
	IsOwnProfile bool
}
