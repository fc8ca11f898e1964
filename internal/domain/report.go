package domain

import "time"

// BucketState classifies a slice of a focus session's timeline.
type BucketState string

const (
	BucketStateFocused    BucketState = "focused"
	BucketStateDistracted BucketState = "distracted"
	BucketStateNeutral    BucketState = "neutral"
	BucketStateSnoozed    BucketState = "snoozed"
)

// Valid checks if the bucket state is one of the known values.
func (s BucketState) Valid() bool {
	switch s {
	case BucketStateFocused, BucketStateDistracted, BucketStateNeutral, BucketStateSnoozed:
		return true
	default:
		return false
	}
}

// TimelineBucket is one slice of the session timeline submitted by the
// client. The server validates the shape on submission and otherwise stores
// the timeline verbatim; it never recomputes anything from it.
type TimelineBucket struct {
	BucketStartTS  float64     `json:"bucket_start_ts" validate:"required"`
	BucketDuration int         `json:"bucket_duration_sec" validate:"gte=1,lte=3600"`
	State          BucketState `json:"state" validate:"oneof=focused distracted neutral snoozed"`
}

// SessionReport is one aggregated focus-tracking session owned by a user.
// Exactly one report exists per (user, session) pair: resubmitting the same
// session replaces the mutable fields in place.
type SessionReport struct {
	ID     string `json:"id"`
	UserID string `json:"-"`

	// SessionID is the client-supplied session token (at most 64 characters).
	SessionID string `json:"session_id"`

	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`

	DurationSec   float64 `json:"duration_sec"`
	FocusedSec    float64 `json:"focused_sec"`
	DistractedSec float64 `json:"distracted_sec"`
	NeutralSec    float64 `json:"neutral_sec"`
	SnoozedSec    float64 `json:"snoozed_sec"`

	// ZoneInScore is the caller-derived focus score in [0,100].
	// The server validates the range but never recomputes it.
	ZoneInScore float64 `json:"zone_in_score"`

	// TimelineBucketsJSON is the opaque timeline payload as submitted
	// (a JSON array of TimelineBucket). Nil when the client sent none.
	TimelineBucketsJSON *string `json:"timeline_buckets_json"`

	CloudAIEnabled bool `json:"cloud_ai_enabled"`

	// Published makes the report visible on the public leaderboard.
	Published bool `json:"published"`

	CreatedAt time.Time `json:"created_at"`
}
