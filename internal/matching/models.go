// internal/matching/models.go

package matching

import (
	"encoding/json"
	"time"
)

// Profile is the read-only view of a user profile consumed by the match
// engine. Profile storage itself is owned by an external collaborator;
// only the fields scoring and candidate filtering need are carried here.
type Profile struct {
	ID                int64      `json:"id" db:"id"`
	DisplayName       string     `json:"display_name" db:"display_name"`
	Age               int        `json:"age" db:"age"`
	Gender            string     `json:"gender" db:"gender"`
	GenderPreferences []string   `json:"gender_preferences" db:"gender_preferences"`
	PreferredMinAge   int        `json:"preferred_min_age" db:"preferred_min_age"`
	PreferredMaxAge   int        `json:"preferred_max_age" db:"preferred_max_age"`
	Latitude          *float64   `json:"latitude,omitempty" db:"latitude"`
	Longitude         *float64   `json:"longitude,omitempty" db:"longitude"`
	MaxDistanceKm     *float64   `json:"max_distance_km,omitempty" db:"max_distance_km"`
	Beliefs           []string   `json:"beliefs" db:"beliefs"`
	Practices         []string   `json:"practices" db:"practices"`
	HealingStage      *string    `json:"healing_stage,omitempty" db:"healing_stage"`
	LifestyleChoices  []string   `json:"lifestyle_choices" db:"lifestyle_choices"`
	ActivityLevel     *string    `json:"activity_level,omitempty" db:"activity_level"`
	Intent            *string    `json:"intent,omitempty" db:"intent"`
	IntentBadges      []string   `json:"intent_badges" db:"intent_badges"`
	LifePurpose       *string    `json:"life_purpose,omitempty" db:"life_purpose"`
	IsComplete        bool       `json:"is_complete" db:"is_complete"`
	IsApproved        bool       `json:"is_approved" db:"is_approved"`
	LastActive        time.Time  `json:"last_active" db:"last_active"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
}

// MatchRecord is the canonical pairwise match row. Exactly one record
// exists per unordered pair; UserAID < UserBID always holds.
type MatchRecord struct {
	ID              int64           `json:"id" db:"id"`
	UserAID         int64           `json:"user_a_id" db:"user_a_id"`
	UserBID         int64           `json:"user_b_id" db:"user_b_id"`
	LikedByA        bool            `json:"liked_by_a" db:"liked_by_a"`
	LikedByB        bool            `json:"liked_by_b" db:"liked_by_b"`
	IsMutual        bool            `json:"is_mutual" db:"is_mutual"`
	Score           *int            `json:"score,omitempty" db:"score"`
	Labels          []string        `json:"labels,omitempty" db:"labels"`
	Breakdown       json.RawMessage `json:"breakdown,omitempty" db:"breakdown"`
	IsActive        bool            `json:"is_active" db:"is_active"`
	UnmatchedBy     *int64          `json:"unmatched_by,omitempty" db:"unmatched_by"`
	UnmatchedAt     *time.Time      `json:"unmatched_at,omitempty" db:"unmatched_at"`
	MatchedAt       *time.Time      `json:"matched_at,omitempty" db:"matched_at"`
	LastInteraction time.Time       `json:"last_interaction" db:"last_interaction"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// Other returns the counterpart of userID in the pair.
func (m *MatchRecord) Other(userID int64) int64 {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}

// LikedBy reports whether userID's like flag is set.
func (m *MatchRecord) LikedBy(userID int64) bool {
	if m.UserAID == userID {
		return m.LikedByA
	}
	if m.UserBID == userID {
		return m.LikedByB
	}
	return false
}

// RejectionRecord is a one-directional, time-bounded exclusion: it blocks
// the actor's view of the target only. Expiry is lazy; readers compare
// expires_at against now instead of relying on a background sweep.
type RejectionRecord struct {
	ID        int64     `json:"id" db:"id"`
	ActorID   int64     `json:"actor_id" db:"actor_id"`
	TargetID  int64     `json:"target_id" db:"target_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Expired reports whether the record no longer blocks at the given time.
func (r *RejectionRecord) Expired(now time.Time) bool {
	return !r.IsActive || !now.Before(r.ExpiresAt)
}

// CompatibilityBreakdown holds the per-factor scores (0-100) behind a
// compatibility value.
type CompatibilityBreakdown struct {
	Age            float64 `json:"age"`
	Gender         float64 `json:"gender"`
	Distance       float64 `json:"distance"`
	BeliefPractice float64 `json:"belief_practice"`
	Lifestyle      float64 `json:"lifestyle"`
	Intent         float64 `json:"intent"`
}

// CompatibilityResult is the outcome of scoring a profile pair. A nil
// result (with nil error) means the gender-preference veto applied and no
// match is possible.
type CompatibilityResult struct {
	Value     int                    `json:"value"`
	Labels    []string               `json:"labels"`
	Breakdown CompatibilityBreakdown `json:"breakdown"`
}

// ScoredCandidate is a ranked suggestion entry.
type ScoredCandidate struct {
	CandidateID int64                  `json:"candidate_id"`
	Profile     *Profile               `json:"profile"`
	Score       int                    `json:"score"`
	Labels      []string               `json:"labels"`
	Breakdown   CompatibilityBreakdown `json:"breakdown"`
}

// CandidateFilters narrows the candidate query for suggestions.
type CandidateFilters struct {
	Genders    []string
	MinAge     int
	MaxAge     int
	ExcludeIDs []int64
	Limit      int
}

// Request/response DTOs

type RejectRequestDTO struct {
	DurationDays int `json:"duration_days" validate:"omitempty,min=1,max=365"`
}

type LikeResult struct {
	Match         *MatchRecord `json:"match"`
	IsMutualMatch bool         `json:"is_mutual_match"`
}
