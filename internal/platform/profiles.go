// internal/platform/profiles.go
//
// Read-only adapters over tables owned by the wider platform (profile
// service, subscription service, notification service). The match
// engine consumes these through its own narrow interfaces; nothing here
// writes to platform-owned state except the notification feed, which is
// append-only.

package platform

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/arghyanextbusinesssolution-cloud/Dating-Website-sub000/internal/matching"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore reads collaborator-owned user profiles. It satisfies
// matching.ProfileStore.
type ProfileStore struct {
	db *sqlx.DB
}

func NewProfileStore(db *sqlx.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

const profileColumns = `
	id, display_name, age, gender, gender_preferences,
	preferred_min_age, preferred_max_age, latitude, longitude,
	max_distance_km, beliefs, practices, healing_stage,
	lifestyle_choices, activity_level, intent, intent_badges,
	life_purpose, is_complete, is_approved, last_active, created_at
`

func (s *ProfileStore) GetProfile(ctx context.Context, userID int64) (*matching.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE id = $1`

	p, err := scanProfile(s.db.QueryRowxContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	return p, err
}

// FindCandidates returns approved, complete profiles matching the
// filters, most recently active first. The pool is intentionally larger
// than the final suggestion page; scoring and ranking happen upstream.
func (s *ProfileStore) FindCandidates(ctx context.Context, userID int64, filters *matching.CandidateFilters) ([]*matching.Profile, error) {
	var (
		conds = []string{"id <> $1", "is_complete = TRUE", "is_approved = TRUE"}
		args  = []interface{}{userID}
	)

	if filters != nil {
		if len(filters.Genders) > 0 {
			args = append(args, pq.Array(filters.Genders))
			conds = append(conds, fmt.Sprintf("gender = ANY($%d)", len(args)))
		}
		if filters.MinAge > 0 {
			args = append(args, filters.MinAge)
			conds = append(conds, fmt.Sprintf("age >= $%d", len(args)))
		}
		if filters.MaxAge > 0 {
			args = append(args, filters.MaxAge)
			conds = append(conds, fmt.Sprintf("age <= $%d", len(args)))
		}
		if len(filters.ExcludeIDs) > 0 {
			args = append(args, pq.Array(filters.ExcludeIDs))
			conds = append(conds, fmt.Sprintf("id <> ALL($%d)", len(args)))
		}
	}

	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY last_active DESC`

	if filters != nil && filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*matching.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(s rowScanner) (*matching.Profile, error) {
	var p matching.Profile
	err := s.Scan(
		&p.ID, &p.DisplayName, &p.Age, &p.Gender, pq.Array(&p.GenderPreferences),
		&p.PreferredMinAge, &p.PreferredMaxAge, &p.Latitude, &p.Longitude,
		&p.MaxDistanceKm, pq.Array(&p.Beliefs), pq.Array(&p.Practices), &p.HealingStage,
		pq.Array(&p.LifestyleChoices), &p.ActivityLevel, &p.Intent, pq.Array(&p.IntentBadges),
		&p.LifePurpose, &p.IsComplete, &p.IsApproved, &p.LastActive, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
