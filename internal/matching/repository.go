// internal/matching/repository.go

package matching

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var ErrMatchNotFound = errors.New("match record not found")

type Repository interface {
	// Match records
	UpsertLike(ctx context.Context, pair CanonicalPair) (*MatchRecord, error)
	PromoteMutual(ctx context.Context, matchID int64, score int, labels []string, breakdown json.RawMessage) (*MatchRecord, error)
	GetMatch(ctx context.Context, id int64) (*MatchRecord, error)
	GetMatchByPair(ctx context.Context, a, b int64) (*MatchRecord, error)
	GetUserMatches(ctx context.Context, userID int64) ([]*MatchRecord, error)
	HasMutualMatch(ctx context.Context, a, b int64) (bool, error)
	DeactivateMatch(ctx context.Context, matchID, userID int64) error
	TouchInteraction(ctx context.Context, matchID int64) error

	// Rejections
	UpsertRejection(ctx context.Context, actor, target int64, expiresAt time.Time) (*RejectionRecord, error)
	ActiveRejectionTargets(ctx context.Context, actor int64, now time.Time) ([]int64, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const matchColumns = `
	id, user_a_id, user_b_id, liked_by_a, liked_by_b, is_mutual,
	score, labels, breakdown, is_active, unmatched_by, unmatched_at,
	matched_at, last_interaction, created_at
`

// UpsertLike atomically finds-or-creates the canonical pair row and sets
// the actor's like flag. Flags are merged with OR so two concurrent likes
// from opposite directions cannot clobber each other; the unique
// constraint on (user_a_id, user_b_id) guarantees a single row per pair.
func (r *postgresRepository) UpsertLike(ctx context.Context, pair CanonicalPair) (*MatchRecord, error) {
	query := `
		INSERT INTO match_records (user_a_id, user_b_id, liked_by_a, liked_by_b, last_interaction)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_a_id, user_b_id)
		DO UPDATE SET
			liked_by_a = match_records.liked_by_a OR EXCLUDED.liked_by_a,
			liked_by_b = match_records.liked_by_b OR EXCLUDED.liked_by_b,
			is_active = TRUE,
			last_interaction = NOW()
		RETURNING ` + matchColumns

	row := r.db.QueryRowxContext(ctx, query, pair.A, pair.B, pair.ActorIsA, !pair.ActorIsA)
	return scanMatchRow(row)
}

// PromoteMutual performs the guarded one-sided-like -> mutual transition.
// The is_mutual = FALSE predicate makes the transition winner-take-once:
// the score, labels and breakdown are written exactly one time, by the
// request that flipped the flag. ErrMatchNotFound means another request
// already won (or the record vanished); callers re-read in that case.
func (r *postgresRepository) PromoteMutual(ctx context.Context, matchID int64, score int, labels []string, breakdown json.RawMessage) (*MatchRecord, error) {
	query := `
		UPDATE match_records
		SET is_mutual = TRUE,
		    matched_at = NOW(),
		    last_interaction = NOW(),
		    score = $2,
		    labels = $3,
		    breakdown = $4
		WHERE id = $1 AND is_mutual = FALSE
		RETURNING ` + matchColumns

	row := r.db.QueryRowxContext(ctx, query, matchID, score, pq.Array(labels), breakdown)
	return scanMatchRow(row)
}

func (r *postgresRepository) GetMatch(ctx context.Context, id int64) (*MatchRecord, error) {
	query := `SELECT ` + matchColumns + ` FROM match_records WHERE id = $1`
	return scanMatchRow(r.db.QueryRowxContext(ctx, query, id))
}

func (r *postgresRepository) GetMatchByPair(ctx context.Context, a, b int64) (*MatchRecord, error) {
	if a > b {
		a, b = b, a
	}

	query := `SELECT ` + matchColumns + ` FROM match_records WHERE user_a_id = $1 AND user_b_id = $2`
	return scanMatchRow(r.db.QueryRowxContext(ctx, query, a, b))
}

func (r *postgresRepository) GetUserMatches(ctx context.Context, userID int64) ([]*MatchRecord, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM match_records
		WHERE (user_a_id = $1 OR user_b_id = $1) AND is_active = TRUE
		ORDER BY last_interaction DESC
	`

	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*MatchRecord
	for rows.Next() {
		rec, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, rec)
	}

	return matches, rows.Err()
}

func (r *postgresRepository) HasMutualMatch(ctx context.Context, a, b int64) (bool, error) {
	if a > b {
		a, b = b, a
	}

	var exists bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM match_records
			WHERE user_a_id = $1 AND user_b_id = $2
			      AND is_mutual = TRUE AND is_active = TRUE
		)
	`

	err := r.db.GetContext(ctx, &exists, query, a, b)
	return exists, err
}

func (r *postgresRepository) DeactivateMatch(ctx context.Context, matchID, userID int64) error {
	query := `
		UPDATE match_records
		SET is_active = FALSE, unmatched_by = $2, unmatched_at = NOW()
		WHERE id = $1 AND (user_a_id = $2 OR user_b_id = $2)
	`

	res, err := r.db.ExecContext(ctx, query, matchID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMatchNotFound
	}
	return nil
}

func (r *postgresRepository) TouchInteraction(ctx context.Context, matchID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE match_records SET last_interaction = NOW() WHERE id = $1`, matchID)
	return err
}

// Rejection methods

// UpsertRejection creates or refreshes the one-directional cooldown keyed
// by (actor, target).
func (r *postgresRepository) UpsertRejection(ctx context.Context, actor, target int64, expiresAt time.Time) (*RejectionRecord, error) {
	var rec RejectionRecord
	query := `
		INSERT INTO rejection_records (actor_id, target_id, expires_at, is_active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (actor_id, target_id)
		DO UPDATE SET expires_at = $3, is_active = TRUE
		RETURNING id, actor_id, target_id, expires_at, is_active, created_at
	`

	err := r.db.QueryRowxContext(ctx, query, actor, target, expiresAt).Scan(
		&rec.ID, &rec.ActorID, &rec.TargetID, &rec.ExpiresAt, &rec.IsActive, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// ActiveRejectionTargets filters by expires_at at read time; expired rows
// simply stop matching the predicate, no write is needed to expire them.
func (r *postgresRepository) ActiveRejectionTargets(ctx context.Context, actor int64, now time.Time) ([]int64, error) {
	var targets []int64
	query := `
		SELECT target_id FROM rejection_records
		WHERE actor_id = $1 AND is_active = TRUE AND expires_at > $2
	`

	err := r.db.SelectContext(ctx, &targets, query, actor, now)
	return targets, err
}

// Scan helpers

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(s rowScanner) (*MatchRecord, error) {
	var rec MatchRecord
	err := s.Scan(
		&rec.ID, &rec.UserAID, &rec.UserBID, &rec.LikedByA, &rec.LikedByB,
		&rec.IsMutual, &rec.Score, pq.Array(&rec.Labels), &rec.Breakdown,
		&rec.IsActive, &rec.UnmatchedBy, &rec.UnmatchedAt,
		&rec.MatchedAt, &rec.LastInteraction, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func scanMatchRow(row *sqlx.Row) (*MatchRecord, error) {
	rec, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	return rec, err
}

// IsRetryableConflict reports whether a storage error is a transient
// write conflict (serialization failure, deadlock, or a unique-constraint
// race) worth a single retry.
func IsRetryableConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case "40001", "40P01", "23505":
		return true
	}
	return false
}
