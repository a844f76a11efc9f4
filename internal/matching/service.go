// internal/matching/service.go

package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
)

var (
	ErrTransientConflict = errors.New("transient storage conflict, retry the request")
	ErrFeatureRestricted = errors.New("feature not available for this account")
	ErrProfileNotFound   = errors.New("profile not found")
)

// ProfileStore is the read-only profile collaborator. Profile writes,
// photo handling and moderation live outside this core.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	FindCandidates(ctx context.Context, userID int64, filters *CandidateFilters) ([]*Profile, error)
}

// FeatureGate exposes the subscription/capability checks that gate the
// like and suggestion operations.
type FeatureGate interface {
	CanLike(ctx context.Context, userID int64) bool
	CanViewSuggestions(ctx context.Context, userID int64) bool
}

// Notifier receives match events after they are persisted. Implementations
// deliver them over the real-time layer; emission is fire-and-forget from
// the state machine's point of view.
type Notifier interface {
	NotifyMutualMatch(ctx context.Context, match *MatchRecord)
	NotifyLike(ctx context.Context, actorID, targetID int64)
}

type Service interface {
	Like(ctx context.Context, actor, target int64) (*LikeResult, error)
	Reject(ctx context.Context, actor, target int64, durationDays int) (*RejectionRecord, error)
	Unmatch(ctx context.Context, matchID, userID int64) error
	GetMatches(ctx context.Context, userID int64) ([]*MatchRecord, error)
	HasMutualMatch(ctx context.Context, a, b int64) (bool, error)
	MutualMatch(ctx context.Context, a, b int64) (*MatchRecord, error)
	TouchMatch(ctx context.Context, matchID int64) error
	Suggestions(ctx context.Context, userID int64, limit int) ([]*ScoredCandidate, error)
}

// Options tunes operational defaults. Zero values fall back to the
// package constants.
type Options struct {
	SuggestionLimit       int
	RejectionCooldownDays int
}

type service struct {
	repo            Repository
	profiles        ProfileStore
	scorer          Scorer
	gate            FeatureGate
	notifier        Notifier
	suggestionLimit int
	rejectionDays   int
}

func NewService(repo Repository, profiles ProfileStore, scorer Scorer, gate FeatureGate, notifier Notifier, opts *Options) Service {
	s := &service{
		repo:            repo,
		profiles:        profiles,
		scorer:          scorer,
		gate:            gate,
		notifier:        notifier,
		suggestionLimit: DefaultSuggestionLimit,
		rejectionDays:   DefaultRejectionDays,
	}
	if opts != nil {
		if opts.SuggestionLimit > 0 {
			s.suggestionLimit = opts.SuggestionLimit
		}
		if opts.RejectionCooldownDays > 0 {
			s.rejectionDays = opts.RejectionCooldownDays
		}
	}
	return s
}

// Like drives the pair state machine: none -> one-sided-like -> mutual.
// The write is an atomic conditional upsert on the canonical pair; a
// transient storage conflict is retried once before surfacing
// ErrTransientConflict. The compatibility score is computed only at the
// moment the pair turns mutual, never before.
func (s *service) Like(ctx context.Context, actor, target int64) (*LikeResult, error) {
	pair, err := Canonicalize(actor, target)
	if err != nil {
		return nil, err
	}

	if s.gate != nil && !s.gate.CanLike(ctx, actor) {
		return nil, ErrFeatureRestricted
	}

	// Peek at the prior state so a repeated like from the same actor stays
	// a quiet no-op (no duplicate notification). The read races with
	// concurrent writers, but the upsert below is what decides state.
	var likedBefore bool
	if prev, err := s.repo.GetMatchByPair(ctx, pair.A, pair.B); err == nil {
		likedBefore = prev.LikedBy(actor)
	} else if !errors.Is(err, ErrMatchNotFound) {
		return nil, err
	}

	rec, err := s.upsertLikeWithRetry(ctx, pair)
	if err != nil {
		return nil, err
	}

	RecordLike()

	if rec.LikedByA && rec.LikedByB && !rec.IsMutual {
		return s.promoteToMutual(ctx, rec)
	}

	if rec.IsMutual {
		return &LikeResult{Match: rec, IsMutualMatch: true}, nil
	}

	if !likedBefore && s.notifier != nil {
		s.notifier.NotifyLike(ctx, actor, target)
	}

	return &LikeResult{Match: rec, IsMutualMatch: false}, nil
}

func (s *service) upsertLikeWithRetry(ctx context.Context, pair CanonicalPair) (*MatchRecord, error) {
	rec, err := s.repo.UpsertLike(ctx, pair)
	if err == nil {
		return rec, nil
	}
	if !IsRetryableConflict(err) {
		return nil, err
	}

	rec, err = s.repo.UpsertLike(ctx, pair)
	if err != nil {
		if IsRetryableConflict(err) {
			return nil, fmt.Errorf("%w: %v", ErrTransientConflict, err)
		}
		return nil, err
	}
	return rec, nil
}

// promoteToMutual flips the record to mutual, scoring the pair exactly
// once. Losing the guarded update to a concurrent request is not an
// error: the winner already persisted the score and emitted the events.
func (s *service) promoteToMutual(ctx context.Context, rec *MatchRecord) (*LikeResult, error) {
	score, labels, breakdown := s.scorePair(ctx, rec.UserAID, rec.UserBID)

	promoted, err := s.repo.PromoteMutual(ctx, rec.ID, score, labels, breakdown)
	if errors.Is(err, ErrMatchNotFound) {
		current, err := s.repo.GetMatch(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		return &LikeResult{Match: current, IsMutualMatch: current.IsMutual}, nil
	}
	if err != nil {
		return nil, err
	}

	RecordMutualMatch()
	RecordCompatibilityScore(float64(score))

	if s.notifier != nil {
		s.notifier.NotifyMutualMatch(ctx, promoted)
	}

	return &LikeResult{Match: promoted, IsMutualMatch: true}, nil
}

// scorePair runs the deferred compatibility computation for a pair that
// just turned mutual. Scoring problems do not block the state transition;
// the pair keeps a zero score and the issue is logged.
func (s *service) scorePair(ctx context.Context, a, b int64) (int, []string, json.RawMessage) {
	profileA, err := s.profiles.GetProfile(ctx, a)
	if err != nil {
		log.Printf("matching: cannot load profile %d for scoring: %v", a, err)
		return 0, nil, nil
	}
	profileB, err := s.profiles.GetProfile(ctx, b)
	if err != nil {
		log.Printf("matching: cannot load profile %d for scoring: %v", b, err)
		return 0, nil, nil
	}

	result, err := s.scorer.Score(profileA, profileB)
	if err != nil {
		log.Printf("matching: scoring pair (%d,%d) failed: %v", a, b, err)
		return 0, nil, nil
	}
	if result == nil {
		// Preference veto on a mutually-liked pair. Unusual but possible
		// when preferences changed after the first like.
		return 0, nil, nil
	}

	breakdown, err := json.Marshal(result.Breakdown)
	if err != nil {
		breakdown = nil
	}

	return result.Value, result.Labels, breakdown
}

// Reject upserts the one-directional cooldown for (actor, target).
// Repeated rejects refresh the expiry; there is no error path for
// rejecting an already-rejected target.
func (s *service) Reject(ctx context.Context, actor, target int64, durationDays int) (*RejectionRecord, error) {
	if _, err := Canonicalize(actor, target); err != nil {
		return nil, err
	}

	if durationDays <= 0 {
		durationDays = s.rejectionDays
	}

	expiresAt := time.Now().Add(time.Duration(durationDays) * 24 * time.Hour)
	rec, err := s.repo.UpsertRejection(ctx, actor, target, expiresAt)
	if err != nil {
		return nil, err
	}

	RecordRejection()
	return rec, nil
}

func (s *service) Unmatch(ctx context.Context, matchID, userID int64) error {
	return s.repo.DeactivateMatch(ctx, matchID, userID)
}

func (s *service) GetMatches(ctx context.Context, userID int64) ([]*MatchRecord, error) {
	return s.repo.GetUserMatches(ctx, userID)
}

func (s *service) HasMutualMatch(ctx context.Context, a, b int64) (bool, error) {
	return s.repo.HasMutualMatch(ctx, a, b)
}

// MutualMatch resolves the active mutual match backing a pair, or
// ErrMatchNotFound when the pair has none.
func (s *service) MutualMatch(ctx context.Context, a, b int64) (*MatchRecord, error) {
	rec, err := s.repo.GetMatchByPair(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if !rec.IsMutual || !rec.IsActive {
		return nil, ErrMatchNotFound
	}
	return rec, nil
}

// TouchMatch refreshes the pair's last-interaction timestamp.
func (s *service) TouchMatch(ctx context.Context, matchID int64) error {
	return s.repo.TouchInteraction(ctx, matchID)
}

// DefaultRejectionDays is the cooldown applied when a reject request does
// not specify a duration.
const DefaultRejectionDays = 7
