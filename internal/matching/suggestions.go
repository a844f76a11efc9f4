// internal/matching/suggestions.go
//
// Candidate generation, exclusion and ranking for the suggestions feed.

package matching

import (
	"context"
	"fmt"
	"sort"
	"time"
)

const (
	// MinSuggestionScore is the compatibility cutoff below which a
	// candidate is dropped from the feed.
	MinSuggestionScore = 40

	// DefaultSuggestionLimit applies when the caller does not pass one.
	DefaultSuggestionLimit = 20

	candidatePoolSize = 200
)

// Suggestions builds the ranked candidate feed for userID.
//
// The exclusion set is: the user themself, mutual-match partners, targets
// the user liked who have not reciprocated, and actively rejected targets.
// Users who liked the actor but have not been responded to are kept
// visible on purpose; suggestions are where that response happens.
func (s *service) Suggestions(ctx context.Context, userID int64, limit int) ([]*ScoredCandidate, error) {
	if s.gate != nil && !s.gate.CanViewSuggestions(ctx, userID) {
		return nil, ErrFeatureRestricted
	}
	if limit <= 0 {
		limit = s.suggestionLimit
	}

	started := time.Now()
	defer func() {
		ObserveSuggestionDuration(time.Since(started))
	}()

	actor, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileNotFound, err)
	}

	excluded, err := s.exclusionSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	filters := &CandidateFilters{
		Genders:    preferenceFilter(actor.GenderPreferences),
		MinAge:     actor.PreferredMinAge,
		MaxAge:     actor.PreferredMaxAge,
		ExcludeIDs: setToSlice(excluded),
		Limit:      candidatePoolSize,
	}

	candidates, err := s.profiles.FindCandidates(ctx, userID, filters)
	if err != nil {
		return nil, err
	}

	scored := make([]*ScoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if excluded[candidate.ID] {
			continue
		}

		result, err := s.scorer.Score(actor, candidate)
		if err != nil || result == nil {
			// Incomplete profile or preference veto: not an error for the
			// feed, the candidate just doesn't appear.
			continue
		}
		if result.Value < MinSuggestionScore {
			continue
		}

		scored = append(scored, &ScoredCandidate{
			CandidateID: candidate.ID,
			Profile:     candidate,
			Score:       result.Value,
			Labels:      result.Labels,
			Breakdown:   result.Breakdown,
		})
	}

	// Descending by score; ties broken by recency then id so the order is
	// total and repeated calls on unchanged data return the same feed.
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if !scored[i].Profile.LastActive.Equal(scored[j].Profile.LastActive) {
			return scored[i].Profile.LastActive.After(scored[j].Profile.LastActive)
		}
		return scored[i].CandidateID < scored[j].CandidateID
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	ObserveSuggestionCount(len(scored))
	return scored, nil
}

// exclusionSet gathers the identities hidden from userID's feed.
func (s *service) exclusionSet(ctx context.Context, userID int64) (map[int64]bool, error) {
	excluded := map[int64]bool{userID: true}

	matches, err := s.repo.GetUserMatches(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, rec := range matches {
		other := rec.Other(userID)
		switch {
		case rec.IsMutual:
			excluded[other] = true
		case rec.LikedBy(userID) && !rec.LikedBy(other):
			// One-sided like by the actor, still waiting on the other side.
			excluded[other] = true
		}
		// The inverse case, where the other side liked the actor,
		// stays visible so the actor can respond from the feed.
	}

	rejected, err := s.repo.ActiveRejectionTargets(ctx, userID, time.Now())
	if err != nil {
		return nil, err
	}
	for _, id := range rejected {
		excluded[id] = true
	}

	return excluded, nil
}

func preferenceFilter(prefs []string) []string {
	for _, p := range prefs {
		if p == genderPreferenceAll {
			return nil
		}
	}
	return prefs
}

func setToSlice(set map[int64]bool) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}
