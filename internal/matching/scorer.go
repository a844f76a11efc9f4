// internal/matching/scorer.go
//
// Deterministic multi-factor compatibility scoring. The scorer is a pure
// function: no storage, no randomness, identical inputs always produce
// identical output.

package matching

import (
	"errors"
	"math"
)

var ErrIncompleteProfile = errors.New("profile is incomplete or unapproved")

// Factor weights. These are fixed policy constants; the API contract and
// the tests depend on the exact values.
const (
	weightAge            = 0.10
	weightGender         = 0.15
	weightDistance       = 0.15
	weightBeliefPractice = 0.30
	weightLifestyle      = 0.15
	weightIntent         = 0.15
)

// Label thresholds.
const (
	thresholdSpiritualRhythm = 80.0
	thresholdPurpose         = 80.0
	thresholdLifestyle       = 75.0
	thresholdIntent          = 75.0
	thresholdSynergy         = 70.0
)

const (
	neutralScore        = 50.0
	activityLevelBonus  = 20.0
	defaultMaxDistance  = 100.0
	genderPreferenceAll = "all"
)

// healingStages is the four-point ordinal scale used for the
// stage-distance term of the belief/practice factor.
var healingStages = []string{"starting-out", "exploring", "deepening", "integrated"}

// compatibleIntents lists intent pairs that score 75 without an exact
// match. Pairs are checked in both directions.
var compatibleIntents = [][2]string{
	{"marriage-oriented", "conscious-partnership"},
	{"conscious-partnership", "exploring-connection"},
	{"marriage-oriented", "spiritual-companionship"},
	{"conscious-partnership", "spiritual-companionship"},
}

// Scorer computes pairwise compatibility.
type Scorer interface {
	Score(a, b *Profile) (*CompatibilityResult, error)
}

type scorer struct{}

func NewScorer() Scorer {
	return scorer{}
}

// Score scores two complete, approved profiles. A nil result with a nil
// error means the gender-preference veto applied: no match is possible
// for this pair regardless of every other factor.
func (s scorer) Score(a, b *Profile) (*CompatibilityResult, error) {
	if err := checkScorable(a); err != nil {
		return nil, err
	}
	if err := checkScorable(b); err != nil {
		return nil, err
	}

	// Hard veto before any other factor is computed.
	if !acceptsGender(a, b) || !acceptsGender(b, a) {
		return nil, nil
	}

	breakdown := CompatibilityBreakdown{
		Age:            ageScore(a, b),
		Gender:         100,
		Distance:       distanceScore(a, b),
		BeliefPractice: beliefPracticeScore(a, b),
		Lifestyle:      lifestyleScore(a, b),
		Intent:         intentScore(a, b),
	}

	total := breakdown.Age*weightAge +
		breakdown.Gender*weightGender +
		breakdown.Distance*weightDistance +
		breakdown.BeliefPractice*weightBeliefPractice +
		breakdown.Lifestyle*weightLifestyle +
		breakdown.Intent*weightIntent

	value := int(math.Round(total))
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}

	return &CompatibilityResult{
		Value:     value,
		Labels:    deriveLabels(a, b, breakdown),
		Breakdown: breakdown,
	}, nil
}

func checkScorable(p *Profile) error {
	if p == nil || !p.IsComplete || !p.IsApproved || p.Age <= 0 || p.Gender == "" {
		return ErrIncompleteProfile
	}
	return nil
}

// acceptsGender reports whether p's preference set admits other's gender.
func acceptsGender(p, other *Profile) bool {
	for _, pref := range p.GenderPreferences {
		if pref == genderPreferenceAll || pref == other.Gender {
			return true
		}
	}
	return false
}

// ageScore steps down with the absolute age difference, but only applies
// when each age falls inside the other's accepted range.
func ageScore(a, b *Profile) float64 {
	if !ageInRange(a.Age, b) || !ageInRange(b.Age, a) {
		return 0
	}

	diff := a.Age - b.Age
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff == 0:
		return 100
	case diff <= 2:
		return 90
	case diff <= 5:
		return 75
	case diff <= 10:
		return 60
	default:
		return 40
	}
}

func ageInRange(age int, p *Profile) bool {
	if p.PreferredMinAge > 0 && age < p.PreferredMinAge {
		return false
	}
	if p.PreferredMaxAge > 0 && age > p.PreferredMaxAge {
		return false
	}
	return true
}

// distanceScore buckets the haversine distance between the two profiles.
// Missing coordinates on both sides is neutral; missing on exactly one
// side scores 0, as does a distance beyond the smaller configured radius.
func distanceScore(a, b *Profile) float64 {
	aHas := a.Latitude != nil && a.Longitude != nil
	bHas := b.Latitude != nil && b.Longitude != nil

	if !aHas && !bHas {
		return neutralScore
	}
	if !aHas || !bHas {
		return 0
	}

	distance := haversineKm(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)

	radius := math.Min(
		derefFloat64(a.MaxDistanceKm, defaultMaxDistance),
		derefFloat64(b.MaxDistanceKm, defaultMaxDistance),
	)
	if distance > radius {
		return 0
	}

	switch {
	case distance <= 5:
		return 100
	case distance <= 25:
		return 90
	case distance <= 50:
		return 75
	case distance <= 100:
		return 60
	default:
		return 40
	}
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371 // km

	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadius * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// beliefPracticeScore averages the available alignment terms: belief-set
// overlap, practice-set overlap, and a linear-decay healing-stage
// distance. Neutral when no term has data.
func beliefPracticeScore(a, b *Profile) float64 {
	var parts []float64

	if len(a.Beliefs) > 0 && len(b.Beliefs) > 0 {
		parts = append(parts, overlapRatio(a.Beliefs, b.Beliefs)*100)
	}
	if len(a.Practices) > 0 && len(b.Practices) > 0 {
		parts = append(parts, overlapRatio(a.Practices, b.Practices)*100)
	}

	if aStage, bStage := stageIndex(a.HealingStage), stageIndex(b.HealingStage); aStage >= 0 && bStage >= 0 {
		d := float64(aStage - bStage)
		if d < 0 {
			d = -d
		}
		span := float64(len(healingStages) - 1)
		parts = append(parts, 100*(span-d)/span)
	}

	if len(parts) == 0 {
		return neutralScore
	}

	var sum float64
	for _, p := range parts {
		sum += p
	}
	return sum / float64(len(parts))
}

// overlapRatio is |intersection| / max(|a|, |b|).
func overlapRatio(a, b []string) float64 {
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}

	matches := 0
	for _, v := range b {
		if set[v] {
			matches++
		}
	}

	max := len(a)
	if len(b) > max {
		max = len(b)
	}
	if max == 0 {
		return 0
	}
	return float64(matches) / float64(max)
}

func stageIndex(stage *string) int {
	if stage == nil {
		return -1
	}
	for i, s := range healingStages {
		if s == *stage {
			return i
		}
	}
	return -1
}

// lifestyleScore is a Jaccard overlap over lifestyle-choice sets plus a
// flat bonus for an exact activity-level match.
func lifestyleScore(a, b *Profile) float64 {
	score := neutralScore
	if len(a.LifestyleChoices) > 0 && len(b.LifestyleChoices) > 0 {
		score = jaccard(a.LifestyleChoices, b.LifestyleChoices) * 100
	}

	if a.ActivityLevel != nil && b.ActivityLevel != nil && *a.ActivityLevel == *b.ActivityLevel {
		score += activityLevelBonus
	}

	return math.Min(100, score)
}

func jaccard(a, b []string) float64 {
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}

	matches := 0
	for _, v := range b {
		if set[v] {
			matches++
		}
	}

	union := len(a) + len(b) - matches
	if union == 0 {
		return 0
	}
	return float64(matches) / float64(union)
}

// intentScore compares relationship intentions: exact match, then the
// compatible-pair table, then intent-badge overlap.
func intentScore(a, b *Profile) float64 {
	if a.Intent == nil || b.Intent == nil {
		return neutralScore
	}

	if *a.Intent == *b.Intent {
		return 100
	}

	for _, pair := range compatibleIntents {
		if (pair[0] == *a.Intent && pair[1] == *b.Intent) ||
			(pair[1] == *a.Intent && pair[0] == *b.Intent) {
			return 75
		}
	}

	if setsIntersect(a.IntentBadges, b.IntentBadges) {
		return 80
	}

	return 40
}

func setsIntersect(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		if set[v] {
			return true
		}
	}
	return false
}

// deriveLabels evaluates the qualitative label rules. Rules are
// independent; a pair can carry several labels at once.
func deriveLabels(a, b *Profile, bd CompatibilityBreakdown) []string {
	var labels []string

	if bd.BeliefPractice >= thresholdSpiritualRhythm {
		labels = append(labels, "aligned-in-spiritual-rhythm")
	}
	if bd.Intent >= thresholdPurpose && (hasText(a.LifePurpose) || hasText(b.LifePurpose)) {
		labels = append(labels, "aligned-in-purpose")
	}
	if bd.Lifestyle >= thresholdLifestyle {
		labels = append(labels, "similar-lifestyle")
	}
	if bd.Intent >= thresholdIntent {
		labels = append(labels, "compatible-intent")
	}
	if bd.BeliefPractice >= thresholdSynergy && bd.Lifestyle >= thresholdSynergy {
		labels = append(labels, "spiritual-synergy")
	}

	return labels
}

func hasText(s *string) bool {
	return s != nil && *s != ""
}

func derefFloat64(f *float64, defaultValue float64) float64 {
	if f != nil {
		return *f
	}
	return defaultValue
}
