package matching

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func baseProfile(id int64) *Profile {
	return &Profile{
		ID:                id,
		DisplayName:       "someone",
		Age:               30,
		Gender:            "female",
		GenderPreferences: []string{"all"},
		PreferredMinAge:   20,
		PreferredMaxAge:   45,
		IsComplete:        true,
		IsApproved:        true,
		LastActive:        time.Now(),
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	s := NewScorer()

	a := baseProfile(1)
	a.Beliefs = []string{"mindfulness", "nonduality"}
	a.Practices = []string{"meditation", "yoga"}
	a.HealingStage = strPtr("exploring")
	a.Intent = strPtr("conscious-partnership")

	b := baseProfile(2)
	b.Beliefs = []string{"mindfulness"}
	b.Practices = []string{"meditation"}
	b.HealingStage = strPtr("deepening")
	b.Intent = strPtr("conscious-partnership")

	first, err := s.Score(a, b)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	second, err := s.Score(a, b)
	if err != nil {
		t.Fatalf("Score returned error on repeat: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("scoring is not deterministic: %+v vs %+v", first, second)
	}
}

func TestScoreIsSymmetric(t *testing.T) {
	s := NewScorer()

	a := baseProfile(1)
	a.Age = 27
	a.Beliefs = []string{"taoism", "mindfulness"}
	a.Intent = strPtr("exploring-connection")

	b := baseProfile(2)
	b.Age = 34
	b.Beliefs = []string{"mindfulness"}
	b.Intent = strPtr("conscious-partnership")

	ab, err := s.Score(a, b)
	if err != nil {
		t.Fatalf("Score(a, b) returned error: %v", err)
	}
	ba, err := s.Score(b, a)
	if err != nil {
		t.Fatalf("Score(b, a) returned error: %v", err)
	}

	if ab.Value != ba.Value {
		t.Errorf("score not symmetric: %d vs %d", ab.Value, ba.Value)
	}
	if ab.Breakdown != ba.Breakdown {
		t.Errorf("breakdown not symmetric: %+v vs %+v", ab.Breakdown, ba.Breakdown)
	}
}

func TestScoreGenderVetoPrecedesEverything(t *testing.T) {
	s := NewScorer()

	// Perfect alignment on every other factor.
	a := baseProfile(1)
	a.Gender = "male"
	a.GenderPreferences = []string{"female"}
	a.Beliefs = []string{"mindfulness"}
	a.Intent = strPtr("marriage-oriented")

	b := baseProfile(2)
	b.Gender = "female"
	b.GenderPreferences = []string{"female"} // does not accept a
	b.Beliefs = []string{"mindfulness"}
	b.Intent = strPtr("marriage-oriented")

	result, err := s.Score(a, b)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result under preference veto, got %+v", result)
	}
}

func TestScoreIncompleteProfile(t *testing.T) {
	s := NewScorer()

	cases := []struct {
		name   string
		mutate func(*Profile)
	}{
		{"not complete", func(p *Profile) { p.IsComplete = false }},
		{"not approved", func(p *Profile) { p.IsApproved = false }},
		{"zero age", func(p *Profile) { p.Age = 0 }},
		{"empty gender", func(p *Profile) { p.Gender = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := baseProfile(1)
			b := baseProfile(2)
			tc.mutate(b)

			if _, err := s.Score(a, b); !errors.Is(err, ErrIncompleteProfile) {
				t.Errorf("expected ErrIncompleteProfile, got %v", err)
			}
		})
	}
}

func TestScoreKnownPair(t *testing.T) {
	s := NewScorer()

	a := baseProfile(1)
	a.Age = 30
	a.Gender = "male"
	a.GenderPreferences = []string{"female"}
	a.PreferredMinAge = 25
	a.PreferredMaxAge = 35
	a.Practices = []string{"meditation", "yoga", "breathwork"}
	a.HealingStage = strPtr("exploring")
	a.Intent = strPtr("marriage-oriented")

	b := baseProfile(2)
	b.Age = 28
	b.Gender = "female"
	b.GenderPreferences = []string{"male"}
	b.PreferredMinAge = 25
	b.PreferredMaxAge = 35
	b.Practices = []string{"meditation", "yoga"}
	b.HealingStage = strPtr("deepening")
	b.Intent = strPtr("conscious-partnership")

	result, err := s.Score(a, b)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if result == nil {
		t.Fatal("expected a result, got veto")
	}

	// Age 90, gender 100, distance 50 (no coords either side), practices
	// 2/3 and stage distance 1 average to 66.67, lifestyle 50, intent 75.
	if result.Value != 70 {
		t.Errorf("expected score 70, got %d (breakdown %+v)", result.Value, result.Breakdown)
	}

	wantLabels := []string{"compatible-intent"}
	if !reflect.DeepEqual(result.Labels, wantLabels) {
		t.Errorf("expected labels %v, got %v", wantLabels, result.Labels)
	}
}

func TestAgeScoreZeroOutsidePreferredRange(t *testing.T) {
	s := NewScorer()

	a := baseProfile(1)
	a.Age = 30
	a.PreferredMinAge = 28
	a.PreferredMaxAge = 34

	b := baseProfile(2)
	b.Age = 44 // outside a's range, diff also > 10

	result, err := s.Score(a, b)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if result.Breakdown.Age != 0 {
		t.Errorf("expected age factor 0, got %v", result.Breakdown.Age)
	}
}

func TestDistanceScoreMissingCoordinates(t *testing.T) {
	s := NewScorer()

	t.Run("both missing is neutral", func(t *testing.T) {
		result, err := s.Score(baseProfile(1), baseProfile(2))
		if err != nil {
			t.Fatalf("Score returned error: %v", err)
		}
		if result.Breakdown.Distance != 50 {
			t.Errorf("expected distance 50, got %v", result.Breakdown.Distance)
		}
	})

	t.Run("one missing scores zero", func(t *testing.T) {
		a := baseProfile(1)
		a.Latitude = f64Ptr(51.5074)
		a.Longitude = f64Ptr(-0.1278)

		result, err := s.Score(a, baseProfile(2))
		if err != nil {
			t.Fatalf("Score returned error: %v", err)
		}
		if result.Breakdown.Distance != 0 {
			t.Errorf("expected distance 0, got %v", result.Breakdown.Distance)
		}
	})
}

func TestDistanceScoreBucketsAndRadius(t *testing.T) {
	s := NewScorer()

	// London and a point roughly 15km east.
	a := baseProfile(1)
	a.Latitude = f64Ptr(51.5074)
	a.Longitude = f64Ptr(-0.1278)

	b := baseProfile(2)
	b.Latitude = f64Ptr(51.5074)
	b.Longitude = f64Ptr(0.09)

	result, err := s.Score(a, b)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if result.Breakdown.Distance != 90 {
		t.Errorf("expected distance bucket 90 for ~15km, got %v", result.Breakdown.Distance)
	}

	// Shrinking one side's radius below the separation zeroes the factor.
	b.MaxDistanceKm = f64Ptr(5)
	result, err = s.Score(a, b)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if result.Breakdown.Distance != 0 {
		t.Errorf("expected distance 0 beyond radius, got %v", result.Breakdown.Distance)
	}
}

func TestLifestyleScoreActivityBonusClamped(t *testing.T) {
	s := NewScorer()

	a := baseProfile(1)
	a.LifestyleChoices = []string{"vegetarian", "sober"}
	a.ActivityLevel = strPtr("active")

	b := baseProfile(2)
	b.LifestyleChoices = []string{"vegetarian", "sober"}
	b.ActivityLevel = strPtr("active")

	result, err := s.Score(a, b)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	// Identical sets give 100; the activity bonus must not push past it.
	if result.Breakdown.Lifestyle != 100 {
		t.Errorf("expected lifestyle clamped to 100, got %v", result.Breakdown.Lifestyle)
	}
}

func TestIntentScoreTiers(t *testing.T) {
	s := NewScorer()

	score := func(ia, ib *string, badgesA, badgesB []string) float64 {
		a := baseProfile(1)
		a.Intent = ia
		a.IntentBadges = badgesA
		b := baseProfile(2)
		b.Intent = ib
		b.IntentBadges = badgesB

		result, err := s.Score(a, b)
		if err != nil {
			t.Fatalf("Score returned error: %v", err)
		}
		return result.Breakdown.Intent
	}

	if got := score(strPtr("marriage-oriented"), strPtr("marriage-oriented"), nil, nil); got != 100 {
		t.Errorf("exact intent match: expected 100, got %v", got)
	}
	if got := score(strPtr("marriage-oriented"), strPtr("conscious-partnership"), nil, nil); got != 75 {
		t.Errorf("compatible intents: expected 75, got %v", got)
	}
	if got := score(strPtr("marriage-oriented"), strPtr("exploring-connection"), []string{"depth"}, []string{"depth"}); got != 80 {
		t.Errorf("badge overlap: expected 80, got %v", got)
	}
	if got := score(strPtr("marriage-oriented"), strPtr("exploring-connection"), nil, nil); got != 40 {
		t.Errorf("incompatible intents: expected 40, got %v", got)
	}
	if got := score(nil, strPtr("marriage-oriented"), nil, nil); got != 50 {
		t.Errorf("missing intent: expected 50, got %v", got)
	}
}

func TestDeriveLabelRules(t *testing.T) {
	s := NewScorer()

	a := baseProfile(1)
	a.Beliefs = []string{"mindfulness", "nonduality"}
	a.Practices = []string{"meditation"}
	a.HealingStage = strPtr("deepening")
	a.LifestyleChoices = []string{"sober", "vegetarian"}
	a.Intent = strPtr("conscious-partnership")
	a.LifePurpose = strPtr("teaching")

	b := baseProfile(2)
	b.Beliefs = []string{"mindfulness", "nonduality"}
	b.Practices = []string{"meditation"}
	b.HealingStage = strPtr("deepening")
	b.LifestyleChoices = []string{"sober", "vegetarian"}
	b.Intent = strPtr("conscious-partnership")

	result, err := s.Score(a, b)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}

	want := []string{
		"aligned-in-spiritual-rhythm",
		"aligned-in-purpose",
		"similar-lifestyle",
		"compatible-intent",
		"spiritual-synergy",
	}
	if !reflect.DeepEqual(result.Labels, want) {
		t.Errorf("expected labels %v, got %v", want, result.Labels)
	}
}
