package matching

import (
	"errors"
	"testing"
)

func TestCanonicalizeOrdersPair(t *testing.T) {
	pair, err := Canonicalize(42, 7)
	if err != nil {
		t.Fatalf("Canonicalize(42, 7) returned error: %v", err)
	}
	if pair.A != 7 || pair.B != 42 {
		t.Errorf("expected pair (7, 42), got (%d, %d)", pair.A, pair.B)
	}
	if pair.ActorIsA {
		t.Error("actor 42 should map to side B")
	}

	pair, err = Canonicalize(7, 42)
	if err != nil {
		t.Fatalf("Canonicalize(7, 42) returned error: %v", err)
	}
	if pair.A != 7 || pair.B != 42 {
		t.Errorf("expected pair (7, 42), got (%d, %d)", pair.A, pair.B)
	}
	if !pair.ActorIsA {
		t.Error("actor 7 should map to side A")
	}
}

func TestCanonicalizeRejectsInvalidPairs(t *testing.T) {
	cases := []struct {
		name          string
		actor, target int64
	}{
		{"self pair", 5, 5},
		{"zero actor", 0, 5},
		{"zero target", 5, 0},
		{"negative actor", -1, 5},
		{"negative target", 5, -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Canonicalize(tc.actor, tc.target); !errors.Is(err, ErrInvalidIdentifier) {
				t.Errorf("Canonicalize(%d, %d) = %v, want ErrInvalidIdentifier", tc.actor, tc.target, err)
			}
		})
	}
}
