// internal/matching/canonical.go

package matching

import "errors"

var ErrInvalidIdentifier = errors.New("invalid user identifier")

// CanonicalPair assigns the two identities of an unordered pair to fixed
// A/B slots using the numeric total order, so exactly one storage key
// exists per pair. ActorIsA records which slot the acting user landed in.
type CanonicalPair struct {
	A        int64
	B        int64
	ActorIsA bool
}

// Canonicalize orders (actor, target) into a CanonicalPair. It fails with
// ErrInvalidIdentifier for non-positive ids or a self-pair.
func Canonicalize(actor, target int64) (CanonicalPair, error) {
	if actor <= 0 || target <= 0 || actor == target {
		return CanonicalPair{}, ErrInvalidIdentifier
	}
	if actor < target {
		return CanonicalPair{A: actor, B: target, ActorIsA: true}, nil
	}
	return CanonicalPair{A: target, B: actor, ActorIsA: false}, nil
}
