package domain

import "errors"

// ErrEmptyTrick indicates an attempt to resolve a trick with no plays.
// Invariant class: the engine only resolves complete tricks.
var ErrEmptyTrick = errors.New("cannot resolve empty trick")

// ResolveTrick returns the winning play: the one with the maximum effective
// value, ties resolved in favor of the earliest play in input order.
// Effective values are computed upstream by the active mission's transform.
func ResolveTrick(plays []PlayedCard) (PlayedCard, error) {
	if len(plays) == 0 {
		return PlayedCard{}, ErrEmptyTrick
	}
	best := plays[0]
	for _, p := range plays[1:] {
		if p.EffectiveValue > best.EffectiveValue {
			best = p
		}
	}
	return best, nil
}
