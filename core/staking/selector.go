package staking

import (
	"fmt"
)

// SeedFunc derives a pseudo-random value in [0,1) from a block index.
// It is deliberately swappable so the linear-congruential default can be
// replaced (e.g. by a VRF) without touching the selection walk.
type SeedFunc func(blockIndex uint64) float64

// Linear-congruential parameters (glibc's rand).
const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
	lcgModulus    = 1 << 31
)

// LCGSeed is the default SeedFunc: one LCG step over the block index,
// normalized to [0,1). Reproducible from public chain state alone, which
// is what lets independent observers agree on a block's producer.
func LCGSeed(blockIndex uint64) float64 {
	seed := (lcgMultiplier*blockIndex + lcgIncrement) % lcgModulus
	return float64(seed) / float64(lcgModulus)
}

// SelectValidator picks the producer for blockIndex: the seed scales the
// active set's combined stake into a target, and a cumulative walk over
// the active validators in registration order finds the validator whose
// stake interval contains it. Deterministic for fixed state and index.
func (r *Registry) SelectValidator(blockIndex uint64) (*Validator, error) {
	return r.selectValidatorSeeded(blockIndex, LCGSeed)
}

func (r *Registry) selectValidatorSeeded(blockIndex uint64, seed SeedFunc) (*Validator, error) {
	active := r.ActiveValidators()
	if len(active) == 0 {
		return nil, fmt.Errorf("no active validators available to produce block %d", blockIndex)
	}
	var totalStake float64
	for _, v := range active {
		totalStake += v.TotalStake
	}
	target := seed(blockIndex) * totalStake
	var cumulative float64
	for _, v := range active {
		cumulative += v.TotalStake
		if cumulative >= target {
			return v, nil
		}
	}
	// Unreachable on a non-empty active set; kept as the rounding fallback.
	return active[0], nil
}
