// Package consensus chooses block producers and routes their rewards.
package consensus

import (
	"stakechain/core/staking"
)

// Engine is the chain's view of the consensus rules: who produces the
// next block, and how its reward is paid out. It owns no state of its
// own; everything is derived from the staking registry.
type Engine struct {
	registry *staking.Registry
}

func NewEngine(registry *staking.Registry) *Engine {
	return &Engine{registry: registry}
}

// SelectValidator returns the producer for blockIndex, stake-weighted
// and reproducible from registry state alone.
func (e *Engine) SelectValidator(blockIndex uint64) (*staking.Validator, error) {
	return e.registry.SelectValidator(blockIndex)
}

// DistributeRewards pays out a block's reward to the producing validator
// and its delegators per the registry's commission/pro-rata rules.
func (e *Engine) DistributeRewards(blockReward float64, validatorAddress string) {
	e.registry.DistributeStakingRewards(blockReward, validatorAddress)
}

// FinalizeBlock records production bookkeeping for the validator that
// sealed blockIndex.
func (e *Engine) FinalizeBlock(validatorAddress string, blockIndex uint64) {
	e.registry.UpdateValidatorAfterBlock(validatorAddress, blockIndex)
}
