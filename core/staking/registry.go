package staking

import (
	"fmt"
	"time"

	"stakechain/core/ledger"
)

// Registry configuration. MinStakeAmount doubles as the activation
// threshold: a validator is active exactly while totalStake >= minimum.
const (
	MinStakeAmount    = 100.0
	MaxValidators     = 21
	StakingRewardRate = 0.08 // informational; per-block reward is supplied by the chain
	UnstakingPeriod   = 7 * 24 * time.Hour
)

// Validator is an address eligible to produce blocks.
type Validator struct {
	Address         string  `json:"address"`
	SelfStake       float64 `json:"selfStake"`
	TotalStake      float64 `json:"totalStake"` // self + delegated
	Commission      float64 `json:"commission"` // fraction of block reward kept, in [0,1)
	Active          bool    `json:"active"`
	BlocksProduced  uint64  `json:"blocksProduced"`
	LastActiveBlock uint64  `json:"lastActiveBlock"`
}

// Delegation records one delegator's stake toward one validator.
// MaturesAt is set while an unstaked amount is waiting out the
// unstaking period and cleared once released.
type Delegation struct {
	Delegator      string     `json:"delegator"`
	Validator      string     `json:"validator"`
	StakedAmount   float64    `json:"stakedAmount"`
	Rewards        float64    `json:"rewards"`
	PendingRelease float64    `json:"pendingRelease,omitempty"`
	MaturesAt      *time.Time `json:"maturesAt,omitempty"`
}

// Registry owns the validator set and all delegation records. Like the
// ledger it relies on the chain aggregate for serialization.
type Registry struct {
	ledger      *ledger.Ledger
	validators  map[string]*Validator
	order       []string // validator insertion order, fixes selection walk order
	delegations map[string][]*Delegation // keyed by delegator

	now func() time.Time // swapped out in tests
}

func NewRegistry(l *ledger.Ledger) *Registry {
	return &Registry{
		ledger:      l,
		validators:  make(map[string]*Validator),
		delegations: make(map[string][]*Delegation),
		now:         time.Now,
	}
}

// DefaultCommission applies to validators created by self-nomination.
const DefaultCommission = 0.05

// Stake delegates amount from delegator to validatorAddress. The two
// intents it covers are kept distinct below: staking to one's own
// address is a SelfNomination (may create a validator), anything else
// is a Delegation to an existing validator.
func (r *Registry) Stake(delegator, validatorAddress string, amount float64) error {
	if delegator == validatorAddress {
		return r.SelfNominate(delegator, amount)
	}
	return r.Delegate(delegator, validatorAddress, amount)
}

// SelfNominate stakes amount from an address onto itself, creating its
// validator record on first use subject to the MaxValidators cap.
func (r *Registry) SelfNominate(address string, amount float64) error {
	acct, err := r.checkStake(address, amount)
	if err != nil {
		return err
	}
	v, exists := r.validators[address]
	if !exists {
		if len(r.validators) >= MaxValidators {
			return fmt.Errorf("validator cap of %d reached", MaxValidators)
		}
		v = &Validator{Address: address, Commission: DefaultCommission}
		r.validators[address] = v
		r.order = append(r.order, address)
		acct.IsValidator = true
	}
	v.SelfStake += amount
	r.applyStake(acct, v, amount)
	return nil
}

// Delegate stakes amount from delegator toward an existing validator.
func (r *Registry) Delegate(delegator, validatorAddress string, amount float64) error {
	acct, err := r.checkStake(delegator, amount)
	if err != nil {
		return err
	}
	v, exists := r.validators[validatorAddress]
	if !exists {
		return fmt.Errorf("validator %s does not exist; only self-nomination may create one", validatorAddress)
	}
	r.applyStake(acct, v, amount)
	return nil
}

func (r *Registry) checkStake(delegator string, amount float64) (*ledger.Account, error) {
	if amount < MinStakeAmount {
		return nil, fmt.Errorf("stake amount %v is below the minimum of %v", amount, MinStakeAmount)
	}
	acct := r.ledger.GetAccount(delegator)
	if acct == nil {
		return nil, fmt.Errorf("no account found for delegator %s", delegator)
	}
	if acct.Balance < amount {
		return nil, fmt.Errorf("insufficient balance to stake: have %v, need %v", acct.Balance, amount)
	}
	return acct, nil
}

// applyStake moves amount from the delegator's spendable balance into the
// validator's stake and upserts the delegation record. Preconditions were
// checked by checkStake.
func (r *Registry) applyStake(acct *ledger.Account, v *Validator, amount float64) {
	r.ledger.AdjustBalance(acct.Address, -amount)
	acct.Staked += amount
	v.TotalStake += amount
	v.Active = v.TotalStake >= MinStakeAmount

	if d := r.findDelegation(acct.Address, v.Address); d != nil {
		d.StakedAmount += amount
	} else {
		r.delegations[acct.Address] = append(r.delegations[acct.Address], &Delegation{
			Delegator:    acct.Address,
			Validator:    v.Address,
			StakedAmount: amount,
		})
	}
}

// RegisterGenesisValidator installs a validator with an explicit
// commission at bootstrap, bypassing the spendable-balance path: genesis
// self-stakes are minted directly into the staked position.
func (r *Registry) RegisterGenesisValidator(address string, selfStake, commission float64) error {
	if _, exists := r.validators[address]; exists {
		return fmt.Errorf("validator %s already exists", address)
	}
	if len(r.validators) >= MaxValidators {
		return fmt.Errorf("validator cap of %d reached", MaxValidators)
	}
	if commission < 0 || commission >= 1 {
		return fmt.Errorf("commission must be in [0,1), got %v", commission)
	}
	acct := r.ledger.GetOrCreate(address)
	acct.IsValidator = true
	acct.Staked += selfStake

	v := &Validator{
		Address:    address,
		SelfStake:  selfStake,
		TotalStake: selfStake,
		Commission: commission,
		Active:     selfStake >= MinStakeAmount,
	}
	r.validators[address] = v
	r.order = append(r.order, address)
	r.delegations[address] = append(r.delegations[address], &Delegation{
		Delegator:    address,
		Validator:    address,
		StakedAmount: selfStake,
	})
	return nil
}

// Unstake begins withdrawing amount of delegator's stake from
// validatorAddress. The funds only become spendable again once the
// unstaking period elapses and CompleteUnstaking is called.
func (r *Registry) Unstake(delegator, validatorAddress string, amount float64) error {
	d := r.findDelegation(delegator, validatorAddress)
	if d == nil {
		return fmt.Errorf("no staking record found for %s with validator %s", delegator, validatorAddress)
	}
	if d.StakedAmount < amount {
		return fmt.Errorf("insufficient staked amount: have %v, requested %v", d.StakedAmount, amount)
	}

	d.StakedAmount -= amount
	d.PendingRelease += amount
	maturesAt := r.now().Add(UnstakingPeriod)
	d.MaturesAt = &maturesAt

	if v, ok := r.validators[validatorAddress]; ok {
		v.TotalStake -= amount
		if delegator == validatorAddress {
			v.SelfStake -= amount
		}
		v.Active = v.TotalStake >= MinStakeAmount
	}
	if acct := r.ledger.GetAccount(delegator); acct != nil {
		acct.Staked -= amount
	}
	return nil
}

// CompleteUnstaking releases every matured pending withdrawal for the
// delegator back to their spendable balance and returns the total
// released. Idempotent: a second call without new unstakes releases 0.
func (r *Registry) CompleteUnstaking(delegator string) float64 {
	var released float64
	now := r.now()
	records := r.delegations[delegator]
	kept := records[:0]
	for _, d := range records {
		if d.MaturesAt != nil && !now.Before(*d.MaturesAt) {
			released += d.PendingRelease
			r.ledger.AdjustBalance(delegator, d.PendingRelease)
			d.PendingRelease = 0
			d.MaturesAt = nil
		}
		// A record with nothing staked and nothing pending is spent.
		if d.StakedAmount == 0 && d.MaturesAt == nil {
			continue
		}
		kept = append(kept, d)
	}
	if len(kept) == 0 {
		delete(r.delegations, delegator)
	} else {
		r.delegations[delegator] = kept
	}
	return released
}

// UpdateValidatorAfterBlock records that validatorAddress produced the
// block at blockIndex.
func (r *Registry) UpdateValidatorAfterBlock(validatorAddress string, blockIndex uint64) {
	if v, ok := r.validators[validatorAddress]; ok {
		v.BlocksProduced++
		v.LastActiveBlock = blockIndex
	}
}

// DistributeStakingRewards splits blockReward between the validator (its
// commission share) and its delegators (pro-rata by staked amount). The
// distributed total equals blockReward up to floating-point rounding.
// Unknown validator is a silent no-op.
func (r *Registry) DistributeStakingRewards(blockReward float64, validatorAddress string) {
	v, ok := r.validators[validatorAddress]
	if !ok || blockReward <= 0 {
		return
	}
	commission := blockReward * v.Commission
	if acct := r.ledger.GetAccount(validatorAddress); acct != nil {
		acct.Rewards += commission
	}

	remainder := blockReward - commission
	if v.TotalStake <= 0 {
		// Nothing delegated; the validator keeps the whole payout.
		if acct := r.ledger.GetAccount(validatorAddress); acct != nil {
			acct.Rewards += remainder
		}
		return
	}
	for _, records := range r.delegations {
		for _, d := range records {
			if d.Validator != validatorAddress || d.StakedAmount == 0 {
				continue
			}
			share := remainder * (d.StakedAmount / v.TotalStake)
			d.Rewards += share
			if acct := r.ledger.GetAccount(d.Delegator); acct != nil {
				acct.Rewards += share
			}
		}
	}
}

// GetValidator returns the validator record for address, or nil.
func (r *Registry) GetValidator(address string) *Validator {
	return r.validators[address]
}

// ActiveValidators returns active validators in registration order.
func (r *Registry) ActiveValidators() []*Validator {
	var active []*Validator
	for _, addr := range r.order {
		if v := r.validators[addr]; v.Active {
			active = append(active, v)
		}
	}
	return active
}

// AllValidators returns every validator in registration order.
func (r *Registry) AllValidators() []*Validator {
	out := make([]*Validator, 0, len(r.order))
	for _, addr := range r.order {
		out = append(out, r.validators[addr])
	}
	return out
}

// DelegationsOf returns the delegator's delegation records.
func (r *Registry) DelegationsOf(delegator string) []*Delegation {
	return r.delegations[delegator]
}

// TotalStaked sums totalStake over the whole validator set.
func (r *Registry) TotalStaked() float64 {
	var total float64
	for _, addr := range r.order {
		total += r.validators[addr].TotalStake
	}
	return total
}

// Stats is the aggregate view reported through the network stats endpoint.
type Stats struct {
	ValidatorCount    int     `json:"validatorCount"`
	ActiveValidators  int     `json:"activeValidators"`
	TotalStaked       float64 `json:"totalStaked"`
	MinStakeAmount    float64 `json:"minStakeAmount"`
	MaxValidators     int     `json:"maxValidators"`
	StakingRewardRate float64 `json:"stakingRewardRate"`
	UnstakingPeriod   string  `json:"unstakingPeriod"`
}

// NetworkStats computes aggregate staking statistics.
func (r *Registry) NetworkStats() Stats {
	return Stats{
		ValidatorCount:    len(r.validators),
		ActiveValidators:  len(r.ActiveValidators()),
		TotalStaked:       r.TotalStaked(),
		MinStakeAmount:    MinStakeAmount,
		MaxValidators:     MaxValidators,
		StakingRewardRate: StakingRewardRate,
		UnstakingPeriod:   UnstakingPeriod.String(),
	}
}

func (r *Registry) findDelegation(delegator, validatorAddress string) *Delegation {
	for _, d := range r.delegations[delegator] {
		if d.Validator == validatorAddress {
			return d
		}
	}
	return nil
}

// SetClock overrides the registry's time source. Tests use this to move
// past the unstaking period without sleeping.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}
