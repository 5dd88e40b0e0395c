package chain

import (
	"stakechain/core/block"
	"stakechain/core/staking"
	"stakechain/core/tx"
	"stakechain/types/ids"
)

// GetBalance returns the spendable balance for address, 0 if unknown.
func (c *Chain) GetBalance(address string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Balance(address)
}

// GetBlock returns the block at index, or nil.
func (c *Chain) GetBlock(index uint64) *block.Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index >= uint64(len(c.blocks)) {
		return nil
	}
	return c.blocks[index]
}

// GetBlockByHash returns the block with the given header hash, or nil.
func (c *Chain) GetBlockByHash(hash string) *block.Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, blk := range c.blocks {
		if blk.Hash == hash {
			return blk
		}
	}
	return nil
}

// GetTransaction searches the pending pool first, then every mined
// block, for the transaction with the given ID.
func (c *Chain) GetTransaction(id ids.ID) *tx.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.pool.Get(id); ok {
		return t
	}
	for _, blk := range c.blocks {
		if t := blk.FindTransaction(id); t != nil {
			return t
		}
	}
	return nil
}

// PendingTransactions lists the pool contents in arrival order.
func (c *Chain) PendingTransactions() []*tx.Transaction {
	return c.pool.All()
}

// Length returns the number of blocks in the chain.
func (c *Chain) Length() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.blocks)
}

// LatestBlock returns the chain tip.
func (c *Chain) LatestBlock() *block.Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blocks[len(c.blocks)-1]
}

// GetValidator returns a snapshot of the validator record for address,
// or nil. Accessors copy out of the aggregate: callers (JSON encoders in
// particular) read the result after the lock is released, while mining
// keeps mutating the live records under it.
func (c *Chain) GetValidator(address string) *staking.Validator {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.registry.GetValidator(address)
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

// Validators returns snapshots of every validator in registration order.
func (c *Chain) Validators() []staking.Validator {
	c.mu.Lock()
	defer c.mu.Unlock()
	live := c.registry.AllValidators()
	out := make([]staking.Validator, len(live))
	for i, v := range live {
		out[i] = *v
	}
	return out
}

// DelegationsOf returns snapshots of the delegator's delegation records.
func (c *Chain) DelegationsOf(delegator string) []staking.Delegation {
	c.mu.Lock()
	defer c.mu.Unlock()
	live := c.registry.DelegationsOf(delegator)
	out := make([]staking.Delegation, len(live))
	for i, d := range live {
		out[i] = *d
		if d.MaturesAt != nil {
			maturesAt := *d.MaturesAt
			out[i].MaturesAt = &maturesAt
		}
	}
	return out
}

// CreateAccount registers a new account with an initial balance. The
// seeded balance enters the circulating-supply bookkeeping.
func (c *Chain) CreateAccount(address string, initialBalance float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.ledger.CreateAccount(address, initialBalance); err != nil {
		return err
	}
	c.created += initialBalance
	return nil
}

// Stake delegates through the chain so the aggregate lock serializes it
// against mining and admission.
func (c *Chain) Stake(delegator, validatorAddress string, amount float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Stake(delegator, validatorAddress, amount)
}

// Unstake begins a withdrawal under the aggregate lock.
func (c *Chain) Unstake(delegator, validatorAddress string, amount float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Unstake(delegator, validatorAddress, amount)
}

// CompleteUnstaking releases matured withdrawals under the aggregate lock.
func (c *Chain) CompleteUnstaking(delegator string) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.CompleteUnstaking(delegator)
}
