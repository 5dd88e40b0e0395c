package chain

import (
	"time"

	"stakechain/core/block"
	"stakechain/core/staking"
	"stakechain/core/swap"
)

// NetworkStats is the aggregate view exposed to the service layer.
type NetworkStats struct {
	ChainLength       int           `json:"chainLength"`
	TotalTransactions int           `json:"totalTransactions"`
	PendingCount      int           `json:"pendingCount"`
	GenesisSupply     float64       `json:"genesisSupply"`
	MintedRewards     float64       `json:"mintedRewards"`
	CreatedSupply     float64       `json:"createdSupply"`
	BurnedTokens      float64       `json:"burnedTokens"`
	CirculatingSupply float64       `json:"circulatingSupply"`
	TPS               float64       `json:"tps"` // throughput estimate since process start
	Staking           staking.Stats `json:"staking"`
}

// GetNetworkStats computes supply figures, staking stats, and a
// throughput estimate over the process lifetime.
func (c *Chain) GetNetworkStats() NetworkStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var totalTx int
	for _, blk := range c.blocks {
		totalTx += blk.TxCount
	}
	elapsed := time.Since(c.startedAt).Seconds()
	var tps float64
	if elapsed > 0 {
		tps = float64(totalTx) / elapsed
	}
	return NetworkStats{
		ChainLength:       len(c.blocks),
		TotalTransactions: totalTx,
		PendingCount:      c.pool.Size(),
		GenesisSupply:     c.genesisSupply,
		MintedRewards:     c.minted,
		CreatedSupply:     c.created,
		BurnedTokens:      c.burned,
		CirculatingSupply: c.circulatingSupply(),
		TPS:               tps,
		Staking:           c.registry.NetworkStats(),
	}
}

// Snapshot is the serializable export of the whole chain.
type Snapshot struct {
	Blocks     []*block.Block `json:"blocks"`
	ExportedAt time.Time      `json:"exportedAt"`
}

// Export returns the ordered block list for external persistence.
func (c *Chain) Export() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	blocks := make([]*block.Block, len(c.blocks))
	copy(blocks, c.blocks)
	return &Snapshot{Blocks: blocks, ExportedAt: time.Now().UTC()}
}

// BurnTokens removes amount from circulating-supply bookkeeping. A
// boolean guard: false for a non-positive amount or one exceeding the
// circulating supply, with no effect.
func (c *Chain) BurnTokens(amount float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if amount <= 0 {
		return false
	}
	if amount > c.circulatingSupply() {
		return false
	}
	c.burned += amount
	return true
}

// circulatingSupply is genesis plus everything issued or seeded since,
// minus burns. Callers hold c.mu.
func (c *Chain) circulatingSupply() float64 {
	return c.genesisSupply + c.minted + c.created - c.burned
}

// CreateSwapPair registers a liquidity pool. Boolean guard per the swap
// registry's rules.
func (c *Chain) CreateSwapPair(tokenA, tokenB string, reserveA, reserveB float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.swaps.CreatePair(tokenA, tokenB, reserveA, reserveB)
}

// SwapPairs lists every registered liquidity pool.
func (c *Chain) SwapPairs() []*swap.Pair {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.swaps.Pairs()
}
