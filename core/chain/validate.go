package chain

import (
	"log"

	"stakechain/core/genesis"
)

// IsChainValid walks the full chain and verifies structural integrity:
// the index sequence starts at 0 and increments by one, each block links
// to its predecessor's hash, and each stored hash matches a fresh
// recomputation of the header. A query only; never mutates state.
func (c *Chain) IsChainValid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, blk := range c.blocks {
		if blk.Index != uint64(i) {
			log.Printf("[validate] block at position %d carries index %d", i, blk.Index)
			return false
		}
		if blk.Hash != blk.ComputeHash() {
			log.Printf("[validate] block %d stored hash does not match recomputation", i)
			return false
		}
		if i == 0 {
			if blk.PrevHash != genesis.GenesisPrevHash {
				log.Printf("[validate] genesis block prevHash is %q", blk.PrevHash)
				return false
			}
			continue
		}
		if blk.PrevHash != c.blocks[i-1].Hash {
			log.Printf("[validate] block %d prevHash does not match block %d hash", i, i-1)
			return false
		}
	}
	return true
}
