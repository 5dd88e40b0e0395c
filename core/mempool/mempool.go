// Package mempool holds staged, unconfirmed transactions awaiting block
// inclusion.
package mempool

import (
	"sync"

	"stakechain/core/tx"
	"stakechain/types/ids"
)

// Pool is the pending-transaction pool. FIFO order is the order blocks
// apply transactions in, so it is tracked explicitly alongside the map.
type Pool struct {
	mu    sync.Mutex
	txs   map[ids.ID]*tx.Transaction
	order []ids.ID
	max   int
}

// NewPool creates a pool admitting at most max transactions.
func NewPool(max int) *Pool {
	return &Pool{
		txs: make(map[ids.ID]*tx.Transaction),
		max: max,
	}
}

// Add appends a transaction in arrival order. Returns false for a
// duplicate ID or a full pool; the pool never partially enqueues.
func (p *Pool) Add(t *tx.Transaction) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.txs[t.ID]; exists {
		return false
	}
	if len(p.txs) >= p.max {
		return false
	}
	p.txs[t.ID] = t
	p.order = append(p.order, t.ID)
	return true
}

// Get returns a pooled transaction by ID.
func (p *Pool) Get(id ids.ID) (*tx.Transaction, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.txs[id]
	return t, ok
}

// All returns the pooled transactions in FIFO order.
func (p *Pool) All() []*tx.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*tx.Transaction, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.txs[id])
	}
	return out
}

// Clear empties the pool and returns how many transactions were dropped.
func (p *Pool) Clear() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.txs)
	p.txs = make(map[ids.ID]*tx.Transaction)
	p.order = nil
	return n
}

// Size returns the number of pooled transactions.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.txs)
}
