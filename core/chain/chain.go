// Package chain orchestrates admission, mining, and validation over the
// ledger, staking registry, and transaction pool.
package chain

import (
	"crypto/ed25519"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"stakechain/core/block"
	"stakechain/core/consensus"
	"stakechain/core/genesis"
	"stakechain/core/ledger"
	"stakechain/core/mempool"
	"stakechain/core/staking"
	"stakechain/core/swap"
	"stakechain/core/tx"
)

// BaseBlockReward is the fixed issuance minted per mined block. The
// payout distributed to the producer and its delegators is the reward
// plus the block's collected fees, so fees are conserved into rewards.
const BaseBlockReward = 10.0

// DefaultPoolSize caps the pending-transaction pool.
const DefaultPoolSize = 10_000

// Chain owns the ordered block sequence and every collaborator that
// mutates shared state. One mutex guards the whole aggregate: cross-entity
// invariants (delegator balance vs. validator totalStake) must move
// together, so there are no per-field locks.
type Chain struct {
	mu sync.Mutex

	blocks   []*block.Block
	pool     *mempool.Pool
	ledger   *ledger.Ledger
	registry *staking.Registry
	engine   *consensus.Engine
	swaps    *swap.Registry

	genesisSupply float64
	minted        float64 // issuance only: BaseBlockReward per block
	created       float64 // balances seeded through CreateAccount
	burned        float64
	startedAt     time.Time

	signKey ed25519.PrivateKey // optional, signs sealed blocks
}

// New bootstraps a chain from the genesis config: validator set
// installed, index-0 block sealed, pool empty.
func New(cfg *genesis.Config) (*Chain, error) {
	l := ledger.NewLedger()
	reg := staking.NewRegistry(l)
	c := &Chain{
		pool:      mempool.NewPool(DefaultPoolSize),
		ledger:    l,
		registry:  reg,
		engine:    consensus.NewEngine(reg),
		swaps:     swap.NewRegistry(),
		startedAt: time.Now(),
	}
	blk, err := genesis.Init(cfg, l, reg)
	if err != nil {
		return nil, fmt.Errorf("genesis init: %w", err)
	}
	c.blocks = append(c.blocks, blk)
	for _, vc := range cfg.Validators {
		c.genesisSupply += vc.SelfStake
	}
	log.Printf("[genesis] sealed block 0 hash=%s validators=%d", blk.Hash[:8], len(cfg.Validators))
	return c, nil
}

// SetSignKey gives the chain a node key to sign blocks it seals.
func (c *Chain) SetSignKey(priv ed25519.PrivateKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signKey = priv
}

// Receipt acknowledges an admitted transaction.
type Receipt struct {
	ReceiptID string    `json:"receiptId"`
	TxID      string    `json:"txId"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Submit runs admission checks and enqueues the transaction, returning a
// receipt. Failures are explanatory: they name the precondition that
// failed. The transaction is never partially enqueued.
func (c *Chain) Submit(t *tx.Transaction) (*Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkAdmission(t); err != nil {
		return nil, err
	}
	if !c.pool.Add(t) {
		return nil, fmt.Errorf("transaction %s rejected by pool (duplicate or pool full)", t.ID.Short())
	}
	return &Receipt{
		ReceiptID: uuid.NewString(),
		TxID:      t.ID.String(),
		Status:    "pending",
		Timestamp: time.Now().UTC(),
	}, nil
}

// AddTransaction is the boolean form of Submit for callers that only
// need the admission verdict.
func (c *Chain) AddTransaction(t *tx.Transaction) bool {
	_, err := c.Submit(t)
	if err != nil {
		log.Printf("[pool] rejected tx: %v", err)
	}
	return err == nil
}

// checkAdmission validates a transaction eagerly, before it enters the
// pool. Registry-level stake rules are re-checked at apply time; here we
// reject what is already certainly invalid.
func (c *Chain) checkAdmission(t *tx.Transaction) error {
	if t == nil {
		return fmt.Errorf("nil transaction")
	}
	if !tx.ValidType(t.Type) {
		return fmt.Errorf("unknown transaction type %q", t.Type)
	}
	if t.Fee < 0 {
		return fmt.Errorf("fee must not be negative, got %v", t.Fee)
	}
	switch t.Type {
	case tx.TypeTransfer, tx.TypeStake:
		if t.Amount <= 0 {
			return fmt.Errorf("%s amount must be positive, got %v", t.Type, t.Amount)
		}
		if balance := c.ledger.Balance(t.Sender); balance < t.Cost() {
			return fmt.Errorf("insufficient balance for %s: have %v, need %v", t.Type, balance, t.Cost())
		}
	case tx.TypeUnstake:
		if t.Amount <= 0 {
			return fmt.Errorf("unstake amount must be positive, got %v", t.Amount)
		}
		if balance := c.ledger.Balance(t.Sender); balance < t.Fee {
			return fmt.Errorf("insufficient balance for unstake fee: have %v, need %v", balance, t.Fee)
		}
	case tx.TypeSwap:
		if t.Payload == nil || t.Payload.Swap == nil {
			return fmt.Errorf("swap transaction carries no swap payload")
		}
		if t.Payload.Swap.AmountIn <= 0 {
			return fmt.Errorf("swap input amount must be positive, got %v", t.Payload.Swap.AmountIn)
		}
		if balance := c.ledger.Balance(t.Sender); balance < t.Fee {
			return fmt.Errorf("insufficient balance for swap fee: have %v, need %v", balance, t.Fee)
		}
	}
	return nil
}

// MineBlock seals every pending transaction into the next block. An
// empty pool is not an error: it returns (nil, nil) and changes nothing.
// Transactions that became invalid since admission are dropped from the
// block individually rather than aborting it.
func (c *Chain) MineBlock() (*block.Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := c.pool.All()
	if len(pending) == 0 {
		return nil, nil
	}

	nextIndex := uint64(len(c.blocks))
	validator, err := c.engine.SelectValidator(nextIndex)
	if err != nil {
		return nil, err
	}

	var included []*tx.Transaction
	var totalFees float64
	for _, t := range pending {
		if err := c.applyTransaction(t); err != nil {
			log.Printf("[miner] dropping tx %s at apply time: %v", t.ID.Short(), err)
			continue
		}
		included = append(included, t)
		totalFees += t.Fee
	}
	c.pool.Clear()

	// Fees move between holders; only the base reward is new issuance.
	reward := BaseBlockReward
	payout := reward + totalFees
	c.engine.DistributeRewards(payout, validator.Address)
	c.minted += reward

	blk := &block.Block{
		Index:        nextIndex,
		Timestamp:    time.Now().UTC(),
		Transactions: included,
		PrevHash:     c.blocks[len(c.blocks)-1].Hash,
		Validator:    validator.Address,
		StateRoot:    c.ledger.StateRoot(),
		TotalFees:    totalFees,
		Reward:       reward,
	}
	blk.Seal()
	if c.signKey != nil {
		blk.ValidatorSig = ed25519.Sign(c.signKey, []byte(blk.Hash))
	}
	c.blocks = append(c.blocks, blk)
	c.engine.FinalizeBlock(validator.Address, nextIndex)
	log.Printf("[miner] sealed block %d hash=%s txs=%d fees=%v validator=%s",
		blk.Index, blk.Hash[:8], blk.TxCount, totalFees, validator.Address)
	return blk, nil
}

// applyTransaction mutates ledger/registry/swap state for one
// transaction. A returned error leaves state unchanged for that
// transaction and drops it from the block.
func (c *Chain) applyTransaction(t *tx.Transaction) error {
	sender := c.ledger.GetAccount(t.Sender)
	if sender == nil {
		return fmt.Errorf("no account found for sender %s", t.Sender)
	}

	switch t.Type {
	case tx.TypeTransfer:
		if !c.ledger.AdjustBalance(t.Sender, -t.Cost()) {
			return fmt.Errorf("insufficient balance for transfer: have %v, need %v", sender.Balance, t.Cost())
		}
		recipient := c.ledger.GetOrCreate(t.Recipient)
		c.ledger.AdjustBalance(recipient.Address, t.Amount)

	case tx.TypeStake:
		if !c.ledger.AdjustBalance(t.Sender, -t.Fee) {
			return fmt.Errorf("insufficient balance for stake fee: have %v, need %v", sender.Balance, t.Fee)
		}
		if err := c.registry.Stake(t.Sender, t.Recipient, t.Amount); err != nil {
			c.ledger.AdjustBalance(t.Sender, t.Fee) // refund the fee, tx is dropped whole
			return err
		}

	case tx.TypeUnstake:
		if !c.ledger.AdjustBalance(t.Sender, -t.Fee) {
			return fmt.Errorf("insufficient balance for unstake fee: have %v, need %v", sender.Balance, t.Fee)
		}
		if err := c.registry.Unstake(t.Sender, t.Recipient, t.Amount); err != nil {
			c.ledger.AdjustBalance(t.Sender, t.Fee)
			return err
		}

	case tx.TypeSwap:
		if !c.ledger.AdjustBalance(t.Sender, -t.Fee) {
			return fmt.Errorf("insufficient balance for swap fee: have %v, need %v", sender.Balance, t.Fee)
		}
		p := t.Payload.Swap
		if _, err := c.swaps.Trade(p.TokenIn, p.TokenOut, p.AmountIn); err != nil {
			c.ledger.AdjustBalance(t.Sender, t.Fee)
			return err
		}

	default:
		return fmt.Errorf("unknown transaction type %q", t.Type)
	}

	sender.Nonce++
	return nil
}
