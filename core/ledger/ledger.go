package ledger

import (
	"fmt"
	"sort"

	"stakechain/types/ids"
)

// Account holds the balance-side state for a single address.
type Account struct {
	Address     string  `json:"address"`
	Balance     float64 `json:"balance"` // spendable, never negative
	Nonce       uint64  `json:"nonce"`
	Staked      float64 `json:"staked"` // sum of active delegation records
	Rewards     float64 `json:"rewards"`
	IsValidator bool    `json:"isValidator"`
}

// Ledger owns all accounts. It performs no locking of its own: callers
// serialize access through the chain aggregate.
type Ledger struct {
	accounts map[string]*Account
	order    []string // insertion order, keeps state root stable
}

func NewLedger() *Ledger {
	return &Ledger{accounts: make(map[string]*Account)}
}

// CreateAccount registers an address with an initial spendable balance.
// Re-creating an existing account is an explanatory failure.
func (l *Ledger) CreateAccount(address string, initialBalance float64) (*Account, error) {
	if address == "" {
		return nil, fmt.Errorf("account address must not be empty")
	}
	if initialBalance < 0 {
		return nil, fmt.Errorf("initial balance must not be negative, got %v", initialBalance)
	}
	if _, exists := l.accounts[address]; exists {
		return nil, fmt.Errorf("account %s already exists", address)
	}
	acct := &Account{Address: address, Balance: initialBalance}
	l.accounts[address] = acct
	l.order = append(l.order, address)
	return acct, nil
}

// GetAccount returns the account for address, or nil if unknown.
func (l *Ledger) GetAccount(address string) *Account {
	return l.accounts[address]
}

// GetOrCreate returns the existing account or registers a fresh zero-balance one.
func (l *Ledger) GetOrCreate(address string) *Account {
	if acct, ok := l.accounts[address]; ok {
		return acct
	}
	acct, _ := l.CreateAccount(address, 0)
	return acct
}

// AdjustBalance applies delta to the address's spendable balance.
// Returns false, leaving state unchanged, if the account is unknown or the
// change would drive the balance negative. This is the low-level guard;
// higher-level staking operations raise descriptive errors instead.
func (l *Ledger) AdjustBalance(address string, delta float64) bool {
	acct, ok := l.accounts[address]
	if !ok {
		return false
	}
	if acct.Balance+delta < 0 {
		return false
	}
	acct.Balance += delta
	return true
}

// Balance returns the spendable balance for address, 0 if unknown.
func (l *Ledger) Balance(address string) float64 {
	if acct, ok := l.accounts[address]; ok {
		return acct.Balance
	}
	return 0
}

// TotalBalance sums every account's spendable balance.
func (l *Ledger) TotalBalance() float64 {
	var total float64
	for _, addr := range l.order {
		total += l.accounts[addr].Balance
	}
	return total
}

// TotalStaked sums every account's staked amount.
func (l *Ledger) TotalStaked() float64 {
	var total float64
	for _, addr := range l.order {
		total += l.accounts[addr].Staked
	}
	return total
}

// AccountCount returns the number of registered accounts.
func (l *Ledger) AccountCount() int {
	return len(l.accounts)
}

// StateRoot hashes a canonical rendering of every account, sorted by
// address, into a single digest summarizing ledger state.
func (l *Ledger) StateRoot() string {
	addrs := make([]string, len(l.order))
	copy(addrs, l.order)
	sort.Strings(addrs)
	var buf []byte
	for _, addr := range addrs {
		a := l.accounts[addr]
		buf = append(buf, []byte(fmt.Sprintf("%s|%.8f|%d|%.8f|%.8f;", a.Address, a.Balance, a.Nonce, a.Staked, a.Rewards))...)
	}
	return ids.NewID(buf).String()
}
