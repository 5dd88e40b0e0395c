package mempool

import (
	"testing"

	"stakechain/core/tx"
)

func mustTx(t *testing.T, sender string, amount float64) *tx.Transaction {
	t.Helper()
	tr, err := tx.New(sender, "recipient", amount, 1, tx.TypeTransfer, nil)
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func TestAddAndGet(t *testing.T) {
	p := NewPool(10)
	tr := mustTx(t, "alice", 5)
	if !p.Add(tr) {
		t.Fatal("failed to add transaction")
	}
	got, ok := p.Get(tr.ID)
	if !ok || got != tr {
		t.Error("expected to retrieve pooled transaction")
	}
	if p.Size() != 1 {
		t.Errorf("expected size 1, got %d", p.Size())
	}
}

func TestDuplicateRejected(t *testing.T) {
	p := NewPool(10)
	tr := mustTx(t, "alice", 5)
	if !p.Add(tr) {
		t.Fatal("first add should succeed")
	}
	if p.Add(tr) {
		t.Error("duplicate add should be rejected")
	}
	if p.Size() != 1 {
		t.Errorf("expected size 1 after duplicate, got %d", p.Size())
	}
}

func TestFullPoolRejected(t *testing.T) {
	p := NewPool(2)
	if !p.Add(mustTx(t, "a", 1)) || !p.Add(mustTx(t, "b", 2)) {
		t.Fatal("adds within capacity should succeed")
	}
	if p.Add(mustTx(t, "c", 3)) {
		t.Error("add beyond capacity should be rejected")
	}
}

func TestFIFOOrder(t *testing.T) {
	p := NewPool(10)
	first := mustTx(t, "a", 1)
	second := mustTx(t, "b", 2)
	third := mustTx(t, "c", 3)
	p.Add(first)
	p.Add(second)
	p.Add(third)

	all := p.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(all))
	}
	if all[0] != first || all[1] != second || all[2] != third {
		t.Error("pool must preserve arrival order")
	}
}

func TestClear(t *testing.T) {
	p := NewPool(10)
	p.Add(mustTx(t, "a", 1))
	p.Add(mustTx(t, "b", 2))
	if n := p.Clear(); n != 2 {
		t.Errorf("expected 2 cleared, got %d", n)
	}
	if p.Size() != 0 {
		t.Error("pool should be empty after clear")
	}
}
