package storage

import (
	"testing"
	"time"

	"stakechain/core/block"
	"stakechain/core/tx"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sealedBlock(t *testing.T, index uint64, prevHash string) *block.Block {
	t.Helper()
	tr, err := tx.New("alice", "bob", 10, 1, tx.TypeTransfer, nil)
	if err != nil {
		t.Fatal(err)
	}
	blk := &block.Block{
		Index:        index,
		Timestamp:    time.Now().UTC(),
		Transactions: []*tx.Transaction{tr},
		PrevHash:     prevHash,
		Validator:    "val",
	}
	blk.Seal()
	return blk
}

func TestSaveAndLoadBlock(t *testing.T) {
	s := openTestStore(t)
	blk := sealedBlock(t, 1, "prev")

	if err := s.SaveBlock(blk); err != nil {
		t.Fatalf("save block: %v", err)
	}

	byHash, err := s.GetBlockByHash(blk.Hash)
	if err != nil {
		t.Fatalf("get by hash: %v", err)
	}
	if byHash.Hash != blk.Hash || byHash.Index != 1 {
		t.Error("block loaded by hash does not match")
	}

	byHeight, err := s.GetBlockByHeight(1)
	if err != nil {
		t.Fatalf("get by height: %v", err)
	}
	if byHeight.Hash != blk.Hash {
		t.Error("block loaded by height does not match")
	}

	if _, err := s.GetBlockByHeight(42); err == nil {
		t.Error("expected error for unknown height")
	}
}

func TestLatestBlockPointer(t *testing.T) {
	s := openTestStore(t)

	latest, err := s.LatestBlock()
	if err != nil {
		t.Fatal(err)
	}
	if latest != nil {
		t.Error("fresh store has no latest block")
	}

	first := sealedBlock(t, 1, "prev")
	second := sealedBlock(t, 2, first.Hash)
	s.SaveBlock(first)
	s.SaveBlock(second)

	latest, err = s.LatestBlock()
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || latest.Index != 2 {
		t.Error("latest pointer should follow the most recent save")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := openTestStore(t)

	type snapshot struct {
		Heights []uint64 `json:"heights"`
	}
	var out snapshot
	found, err := s.LoadSnapshot(&out)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("fresh store has no snapshot")
	}

	if err := s.SaveSnapshot(snapshot{Heights: []uint64{0, 1, 2}}); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	found, err = s.LoadSnapshot(&out)
	if err != nil {
		t.Fatal(err)
	}
	if !found || len(out.Heights) != 3 {
		t.Error("snapshot did not round-trip")
	}
}
