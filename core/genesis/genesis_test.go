package genesis

import (
	"os"
	"path/filepath"
	"testing"

	"stakechain/core/ledger"
	"stakechain/core/staking"
)

func TestInitDefaultConfig(t *testing.T) {
	l := ledger.NewLedger()
	reg := staking.NewRegistry(l)

	blk, err := Init(DefaultConfig(), l, reg)
	if err != nil {
		t.Fatalf("genesis init: %v", err)
	}
	if blk.Index != 0 {
		t.Errorf("genesis block index must be 0, got %d", blk.Index)
	}
	if blk.PrevHash != GenesisPrevHash {
		t.Errorf("genesis prevHash must be %q, got %q", GenesisPrevHash, blk.PrevHash)
	}
	if blk.Hash != blk.ComputeHash() {
		t.Error("genesis block must be sealed")
	}
	if blk.StateRoot == "" {
		t.Error("genesis block must record the bootstrap state root")
	}

	active := reg.ActiveValidators()
	if len(active) != 3 {
		t.Fatalf("expected 3 active genesis validators, got %d", len(active))
	}
	if total := reg.TotalStaked(); total != 2_400_000 {
		t.Errorf("expected combined stake 2400000, got %v", total)
	}

	// Commissions per validator.
	wantCommission := map[string]float64{
		"validator-1": 0.05,
		"validator-2": 0.04,
		"validator-3": 0.06,
	}
	for addr, want := range wantCommission {
		v := reg.GetValidator(addr)
		if v == nil {
			t.Fatalf("missing genesis validator %s", addr)
		}
		if v.Commission != want {
			t.Errorf("validator %s commission: want %v, got %v", addr, want, v.Commission)
		}
		// Self-stake is backed by a ledger account and a delegation record.
		acct := l.GetAccount(addr)
		if acct == nil || acct.Staked != v.TotalStake {
			t.Errorf("validator %s account staked total out of sync", addr)
		}
		records := reg.DelegationsOf(addr)
		if len(records) != 1 || records[0].StakedAmount != v.SelfStake {
			t.Errorf("validator %s self-delegation record out of sync", addr)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genesis.json")
	content := `{
		"genesisTime": "2025-01-01T00:00:00Z",
		"validators": [
			{"address": "v1", "selfStake": 1000, "commission": 0.1}
		],
		"params": {"chainId": "testchain", "protocolVersion": "1.0.0"}
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.Validators) != 1 || cfg.Validators[0].Address != "v1" {
		t.Error("config validators not parsed")
	}
	if cfg.Params.ChainID != "testchain" {
		t.Error("config params not parsed")
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	empty := filepath.Join(dir, "empty.json")
	os.WriteFile(empty, []byte(`{"validators": []}`), 0644)
	if _, err := LoadConfig(empty); err == nil {
		t.Error("expected error for config without validators")
	}
}
