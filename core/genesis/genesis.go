// Package genesis bootstraps the ledger, validator set, and index-0 block.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"

	"stakechain/core/block"
	"stakechain/core/ledger"
	"stakechain/core/staking"
)

// GenesisPrevHash is the previousHash recorded on the index-0 block.
const GenesisPrevHash = "0"

// LoadConfig reads a genesis config from a JSON file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open genesis config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse genesis config: %w", err)
	}
	if len(cfg.Validators) == 0 {
		return nil, fmt.Errorf("genesis config names no validators")
	}
	return &cfg, nil
}

// Init installs the genesis validator set into a fresh ledger and
// registry and seals the index-0 block over the resulting state.
func Init(cfg *Config, l *ledger.Ledger, reg *staking.Registry) (*block.Block, error) {
	for _, vc := range cfg.Validators {
		if err := reg.RegisterGenesisValidator(vc.Address, vc.SelfStake, vc.Commission); err != nil {
			return nil, fmt.Errorf("genesis validator %s: %w", vc.Address, err)
		}
	}
	blk := &block.Block{
		Index:     0,
		Timestamp: cfg.GenesisTime,
		PrevHash:  GenesisPrevHash,
		Validator: firstAddress(cfg),
		StateRoot: l.StateRoot(),
	}
	blk.Seal()
	return blk, nil
}

func firstAddress(cfg *Config) string {
	if len(cfg.Validators) > 0 {
		return cfg.Validators[0].Address
	}
	return ""
}
