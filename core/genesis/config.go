package genesis

import "time"

// ValidatorConfig is one genesis validator entry.
type ValidatorConfig struct {
	Address    string  `json:"address"`
	SelfStake  float64 `json:"selfStake"`
	Commission float64 `json:"commission"`
}

// Params holds chain parameters echoed into the genesis block.
type Params struct {
	ChainID         string `json:"chainId"`
	ProtocolVersion string `json:"protocolVersion"`
	BlockTimeMS     int    `json:"blockTimeMs,omitempty"`
}

// Config is the full genesis configuration schema.
type Config struct {
	GenesisTime time.Time         `json:"genesisTime"`
	Validators  []ValidatorConfig `json:"validators"`
	Params      Params            `json:"params"`
}

// DefaultConfig returns the built-in genesis: three validators active
// from block 0.
func DefaultConfig() *Config {
	return &Config{
		GenesisTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Validators: []ValidatorConfig{
			{Address: "validator-1", SelfStake: 1_000_000, Commission: 0.05},
			{Address: "validator-2", SelfStake: 800_000, Commission: 0.04},
			{Address: "validator-3", SelfStake: 600_000, Commission: 0.06},
		},
		Params: Params{
			ChainID:         "stakechain-local",
			ProtocolVersion: "1.0.0",
		},
	}
}
