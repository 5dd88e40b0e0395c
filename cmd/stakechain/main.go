package main

import (
	"io"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"stakechain/api/server"
	"stakechain/core/chain"
	"stakechain/core/genesis"
	"stakechain/core/storage"
	"stakechain/core/wallet"
)

// NodeConfig is the node-level configuration file (config.yaml).
type NodeConfig struct {
	ListenAddr    string `yaml:"listenAddr"`
	DataDir       string `yaml:"dataDir"`
	GenesisFile   string `yaml:"genesisFile"`
	BlockTimeMS   int    `yaml:"blockTimeMs"`
	LogFile       string `yaml:"logFile"`
	DisableMining bool   `yaml:"disableMining"`
}

func defaultNodeConfig() NodeConfig {
	return NodeConfig{
		ListenAddr:  ":8080",
		DataDir:     "data",
		BlockTimeMS: 3000,
		LogFile:     "stakechain-node.log",
	}
}

func loadNodeConfig(path string) NodeConfig {
	cfg := defaultNodeConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[node] no config file at %s, using defaults", path)
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("[node] could not parse %s: %v", path, err)
	}
	return cfg
}

func main() {
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg := loadNodeConfig(configPath)

	if cfg.LogFile != "" {
		logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("[node] failed to open log file: %v", err)
		}
		log.SetOutput(io.MultiWriter(os.Stdout, logFile))
	}
	log.Println("[node] starting stakechain node")

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("[node] failed to create data dir: %v", err)
	}

	kp, err := wallet.LoadOrGenerate(cfg.DataDir)
	if err != nil {
		log.Fatalf("[node] failed to load node keypair: %v", err)
	}
	log.Printf("[node] node address %s", kp.Address)

	genCfg := genesis.DefaultConfig()
	if cfg.GenesisFile != "" {
		genCfg, err = genesis.LoadConfig(cfg.GenesisFile)
		if err != nil {
			log.Fatalf("[node] %v", err)
		}
	}

	c, err := chain.New(genCfg)
	if err != nil {
		log.Fatalf("[node] failed to bootstrap chain: %v", err)
	}
	c.SetSignKey(kp.Private)

	store, err := storage.Open(cfg.DataDir + "/chaindb")
	if err != nil {
		log.Fatalf("[node] failed to open chain store: %v", err)
	}
	defer store.Close()

	if !cfg.DisableMining {
		go runMiner(c, store, time.Duration(cfg.BlockTimeMS)*time.Millisecond)
	}

	srv := server.NewServer(c, store, cfg.ListenAddr)
	if err := srv.Start(); err != nil {
		log.Fatalf("[node] server stopped: %v", err)
	}
}

// runMiner seals pending transactions on a fixed interval. Mining goes
// through the chain's aggregate lock, so a timer tick and a manual
// /api/admin/mine call can never consume the same pool twice.
func runMiner(c *chain.Chain, store *storage.Store, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		blk, err := c.MineBlock()
		if err != nil {
			log.Printf("[miner] mining failed: %v", err)
			continue
		}
		if blk == nil {
			continue // empty pool, nothing to do
		}
		if err := store.SaveBlock(blk); err != nil {
			log.Printf("[miner] failed to persist block %d: %v", blk.Index, err)
		}
		if err := store.SaveSnapshot(c.Export()); err != nil {
			log.Printf("[miner] failed to persist chain snapshot: %v", err)
		}
	}
}
