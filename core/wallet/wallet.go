// Package wallet provides the node's Ed25519 signing keypair. Custody of
// user keys is out of scope; this only covers the key the node signs its
// own blocks and transactions with.
package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"stakechain/types/ids"
)

const (
	PrivKeyFile = "node_ed25519.priv"
	PubKeyFile  = "node_ed25519.pub"
)

// Keypair bundles the node key with its derived address.
type Keypair struct {
	Address string
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// Generate creates a fresh Ed25519 keypair.
func Generate() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &Keypair{Address: AddressOf(pub), Public: pub, Private: priv}, nil
}

// LoadOrGenerate loads the keypair from dir, generating and saving one on
// first run.
func LoadOrGenerate(dir string) (*Keypair, error) {
	privPath := dir + "/" + PrivKeyFile
	pubPath := dir + "/" + PubKeyFile
	if _, err := os.Stat(privPath); err == nil {
		return load(privPath, pubPath)
	}
	kp, err := Generate()
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(privPath, []byte(hex.EncodeToString(kp.Private)), 0600); err != nil {
		return nil, err
	}
	if err := os.WriteFile(pubPath, []byte(hex.EncodeToString(kp.Public)), 0644); err != nil {
		return nil, err
	}
	return kp, nil
}

func load(privPath, pubPath string) (*Keypair, error) {
	privHex, err := os.ReadFile(privPath)
	if err != nil {
		return nil, err
	}
	pubHex, err := os.ReadFile(pubPath)
	if err != nil {
		return nil, err
	}
	priv, err := hex.DecodeString(string(privHex))
	if err != nil || len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key file %s", privPath)
	}
	pub, err := hex.DecodeString(string(pubHex))
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid public key file %s", pubPath)
	}
	return &Keypair{Address: AddressOf(pub), Public: pub, Private: priv}, nil
}

// AddressOf derives a chain address from a public key: the first 20
// bytes of its hash, hex-encoded.
func AddressOf(pub ed25519.PublicKey) string {
	id := ids.NewID(pub)
	return hex.EncodeToString(id[:20])
}
