package block

import (
	"encoding/json"
	"time"

	"stakechain/core/tx"
	"stakechain/types/ids"
)

// Block is an immutable sealed unit of included transactions plus
// chain-linkage metadata. Sealed by the chain at mining time, never
// mutated after.
type Block struct {
	Index        uint64            `json:"index"` // 0-based, monotonic
	Timestamp    time.Time         `json:"timestamp"`
	Transactions []*tx.Transaction `json:"transactions"`
	PrevHash     string            `json:"prevHash"`
	Hash         string            `json:"hash"`
	Nonce        uint64            `json:"nonce"` // sealing value
	Validator    string            `json:"validator"`
	ValidatorSig []byte            `json:"validatorSig,omitempty"`
	MerkleRoot   string            `json:"merkleRoot"`
	StateRoot    string            `json:"stateRoot"`
	TxCount      int               `json:"txCount"`
	TotalFees    float64           `json:"totalFees"`
	Reward       float64           `json:"reward"`
}

// ComputeHash hashes every header field except Hash itself and the
// validator signature, so any alteration is detectable.
func (b *Block) ComputeHash() string {
	header := struct {
		Index      uint64
		Timestamp  time.Time
		PrevHash   string
		Nonce      uint64
		Validator  string
		MerkleRoot string
		StateRoot  string
		TxCount    int
		TotalFees  float64
		Reward     float64
	}{
		b.Index, b.Timestamp, b.PrevHash, b.Nonce, b.Validator,
		b.MerkleRoot, b.StateRoot, b.TxCount, b.TotalFees, b.Reward,
	}
	data, _ := json.Marshal(header)
	return ids.NewID(data).String()
}

// Seal finalizes the block: merkle root over the included transaction
// IDs, transaction count, and the header hash.
func (b *Block) Seal() {
	hashes := make([]string, len(b.Transactions))
	for i, t := range b.Transactions {
		hashes[i] = t.ID.String()
	}
	b.MerkleRoot = MerkleRoot(hashes)
	b.TxCount = len(b.Transactions)
	b.Hash = b.ComputeHash()
}

// FindTransaction returns the included transaction with the given ID, or nil.
func (b *Block) FindTransaction(id ids.ID) *tx.Transaction {
	for _, t := range b.Transactions {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Serialize encodes the block into JSON.
func (b *Block) Serialize() ([]byte, error) {
	return json.Marshal(b)
}

// Deserialize decodes JSON into a Block.
func Deserialize(data []byte) (*Block, error) {
	var b Block
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}
