package tx

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"stakechain/types/ids"
)

// Type discriminates how the chain applies a transaction at mining time.
type Type string

const (
	TypeTransfer Type = "transfer"
	TypeStake    Type = "stake"
	TypeUnstake  Type = "unstake"
	TypeSwap     Type = "swap"
)

// ValidType reports whether t is one of the four admitted types.
func ValidType(t Type) bool {
	switch t {
	case TypeTransfer, TypeStake, TypeUnstake, TypeSwap:
		return true
	}
	return false
}

// SwapPayload names the pair and input side of a swap transaction.
type SwapPayload struct {
	TokenIn  string  `json:"tokenIn"`
	TokenOut string  `json:"tokenOut"`
	AmountIn float64 `json:"amountIn"`
}

// Payload is the tagged union carried by a transaction. Exactly the field
// matching the transaction type is set; Raw is the opaque fallback for
// shapes not otherwise specified.
type Payload struct {
	Swap *SwapPayload    `json:"swap,omitempty"`
	Raw  json.RawMessage `json:"raw,omitempty"`
}

// Transaction is immutable once signed: the ID is derived from content at
// construction, and the signature binds it together with every other field.
type Transaction struct {
	ID        ids.ID    `json:"id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Amount    float64   `json:"amount"`
	Fee       float64   `json:"fee"`
	Timestamp time.Time `json:"timestamp"`
	Type      Type      `json:"type"`
	Payload   *Payload  `json:"payload,omitempty"`
	Signature string    `json:"signature,omitempty"` // base64 Ed25519 over the content digest
}

// New builds a transaction and derives its content ID.
func New(sender, recipient string, amount, fee float64, txType Type, payload *Payload) (*Transaction, error) {
	if !ValidType(txType) {
		return nil, fmt.Errorf("unknown transaction type %q", txType)
	}
	if amount < 0 || fee < 0 {
		return nil, fmt.Errorf("amount and fee must not be negative")
	}
	t := &Transaction{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		Fee:       fee,
		Timestamp: time.Now().UTC(),
		Type:      txType,
		Payload:   payload,
	}
	t.ID = t.computeID()
	return t, nil
}

// computeID hashes the canonical content fields, excluding ID and Signature.
func (t *Transaction) computeID() ids.ID {
	content := struct {
		Sender    string
		Recipient string
		Amount    float64
		Fee       float64
		Timestamp time.Time
		Type      Type
		Payload   *Payload
	}{t.Sender, t.Recipient, t.Amount, t.Fee, t.Timestamp, t.Type, t.Payload}
	data, _ := json.Marshal(content)
	return ids.NewID(data)
}

// Sign binds the signer's key to the transaction content.
func (t *Transaction) Sign(priv ed25519.PrivateKey) error {
	if len(priv) != ed25519.PrivateKeySize {
		return fmt.Errorf("invalid Ed25519 private key size %d", len(priv))
	}
	digest := t.computeID()
	t.Signature = base64.StdEncoding.EncodeToString(ed25519.Sign(priv, digest[:]))
	return nil
}

// VerifySignature checks the signature against the claimed signer's key.
func (t *Transaction) VerifySignature(pub ed25519.PublicKey) bool {
	if t.Signature == "" {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(t.Signature)
	if err != nil {
		return false
	}
	digest := t.computeID()
	return ed25519.Verify(pub, digest[:], sig)
}

// Serialize encodes the transaction into canonical JSON.
func (t *Transaction) Serialize() ([]byte, error) {
	return json.Marshal(t)
}

// Deserialize decodes JSON into a Transaction.
func Deserialize(data []byte) (*Transaction, error) {
	var t Transaction
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Cost is the total spendable value a transfer or stake consumes.
func (t *Transaction) Cost() float64 {
	return t.Amount + t.Fee
}
