package tx

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
)

func TestNewDerivesStableID(t *testing.T) {
	tr, err := New("alice", "bob", 10, 1, TypeTransfer, nil)
	if err != nil {
		t.Fatalf("new transaction: %v", err)
	}
	if tr.ID.IsEmpty() {
		t.Fatal("transaction ID must be derived at construction")
	}
	if tr.ID != tr.computeID() {
		t.Error("stored ID must match content recomputation")
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New("alice", "bob", 10, 1, Type("teleport"), nil); err == nil {
		t.Error("expected error for unknown type")
	}
	if _, err := New("alice", "bob", -1, 1, TypeTransfer, nil); err == nil {
		t.Error("expected error for negative amount")
	}
	if _, err := New("alice", "bob", 1, -1, TypeTransfer, nil); err == nil {
		t.Error("expected error for negative fee")
	}
}

func TestValidType(t *testing.T) {
	for _, typ := range []Type{TypeTransfer, TypeStake, TypeUnstake, TypeSwap} {
		if !ValidType(typ) {
			t.Errorf("type %q should be valid", typ)
		}
	}
	if ValidType(Type("mint")) {
		t.Error("unknown type must be rejected")
	}
}

func TestSignAndVerify(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	tr, err := New("alice", "bob", 10, 1, TypeTransfer, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.Sign(priv); err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !tr.VerifySignature(pub) {
		t.Error("signature should verify against the signing key")
	}

	otherPub, _, _ := ed25519.GenerateKey(rand.Reader)
	if tr.VerifySignature(otherPub) {
		t.Error("signature must not verify against a different key")
	}

	// Tampering with content after signing breaks verification.
	tr.Amount = 9999
	if tr.VerifySignature(pub) {
		t.Error("signature must not verify after content changes")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	payload := &Payload{Swap: &SwapPayload{TokenIn: "STK", TokenOut: "USD", AmountIn: 5}}
	tr, err := New("alice", "", 0, 1, TypeSwap, payload)
	if err != nil {
		t.Fatal(err)
	}
	data, err := tr.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	back, err := Deserialize(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.ID != tr.ID {
		t.Error("ID must survive serialization")
	}
	if back.Payload == nil || back.Payload.Swap == nil || back.Payload.Swap.TokenIn != "STK" {
		t.Error("payload must survive serialization")
	}
}

func TestCost(t *testing.T) {
	tr, _ := New("alice", "bob", 10, 2, TypeTransfer, nil)
	if tr.Cost() != 12 {
		t.Errorf("expected cost 12, got %v", tr.Cost())
	}
}
