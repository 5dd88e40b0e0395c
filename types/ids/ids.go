package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ID is a 32-byte content-derived identifier.
type ID [32]byte

// Empty is the zero-value ID (all zeros).
var Empty ID

// NewID hashes input bytes into an ID.
func NewID(data []byte) ID {
	return ID(sha256.Sum256(data))
}

// FromHex parses a 64-character hex string into an ID.
func FromHex(s string) (ID, error) {
	var id ID
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, err
	}
	if len(raw) != len(id) {
		return id, fmt.Errorf("expected %d bytes, got %d", len(id), len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

// String renders the ID as lowercase hex.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Short returns the first 8 hex characters, for log lines.
func (id ID) Short() string {
	return id.String()[:8]
}

// IsEmpty reports whether the ID is all zeros.
func (id ID) IsEmpty() bool {
	return id == Empty
}
