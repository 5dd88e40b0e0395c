package block

import (
	"crypto/sha256"
	"encoding/hex"
)

// MerkleRoot folds a list of hex-string hashes pairwise with SHA-256
// until one remains. An odd leaf is hashed with itself. Empty input
// yields the empty string.
func MerkleRoot(hashes []string) string {
	n := len(hashes)
	if n == 0 {
		return ""
	}
	for n > 1 {
		next := make([]string, 0, (n+1)/2)
		for i := 0; i < n; i += 2 {
			h := sha256.New()
			h.Write([]byte(hashes[i]))
			if i+1 < n {
				h.Write([]byte(hashes[i+1]))
			} else {
				h.Write([]byte(hashes[i]))
			}
			next = append(next, hex.EncodeToString(h.Sum(nil)))
		}
		hashes = next
		n = len(hashes)
	}
	return hashes[0]
}
