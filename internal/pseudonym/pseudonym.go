// Package pseudonym replaces identifying strings with stable one-way digests.
package pseudonym

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex-encoded SHA-256 digest of s. It is unsalted so the same identity
// maps to the same pseudonym across donations.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
