package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// NewOpaqueToken returns a hex-encoded random token.
func NewOpaqueToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 32
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// TokenDigest hashes a challenge token for use as a store key, so raw tokens
// never rest in memory tables or the database.
func TokenDigest(token string) string {
	sum := sha3.Sum256([]byte(token))
	return fmt.Sprintf("%x", sum)
}
