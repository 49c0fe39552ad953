package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateToken returns prefix_randomhex built from n random bytes.
func GenerateToken(prefix string, n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	if prefix == "" {
		return hex.EncodeToString(b), nil
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b)), nil
}

// GenerateTemporaryPassword generates the one-time password handed to a
// reseller created without one.
func GenerateTemporaryPassword() (string, error) {
	return GenerateToken("", 8)
}
