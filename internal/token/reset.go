package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

const resetTokenRawSize = 32

// NewResetToken returns a fresh high-entropy reset token. The plain form
// goes into the emailed reset link; only the hash is ever persisted.
func NewResetToken() (plain, hash string, err error) {
	raw := make([]byte, resetTokenRawSize)
	if _, err := rand.Read(raw); err != nil {
		return "", "", err
	}
	plain = hex.EncodeToString(raw)
	return plain, HashResetToken(plain), nil
}

func HashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
