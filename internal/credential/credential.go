// Package credential derives and verifies salted password hashes and issues
// opaque per-user security tokens.
package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

const saltLength = 16

// HashPassword generates a fresh random salt and returns the base64-encoded
// SHA-256 digest of password+salt together with the base64-encoded salt.
func HashPassword(password string) (hash string, salt string, err error) {
	raw := make([]byte, saltLength)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to generate password salt: %w", err)
	}
	salt = base64.StdEncoding.EncodeToString(raw)
	return digest(password, salt), salt, nil
}

// Verify recomputes the digest with the stored salt and compares it against
// the stored hash in constant time.
func Verify(password, hash, salt string) bool {
	computed := digest(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}

// NewSecurityToken returns a random opaque 128-bit token, base64 encoded.
func NewSecurityToken() string {
	id := uuid.New()
	return base64.StdEncoding.EncodeToString(id[:])
}

func digest(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return base64.StdEncoding.EncodeToString(sum[:])
}
