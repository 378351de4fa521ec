// Package token creates confirmation tokens. Only the hash of a token is ever
// persisted; the raw value exists in the notification link alone.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Size is the number of random bytes in a token.
const Size = 32

// Generate returns a URL safe token carrying Size random bytes.
func Generate() (string, error) {
	const op = "token.Generate"

	buf := make([]byte, Size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash returns the hex encoded BLAKE2b-256 digest of token.
func Hash(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
