package security

import (
	"crypto/rand"
	"encoding/hex"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	userIDCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	userIDSize    = 16

	// PublicTokenSize is the length of share tokens. nanoid's default alphabet
	// has 64 symbols, so this is 126 bits of entropy.
	PublicTokenSize = 21
)

// NewUserID returns a random user ID
func NewUserID() (string, error) {
	return gonanoid.Generate(userIDCharset, userIDSize)
}

// NewPublicToken returns an unguessable, URL safe share token
func NewPublicToken() (string, error) {
	return gonanoid.New(PublicTokenSize)
}

// NewOpaqueToken returns n random bytes hex encoded
func NewOpaqueToken(n int) (string, error) {
	b := make([]byte, n)

	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
