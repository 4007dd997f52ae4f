package internal

import (
	"crypto/rand"

	"github.com/google/uuid"
)

// SecretSize is the byte length of a rotating token secret.
const SecretSize = 32

func NewSeries() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func NewSecret() ([SecretSize]byte, error) {
	var secret [SecretSize]byte
	_, err := rand.Read(secret[:])
	return secret, err
}
