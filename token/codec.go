package token

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrMalformed is returned by codecs for payloads that are absent, truncated,
// or otherwise unparseable. Callers treat it identically to "no cookie".
var ErrMalformed = errors.New("malformed token payload")

const rawPayloadSize = 16 + SecretSize

// Codec serializes a (series, secret) pair to and from the opaque cookie
// payload handed to the host's cookie transport.
type Codec interface {
	Encode(series uuid.UUID, secret [SecretSize]byte) ([]byte, error)
	Decode(payload []byte) (uuid.UUID, [SecretSize]byte, error)
}

// RawCodec defines a public type used by persist APIs.
//
// RawCodec instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// It concatenates the 16-byte series UUID and the raw secret, base64url
// encoded without padding. It performs no integrity check: the cookie
// transport is expected to apply authenticated encryption before the payload
// reaches the wire.
type RawCodec struct{}

// Encode describes the encode operation and its observable behavior.
//
// Encode may return an error when input validation, dependency calls, or security checks fail.
// Encode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (RawCodec) Encode(series uuid.UUID, secret [SecretSize]byte) ([]byte, error) {
	if series == uuid.Nil {
		return nil, errors.New("series must not be nil")
	}

	var raw [rawPayloadSize]byte
	copy(raw[:16], series[:])
	copy(raw[16:], secret[:])

	encoded := make([]byte, base64.RawURLEncoding.EncodedLen(len(raw)))
	base64.RawURLEncoding.Encode(encoded, raw[:])
	return encoded, nil
}

// Decode describes the decode operation and its observable behavior.
//
// Decode may return an error when input validation, dependency calls, or security checks fail.
// Decode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (RawCodec) Decode(payload []byte) (uuid.UUID, [SecretSize]byte, error) {
	var (
		series uuid.UUID
		secret [SecretSize]byte
	)

	if len(payload) == 0 {
		return series, secret, fmt.Errorf("%w: empty payload", ErrMalformed)
	}

	raw, err := base64.RawURLEncoding.DecodeString(string(payload))
	if err != nil {
		return series, secret, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(raw) != rawPayloadSize {
		return series, secret, fmt.Errorf("%w: invalid payload size %d", ErrMalformed, len(raw))
	}

	copy(series[:], raw[:16])
	copy(secret[:], raw[16:])

	if series == uuid.Nil {
		return uuid.Nil, secret, fmt.Errorf("%w: nil series", ErrMalformed)
	}

	return series, secret, nil
}
