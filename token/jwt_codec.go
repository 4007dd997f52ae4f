package token

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const minSigningKeySize = 32

// SignedCodec defines a public type used by persist APIs.
//
// SignedCodec instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// It wraps the (series, secret) pair in an HS256 JWT so that hosts whose
// cookie layer cannot apply authenticated encryption still get a
// tamper-evident payload. The secret remains a bearer value either way; the
// signature only detects modification, it does not hide the contents.
type SignedCodec struct {
	key []byte
}

// NewSignedCodec describes the newsignedcodec operation and its observable behavior.
//
// NewSignedCodec may return an error when input validation, dependency calls, or security checks fail.
// NewSignedCodec does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewSignedCodec(key []byte) (*SignedCodec, error) {
	if len(key) < minSigningKeySize {
		return nil, fmt.Errorf("signing key must be at least %d bytes", minSigningKeySize)
	}

	k := make([]byte, len(key))
	copy(k, key)
	return &SignedCodec{key: k}, nil
}

// Encode describes the encode operation and its observable behavior.
//
// Encode may return an error when input validation, dependency calls, or security checks fail.
// Encode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *SignedCodec) Encode(series uuid.UUID, secret [SecretSize]byte) ([]byte, error) {
	if series == uuid.Nil {
		return nil, errors.New("series must not be nil")
	}

	claims := jwt.MapClaims{
		"srs": series.String(),
		"sec": base64.RawURLEncoding.EncodeToString(secret[:]),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return nil, err
	}

	return []byte(signed), nil
}

// Decode describes the decode operation and its observable behavior.
//
// Decode may return an error when input validation, dependency calls, or security checks fail.
// Decode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *SignedCodec) Decode(payload []byte) (uuid.UUID, [SecretSize]byte, error) {
	var secret [SecretSize]byte

	if len(payload) == 0 {
		return uuid.Nil, secret, fmt.Errorf("%w: empty payload", ErrMalformed)
	}

	parsed, err := jwt.Parse(
		string(payload),
		func(*jwt.Token) (interface{}, error) { return c.key, nil },
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil || !parsed.Valid {
		return uuid.Nil, secret, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, secret, fmt.Errorf("%w: unexpected claims type", ErrMalformed)
	}

	seriesStr, ok := claims["srs"].(string)
	if !ok {
		return uuid.Nil, secret, fmt.Errorf("%w: missing series claim", ErrMalformed)
	}
	series, err := uuid.Parse(seriesStr)
	if err != nil || series == uuid.Nil {
		return uuid.Nil, secret, fmt.Errorf("%w: invalid series claim", ErrMalformed)
	}

	secretStr, ok := claims["sec"].(string)
	if !ok {
		return uuid.Nil, secret, fmt.Errorf("%w: missing secret claim", ErrMalformed)
	}
	raw, err := base64.RawURLEncoding.DecodeString(secretStr)
	if err != nil || len(raw) != SecretSize {
		return uuid.Nil, secret, fmt.Errorf("%w: invalid secret claim", ErrMalformed)
	}
	copy(secret[:], raw)

	return series, secret, nil
}
