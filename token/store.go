package token

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/persistkit/persist/internal"
	"github.com/persistkit/persist/secret"
)

// ErrNotFound is returned when no live record exists for a series.
var ErrNotFound = errors.New("token record not found")

// ErrCorrupt is returned when a stored record blob cannot be decoded.
var ErrCorrupt = errors.New("token record corrupt")

// ErrUnavailable wraps backend read/write failures. The scheme never falls
// back to authenticating on it.
var ErrUnavailable = errors.New("token store unavailable")

const deleteSeriesScript = `
local owner = redis.call("HGET", KEYS[1], "owner")
local existed = redis.call("DEL", KEYS[1])
redis.call("ZREM", KEYS[2], ARGV[1])
if owner then
  redis.call("SREM", ARGV[2] .. owner, ARGV[1])
end
return existed
`

var deleteSeriesLua = redis.NewScript(deleteSeriesScript)

const deleteOwnerScript = `
local series = redis.call("SMEMBERS", KEYS[1])
for _, sid in ipairs(series) do
  redis.call("DEL", ARGV[1] .. sid)
  redis.call("ZREM", KEYS[2], sid)
end
redis.call("DEL", KEYS[1])
return #series
`

var deleteOwnerLua = redis.NewScript(deleteOwnerScript)

const removeExpiredScript = `
local expired = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
for _, sid in ipairs(expired) do
  local key = ARGV[2] .. sid
  local owner = redis.call("HGET", key, "owner")
  redis.call("DEL", key)
  if owner then
    redis.call("SREM", ARGV[3] .. owner, sid)
  end
end
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", ARGV[1])
return #expired
`

var removeExpiredLua = redis.NewScript(removeExpiredScript)

// Store defines a public type used by persist APIs.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// Every operation is individually atomic against Redis; no cross-call
// transaction exists, the protocol tolerates interleaving as long as each
// call commits a complete state transition.
type Store struct {
	redis  redis.UniversalClient
	hasher secret.Hasher
	prefix string
	ttl    time.Duration
}

// NewStore describes the newstore operation and its observable behavior.
//
// NewStore may return an error when input validation, dependency calls, or security checks fail.
// NewStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewStore(client redis.UniversalClient, hasher secret.Hasher, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = "pl"
	}
	return &Store{
		redis:  client,
		hasher: hasher,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *Store) tokenKey(series string) string {
	return s.prefix + ":t:" + series
}

func (s *Store) ownerKey(ownerID string) string {
	return s.prefix + ":o:" + ownerID
}

func (s *Store) expiryKey() string {
	return s.prefix + ":exp"
}

// FindBySeries describes the findbyseries operation and its observable behavior.
//
// FindBySeries may return an error when input validation, dependency calls, or security checks fail.
// FindBySeries does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) FindBySeries(ctx context.Context, series uuid.UUID) (*Record, error) {
	data, err := s.redis.HGet(ctx, s.tokenKey(series.String()), "blob").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	rec, err := decodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	if rec.Expired(time.Now()) {
		// Key TTL usually reaps this first; sweep lazily when it has not.
		_ = s.DeleteBySeries(ctx, series)
		return nil, ErrNotFound
	}

	return rec, nil
}

// Create describes the create operation and its observable behavior.
//
// Create may return an error when input validation, dependency calls, or security checks fail.
// Create does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
// The raw secret is returned for cookie issuance only and is never persisted.
func (s *Store) Create(ctx context.Context, ownerID string) (*Record, [SecretSize]byte, error) {
	var zero [SecretSize]byte

	if ownerID == "" {
		return nil, zero, errors.New("owner id required")
	}

	series, err := internal.NewSeries()
	if err != nil {
		return nil, zero, err
	}

	sec, err := internal.NewSecret()
	if err != nil {
		return nil, zero, err
	}

	hash, err := s.hasher.Hash(sec[:])
	if err != nil {
		return nil, zero, err
	}

	now := time.Now()
	rec := &Record{
		Series:     series,
		OwnerID:    ownerID,
		SecretHash: hash,
		IssuedAt:   now.Unix(),
		ExpiresAt:  now.Add(s.ttl).Unix(),
	}

	if err := s.save(ctx, rec); err != nil {
		return nil, zero, err
	}

	return rec, sec, nil
}

// Rotate describes the rotate operation and its observable behavior.
//
// Rotate may return an error when input validation, dependency calls, or security checks fail.
// Rotate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
// The series is preserved; secret, hash, and expiry are replaced by a
// last-write-wins overwrite, so the previous secret cannot replay even if it
// leaks after rotation.
func (s *Store) Rotate(ctx context.Context, rec *Record) (*Record, [SecretSize]byte, error) {
	var zero [SecretSize]byte

	sec, err := internal.NewSecret()
	if err != nil {
		return nil, zero, err
	}

	hash, err := s.hasher.Hash(sec[:])
	if err != nil {
		return nil, zero, err
	}

	now := time.Now()
	next := &Record{
		Series:     rec.Series,
		OwnerID:    rec.OwnerID,
		SecretHash: hash,
		IssuedAt:   now.Unix(),
		ExpiresAt:  now.Add(s.ttl).Unix(),
	}

	if err := s.save(ctx, next); err != nil {
		return nil, zero, err
	}

	return next, sec, nil
}

// DeleteBySeries describes the deletebyseries operation and its observable behavior.
//
// DeleteBySeries may return an error when input validation, dependency calls, or security checks fail.
// DeleteBySeries does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) DeleteBySeries(ctx context.Context, series uuid.UUID) error {
	sid := series.String()
	err := deleteSeriesLua.Run(
		ctx,
		s.redis,
		[]string{s.tokenKey(sid), s.expiryKey()},
		sid,
		s.prefix+":o:",
	).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// DeleteAllByOwner describes the deleteallbyowner operation and its observable behavior.
//
// DeleteAllByOwner may return an error when input validation, dependency calls, or security checks fail.
// DeleteAllByOwner does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
// It revokes every series for the owner, across lineages; this is the theft
// response and logout-everywhere primitive.
func (s *Store) DeleteAllByOwner(ctx context.Context, ownerID string) (int, error) {
	n, err := deleteOwnerLua.Run(
		ctx,
		s.redis,
		[]string{s.ownerKey(ownerID), s.expiryKey()},
		s.prefix+":t:",
	).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n, nil
}

// RemoveExpired describes the removeexpired operation and its observable behavior.
//
// RemoveExpired may return an error when input validation, dependency calls, or security checks fail.
// RemoveExpired does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
// It prunes every record whose expiry has passed, including owner-index and
// expiry-index entries for keys Redis TTL already reaped.
func (s *Store) RemoveExpired(ctx context.Context) (int, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	n, err := removeExpiredLua.Run(
		ctx,
		s.redis,
		[]string{s.expiryKey()},
		now,
		s.prefix+":t:",
		s.prefix+":o:",
	).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return n, nil
}

func (s *Store) save(ctx context.Context, rec *Record) error {
	blob, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	sid := rec.Series.String()
	key := s.tokenKey(sid)

	remain := time.Until(time.Unix(rec.ExpiresAt, 0))
	if remain < time.Millisecond {
		remain = time.Millisecond
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "blob", blob, "owner", rec.OwnerID)
		pipe.PExpire(ctx, key, remain)
		pipe.SAdd(ctx, s.ownerKey(rec.OwnerID), sid)
		pipe.ZAdd(ctx, s.expiryKey(), redis.Z{Score: float64(rec.ExpiresAt), Member: sid})
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}
