package persist

import (
	"github.com/redis/go-redis/v9"

	"github.com/persistkit/persist/secret"
	"github.com/persistkit/persist/token"
)

// Builder defines a public type used by persist APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	userProvider UserProvider
	eventSink    EventSink
	hasher       secret.Hasher
	codec        token.Codec

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserProvider describes the withuserprovider operation and its observable behavior.
//
// WithUserProvider may return an error when input validation, dependency calls, or security checks fail.
// WithUserProvider does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithEventSink describes the witheventsink operation and its observable behavior.
//
// WithEventSink may return an error when input validation, dependency calls, or security checks fail.
// WithEventSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.eventSink = sink
	return b
}

// WithHasher overrides the Argon2id default, for hosts that already share a
// hashing primitive with their primary credential path.
func (b *Builder) WithHasher(h secret.Hasher) *Builder {
	b.hasher = h
	return b
}

// WithCodec overrides the default [token.RawCodec], e.g. with a
// [token.SignedCodec] when the host cookie layer is not tamper-evident.
func (b *Builder) WithCodec(c token.Codec) *Builder {
	b.codec = c
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
// Configuration errors are fatal here, never per-request.
func (b *Builder) Build() (*Scheme, error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}

	if err := validateConfig(b.config); err != nil {
		return nil, err
	}
	if b.redis == nil {
		return nil, ErrNilRedis
	}
	if b.userProvider == nil {
		return nil, ErrNilUserProvider
	}

	hasher := b.hasher
	if hasher == nil {
		var err error
		hasher, err = secret.NewArgon2(b.config.Secret)
		if err != nil {
			return nil, err
		}
	}

	codec := b.codec
	if codec == nil {
		codec = token.RawCodec{}
	}

	s := &Scheme{
		config:  b.config,
		store:   token.NewStore(b.redis, hasher, b.config.Token.KeyPrefix, b.config.Token.TTL),
		codec:   codec,
		hasher:  hasher,
		users:   b.userProvider,
		events:  newEventDispatcher(b.config.Events, b.eventSink),
		metrics: NewMetrics(b.config.Metrics),
	}

	b.built = true
	return s, nil
}
