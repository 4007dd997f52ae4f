package persist

import "errors"

var (
	// ErrNilRedis is an exported constant or variable used by the persistent-login scheme.
	ErrNilRedis = errors.New("redis client is required")
	// ErrNilUserProvider is an exported constant or variable used by the persistent-login scheme.
	ErrNilUserProvider = errors.New("user provider is required")
	// ErrAlreadyBuilt is an exported constant or variable used by the persistent-login scheme.
	ErrAlreadyBuilt = errors.New("builder already built")
	// ErrSchemeNotReady is an exported constant or variable used by the persistent-login scheme.
	ErrSchemeNotReady = errors.New("scheme not initialized")
	// ErrSessionStateRequired is an exported constant or variable used by the persistent-login scheme.
	ErrSessionStateRequired = errors.New("session state is required")
	// ErrOwnerNotFound is an exported constant or variable used by the persistent-login scheme.
	ErrOwnerNotFound = errors.New("owner identity not found")
	// ErrCookieTheft signals that a valid series presented a stale secret: the
	// legitimate holder has rotated past it, so the replayed cookie is treated
	// as stolen and every token for the owner is revoked. Hosts should surface
	// a security warning to the user when they see it.
	ErrCookieTheft = errors.New("persistent token reuse detected")
)
