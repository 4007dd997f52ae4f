// Package token provides Redis-backed persistence for persistent-login token
// records and the codecs that move a (series, secret) pair in and out of the
// opaque cookie payload.
//
// # Record layout
//
// Each series owns exactly one Redis hash key holding the encoded record and
// its owner id, an owner SET indexes every live series for bulk revocation,
// and a single expiry ZSET scored by expiry time drives the sweep. Multi-key
// mutations run as Lua scripts so each store operation commits a complete
// state transition on its own.
//
// # Codecs
//
// [RawCodec] is the default: fixed-width binary, base64url, no integrity
// check of its own — it assumes the host's cookie transport is tamper-evident
// (authenticated encryption at the cookie layer). [SignedCodec] wraps the
// pair in an HS256 JWT for hosts whose cookie layer cannot provide that.
//
// # What this package must NOT do
//
//   - Import persist or middleware (no upward imports).
//   - Decide what a secret mismatch means — theft policy belongs to the scheme.
//   - Persist a raw secret; only the salted hash is ever written.
package token
