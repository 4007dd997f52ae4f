// Package persist implements a persistent-login ("remember me") token scheme:
// rotating opaque (series, secret) cookies validated against a Redis-backed
// token store, with theft detection and bulk revocation on secret reuse.
//
// The package is designed for concurrent server workloads: Scheme methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Protocol
//
// A cookie carries a series identifier and a high-entropy secret. Validation
// looks the series up, verifies the secret against its salted hash in
// constant time, and on a match rotates the secret in place — a captured
// cookie is single-use before the legitimate holder's next visit invalidates
// it. A valid series presenting a stale secret is the theft signal: every
// record for that owner is revoked at once. Validation runs at most once per
// browser session, gated by [SessionState].
//
// # Architecture boundaries
//
// persist is the public surface. It exposes [Scheme], [Builder], [Config],
// [SessionState], and value types (Result, Identity, Event, MetricsSnapshot).
// Record persistence and payload codecs live in the token sub-package; the
// exposure-minimizing HTTP layer lives in middleware.
//
// # What this package must NOT do
//
//   - Perform primary credential authentication — hosts identify users and
//     call [Scheme.OnIdentified].
//   - Encrypt the cookie for transport; the host's cookie layer owns that and
//     must be tamper-evident in production.
//   - Fall back to authenticating when the token store is unreachable.
package persist
