// Package secret implements one-way hashing of rotating token secrets with
// Argon2id defaults.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Token secrets are high-entropy random values, not human passwords, so the
// default parameters are deliberately lighter than interactive password
// hashing while staying salted and memory-hard. The same primitive shape used
// for primary credential verification is reused here for uniformity:
// verification recomputes the hash and compares in constant time.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. When a hash may rotate,
// the expiry it rotates under, and what a mismatch means are decided by the
// scheme.
//
// # What this package must NOT do
//
//   - Store or retrieve secrets — callers supply raw bytes and receive hashes.
//   - Import any other persist package.
//   - Log raw secrets or hash parameters at runtime.
package secret
