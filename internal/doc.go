// Package internal contains helper utilities that are intentionally private to persist:
// series identifier and secret generation backed by crypto/rand.
//
// # What this package must NOT do
//
//   - Export types that appear in the public persist API.
//   - Be imported by any package outside the persist module.
package internal
