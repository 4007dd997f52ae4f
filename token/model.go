package token

import (
	"time"

	"github.com/google/uuid"

	"github.com/persistkit/persist/internal"
)

// SecretSize is the byte length of the rotating secret carried in the cookie
// payload alongside the series identifier.
const SecretSize = internal.SecretSize

// Record defines a public type used by persist APIs.
//
// Record instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// The series identifier is stable across rotations of one persistent-login
// lineage; SecretHash holds only the salted one-way hash of the current
// secret, never the secret itself.
type Record struct {
	Series     uuid.UUID
	OwnerID    string
	SecretHash string

	IssuedAt  int64
	ExpiresAt int64
}

// Expired reports whether the record's expiry horizon has passed.
func (r *Record) Expired(now time.Time) bool {
	return r.ExpiresAt <= now.Unix()
}
