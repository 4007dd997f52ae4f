package persist

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the resolved user record returned after a token validates. The
// token record's owner id alone identifies who to check, never who is
// authenticated; an Identity exists only once the secret hash has verified.
type Identity struct {
	OwnerID  string
	Username string

	Attributes map[string]string
}

// UserProvider is the identity-resolution collaborator: given the owner id
// stored with a token record, it returns the full user record used by the
// rest of the host's authentication layer.
type UserProvider interface {
	Resolve(ctx context.Context, ownerID string) (*Identity, error)
}

// IdentifiedBy tags the path that identified a user, so lifecycle hooks can
// tell a primary-credential login apart from this scheme's own validator
// without comparing authenticator instances.
type IdentifiedBy uint8

const (
	// IdentifiedByPrimaryCredential is an exported constant or variable used by the persistent-login scheme.
	IdentifiedByPrimaryCredential IdentifiedBy = iota
	// IdentifiedByPersistentToken is an exported constant or variable used by the persistent-login scheme.
	IdentifiedByPersistentToken
	// IdentifiedByExternalProvider is an exported constant or variable used by the persistent-login scheme.
	IdentifiedByExternalProvider
)

// Outcome classifies a validation decision.
type Outcome uint8

const (
	// OutcomeNoToken means no cookie, a malformed cookie, or an unknown
	// series: proceed as anonymous, nothing user-visible.
	OutcomeNoToken Outcome = iota
	// OutcomeAuthenticated means the secret verified and the token rotated.
	OutcomeAuthenticated
	// OutcomeRejected means a valid series presented a stale secret — the
	// theft signal. All of the owner's tokens have been revoked.
	OutcomeRejected
)

// Result carries a validation decision plus the cookie instructions the host
// must apply: SetCookie is the freshly rotated payload to write, ClearCookie
// asks the host to drop the cookie. At most one of the two is set.
type Result struct {
	Outcome  Outcome
	Identity *Identity

	Series uuid.UUID

	SetCookie   []byte
	ClearCookie bool
}
