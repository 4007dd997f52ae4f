package persist

// RedirectPhase tracks where a browser session stands in the
// exposure-minimization redirect flow.
type RedirectPhase uint8

const (
	// PhaseIdle is an exported constant or variable used by the persistent-login scheme.
	PhaseIdle RedirectPhase = iota
	// PhaseRedirecting is an exported constant or variable used by the persistent-login scheme.
	PhaseRedirecting
	// PhaseChecked is an exported constant or variable used by the persistent-login scheme.
	PhaseChecked
)

// SessionState is the per-session state threaded explicitly through
// validation and the redirect middleware. The host creates one at session
// start, persists it in its session store, and discards it at session end —
// that is the only way Attempted resets.
//
// The attempt gate is deliberately not atomic: two concurrent requests in one
// session may both observe Attempted=false and both validate. Rotation in the
// store is a last-write-wins overwrite, so the loser's freshly issued cookie
// is stranded and that tab sees a spurious mismatch on its next visit. This
// is an accepted usability race, not a security flaw — no secret is ever
// usable twice by an attacker.
type SessionState struct {
	Attempted bool          `json:"attempted"`
	Phase     RedirectPhase `json:"phase"`
}

// NewSessionState returns the state for a session that has not yet attempted
// token authentication.
func NewSessionState() *SessionState {
	return &SessionState{}
}
