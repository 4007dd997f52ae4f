package internaldefs

import (
	persist "github.com/persistkit/persist"
)

// CounterDef defines a public type used by persist APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   persist.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the persistent-login scheme.
var CounterDefs = []CounterDef{
	{ID: persist.MetricValidateAttempt, Name: "persist_validate_attempt_total", Help: "Token validation attempts that reached the store."},
	{ID: persist.MetricAuthenticated, Name: "persist_authenticated_total", Help: "Successful token authentications."},
	{ID: persist.MetricTheftDetected, Name: "persist_theft_detected_total", Help: "Replayed secrets treated as cookie theft."},
	{ID: persist.MetricNoToken, Name: "persist_no_token_total", Help: "Validation attempts that ended without a usable token."},
	{ID: persist.MetricAttemptGateHit, Name: "persist_attempt_gate_hit_total", Help: "Validation attempts suppressed by the per-session gate."},
	{ID: persist.MetricTokenMinted, Name: "persist_token_minted_total", Help: "Minted persistent tokens."},
	{ID: persist.MetricTokenRevoked, Name: "persist_token_revoked_total", Help: "Explicitly revoked persistent tokens."},
	{ID: persist.MetricExpiredSwept, Name: "persist_expired_swept_total", Help: "Expired token lineages removed by the sweep."},
}

// EventsDroppedName is the exposition name for the event dispatcher drop counter.
const EventsDroppedName = "persist_events_dropped_total"

// EventsDroppedHelp is an exported constant or variable used by the persistent-login scheme.
const EventsDroppedHelp = "Dropped lifecycle events due to dispatcher backpressure."
