package persist

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/persistkit/persist/token"
)

// Full protocol walk: primary login mints (S1, s1); the next browser session
// rotates to s2; an attacker replaying (S1, s1) in a third session is
// rejected and every record for the owner disappears.
func TestValidateRotationAndTheftScenario(t *testing.T) {
	sink := NewChannelSink(16)
	scheme, _ := newTestScheme(t, testSchemeConfig(), sink)

	firstCookie := mintCookie(t, scheme, "owner-1")

	res := mustValidate(t, scheme, firstCookie, NewSessionState())
	if res.Outcome != OutcomeAuthenticated {
		t.Fatalf("expected OutcomeAuthenticated, got %v", res.Outcome)
	}
	if res.Identity == nil || res.Identity.Username != "alice" {
		t.Fatalf("unexpected identity: %+v", res.Identity)
	}
	if len(res.SetCookie) == 0 {
		t.Fatal("successful validation must rewrite the cookie")
	}
	if bytes.Equal(res.SetCookie, firstCookie) {
		t.Fatal("rotation must change the cookie payload")
	}

	rotatedCookie := res.SetCookie

	// The captured pre-rotation cookie is the replay.
	replay := mustValidate(t, scheme, firstCookie, NewSessionState())
	if replay.Outcome != OutcomeRejected {
		t.Fatalf("expected OutcomeRejected for replayed secret, got %v", replay.Outcome)
	}
	if !replay.ClearCookie {
		t.Fatal("rejection must instruct the host to clear the cookie")
	}

	event := waitEvent(t, sink, EventTheftDetected)
	if event.OwnerID != "owner-1" {
		t.Fatalf("theft event must carry the owner id, got %q", event.OwnerID)
	}

	// Theft response revokes the legitimate rotated lineage too.
	after := mustValidate(t, scheme, rotatedCookie, NewSessionState())
	if after.Outcome != OutcomeNoToken {
		t.Fatalf("expected OutcomeNoToken after bulk revocation, got %v", after.Outcome)
	}
	if !after.ClearCookie {
		t.Fatal("unknown series must clear the stale cookie")
	}
}

func TestTheftRevokesUnrelatedSeries(t *testing.T) {
	scheme, _ := newTestScheme(t, testSchemeConfig(), nil)

	laptop := mintCookie(t, scheme, "owner-1")
	phone := mintCookie(t, scheme, "owner-1")
	other := mintCookie(t, scheme, "owner-2")

	// Rotate the laptop lineage, then replay its stale cookie.
	rotated := mustValidate(t, scheme, laptop, NewSessionState())
	if rotated.Outcome != OutcomeAuthenticated {
		t.Fatalf("expected OutcomeAuthenticated, got %v", rotated.Outcome)
	}
	replay := mustValidate(t, scheme, laptop, NewSessionState())
	if replay.Outcome != OutcomeRejected {
		t.Fatalf("expected OutcomeRejected, got %v", replay.Outcome)
	}

	// The phone lineage never saw the replay but its owner did.
	phoneRes := mustValidate(t, scheme, phone, NewSessionState())
	if phoneRes.Outcome != OutcomeNoToken {
		t.Fatalf("expected phone lineage revoked, got %v", phoneRes.Outcome)
	}

	// A different owner is untouched.
	otherRes := mustValidate(t, scheme, other, NewSessionState())
	if otherRes.Outcome != OutcomeAuthenticated {
		t.Fatalf("expected unrelated owner to authenticate, got %v", otherRes.Outcome)
	}
}

func TestAttemptGateBoundsValidationPerSession(t *testing.T) {
	scheme, _ := newTestScheme(t, testSchemeConfig(), nil)

	cookie := mintCookie(t, scheme, "owner-1")
	st := NewSessionState()

	res := mustValidate(t, scheme, cookie, st)
	if res.Outcome != OutcomeAuthenticated {
		t.Fatalf("expected OutcomeAuthenticated, got %v", res.Outcome)
	}
	latest := res.SetCookie

	// Any number of further calls in the same session: NoToken, cookie and
	// store untouched — even the now-stale cookie triggers nothing.
	for i := 0; i < 3; i++ {
		res := mustValidate(t, scheme, cookie, st)
		if res.Outcome != OutcomeNoToken {
			t.Fatalf("call %d: expected OutcomeNoToken behind the gate, got %v", i, res.Outcome)
		}
		if res.SetCookie != nil || res.ClearCookie {
			t.Fatalf("call %d: gated call must not issue cookie instructions", i)
		}
	}

	if got := scheme.MetricsSnapshot().Counters[MetricAttemptGateHit]; got != 3 {
		t.Fatalf("expected 3 gate hits, got %d", got)
	}

	// Proof the store was never consulted behind the gate: the rotated
	// lineage still authenticates in a fresh session.
	fresh := mustValidate(t, scheme, latest, NewSessionState())
	if fresh.Outcome != OutcomeAuthenticated {
		t.Fatalf("expected rotated cookie to authenticate, got %v", fresh.Outcome)
	}
}

func TestAbsenceIsSilentAndNonDestructive(t *testing.T) {
	scheme, _ := newTestScheme(t, testSchemeConfig(), nil)

	cookie := mintCookie(t, scheme, "owner-1")

	res := mustValidate(t, scheme, nil, NewSessionState())
	if res.Outcome != OutcomeNoToken {
		t.Fatalf("expected OutcomeNoToken for missing cookie, got %v", res.Outcome)
	}
	if res.ClearCookie {
		t.Fatal("a missing cookie must not instruct a clear")
	}

	// An unknown series clears the stale cookie but deletes nothing else and
	// never flags theft.
	series, err := uuid.NewRandom()
	if err != nil {
		t.Fatalf("uuid generation failed: %v", err)
	}
	var secretVal [token.SecretSize]byte
	unknown, err := token.RawCodec{}.Encode(series, secretVal)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	unknownRes := mustValidate(t, scheme, unknown, NewSessionState())
	if unknownRes.Outcome != OutcomeNoToken {
		t.Fatalf("expected OutcomeNoToken for unknown series, got %v", unknownRes.Outcome)
	}
	if !unknownRes.ClearCookie {
		t.Fatal("unknown series must clear the cookie")
	}
	if got := scheme.MetricsSnapshot().Counters[MetricTheftDetected]; got != 0 {
		t.Fatalf("absence must never count as theft, got %d", got)
	}

	// The real lineage survived both anonymous attempts.
	still := mustValidate(t, scheme, cookie, NewSessionState())
	if still.Outcome != OutcomeAuthenticated {
		t.Fatalf("expected surviving lineage to authenticate, got %v", still.Outcome)
	}
}

func TestMalformedCookieIsNoToken(t *testing.T) {
	scheme, _ := newTestScheme(t, testSchemeConfig(), nil)

	for name, cookie := range map[string][]byte{
		"garbage":   []byte("!!definitely not a payload!!"),
		"truncated": []byte("AAAA"),
	} {
		res := mustValidate(t, scheme, cookie, NewSessionState())
		if res.Outcome != OutcomeNoToken {
			t.Fatalf("%s: expected OutcomeNoToken, got %v", name, res.Outcome)
		}
		if !res.ClearCookie {
			t.Fatalf("%s: malformed payload must clear the cookie", name)
		}
	}
}

func TestExpiredLineageIsSweptOnAttempt(t *testing.T) {
	cfg := testSchemeConfig()
	cfg.Token.TTL = 10 * time.Millisecond
	scheme, _ := newTestScheme(t, cfg, nil)

	cookie := mintCookie(t, scheme, "owner-1")

	time.Sleep(1100 * time.Millisecond)

	res := mustValidate(t, scheme, cookie, NewSessionState())
	if res.Outcome != OutcomeNoToken {
		t.Fatalf("expected expired lineage to be unreachable, got %v", res.Outcome)
	}
	if got := scheme.MetricsSnapshot().Counters[MetricExpiredSwept]; got != 1 {
		t.Fatalf("expected 1 swept record, got %d", got)
	}
}

func TestValidateRequiresSessionState(t *testing.T) {
	scheme, _ := newTestScheme(t, testSchemeConfig(), nil)

	if _, err := scheme.Validate(context.Background(), nil, nil); !errors.Is(err, ErrSessionStateRequired) {
		t.Fatalf("expected ErrSessionStateRequired, got %v", err)
	}
}

func TestValidateFailsClosedOnResolveError(t *testing.T) {
	scheme, up := newTestScheme(t, testSchemeConfig(), nil)

	cookie := mintCookie(t, scheme, "owner-1")
	up.err = errors.New("user backend down")

	if _, err := scheme.Validate(context.Background(), cookie, NewSessionState()); err == nil {
		t.Fatal("expected resolution failure to propagate")
	}
}
