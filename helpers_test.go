package persist

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/persistkit/persist/secret"
)

type mockUserProvider struct {
	users map[string]*Identity
	err   error
}

func (m *mockUserProvider) Resolve(_ context.Context, ownerID string) (*Identity, error) {
	if m.err != nil {
		return nil, m.err
	}
	identity, ok := m.users[ownerID]
	if !ok {
		return nil, ErrOwnerNotFound
	}
	return identity, nil
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return rdb
}

func testSchemeConfig() Config {
	cfg := defaultConfig()
	cfg.Secret = secret.Config{
		Memory:      8192,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
	return cfg
}

func newTestScheme(t *testing.T, cfg Config, sink EventSink) (*Scheme, *mockUserProvider) {
	t.Helper()

	up := &mockUserProvider{
		users: map[string]*Identity{
			"owner-1": {OwnerID: "owner-1", Username: "alice"},
			"owner-2": {OwnerID: "owner-2", Username: "bob"},
		},
	}

	scheme, err := New().
		WithConfig(cfg).
		WithRedis(newTestRedis(t)).
		WithUserProvider(up).
		WithEventSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	t.Cleanup(scheme.Close)

	return scheme, up
}

func mintCookie(t *testing.T, scheme *Scheme, ownerID string) []byte {
	t.Helper()

	payload, err := scheme.OnIdentified(context.Background(), ownerID, IdentifiedByPrimaryCredential)
	if err != nil {
		t.Fatalf("OnIdentified error: %v", err)
	}
	if len(payload) == 0 {
		t.Fatal("expected a minted cookie payload")
	}
	return payload
}

func mustValidate(t *testing.T, scheme *Scheme, cookie []byte, st *SessionState) *Result {
	t.Helper()

	res, err := scheme.Validate(context.Background(), cookie, st)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	return res
}

func waitEvent(t *testing.T, sink *ChannelSink, eventType string) Event {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-sink.Events():
			if event.EventType == eventType {
				return event
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", eventType)
		}
	}
}
