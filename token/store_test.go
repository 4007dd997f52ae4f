package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/persistkit/persist/secret"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	hasher, err := secret.NewArgon2(secret.Config{
		Memory:      8192,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewArgon2 error: %v", err)
	}

	return NewStore(rdb, hasher, "pltest", ttl), rdb
}

func TestCreateAndFindBySeries(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	rec, sec, err := store.Create(ctx, "owner-1")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if rec.OwnerID != "owner-1" {
		t.Fatalf("unexpected owner: %s", rec.OwnerID)
	}

	ok, err := store.hasher.Verify(sec[:], rec.SecretHash)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("raw secret must verify against the stored hash")
	}

	found, err := store.FindBySeries(ctx, rec.Series)
	if err != nil {
		t.Fatalf("FindBySeries error: %v", err)
	}
	if found.Series != rec.Series || found.SecretHash != rec.SecretHash {
		t.Fatal("found record does not match created record")
	}
}

func TestFindBySeriesUnknown(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	series, _ := testPair(t)
	if _, err := store.FindBySeries(context.Background(), series); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRotateKeepsSeriesReplacesSecret(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	rec, oldSecret, err := store.Create(ctx, "owner-1")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	next, newSecret, err := store.Rotate(ctx, rec)
	if err != nil {
		t.Fatalf("Rotate error: %v", err)
	}

	if next.Series != rec.Series {
		t.Fatal("rotation must preserve the series")
	}
	if next.SecretHash == rec.SecretHash {
		t.Fatal("rotation must replace the secret hash")
	}

	found, err := store.FindBySeries(ctx, rec.Series)
	if err != nil {
		t.Fatalf("FindBySeries error: %v", err)
	}

	if ok, _ := store.hasher.Verify(oldSecret[:], found.SecretHash); ok {
		t.Fatal("old secret must not verify after rotation")
	}
	if ok, _ := store.hasher.Verify(newSecret[:], found.SecretHash); !ok {
		t.Fatal("new secret must verify after rotation")
	}
}

func TestDeleteBySeries(t *testing.T) {
	store, rdb := newTestStore(t, time.Hour)
	ctx := context.Background()

	rec, _, err := store.Create(ctx, "owner-1")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := store.DeleteBySeries(ctx, rec.Series); err != nil {
		t.Fatalf("DeleteBySeries error: %v", err)
	}

	if _, err := store.FindBySeries(ctx, rec.Series); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	members, err := rdb.SMembers(ctx, store.ownerKey("owner-1")).Result()
	if err != nil {
		t.Fatalf("SMembers error: %v", err)
	}
	if len(members) != 0 {
		t.Fatalf("owner index must be pruned, still holds %v", members)
	}

	// Deleting an already-deleted series is a no-op, not an error.
	if err := store.DeleteBySeries(ctx, rec.Series); err != nil {
		t.Fatalf("repeat DeleteBySeries error: %v", err)
	}
}

func TestDeleteAllByOwnerSpansSeries(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	first, _, err := store.Create(ctx, "owner-1")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	second, _, err := store.Create(ctx, "owner-1")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	other, _, err := store.Create(ctx, "owner-2")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	n, err := store.DeleteAllByOwner(ctx, "owner-1")
	if err != nil {
		t.Fatalf("DeleteAllByOwner error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 revoked records, got %d", n)
	}

	for _, series := range []uuid.UUID{first.Series, second.Series} {
		if _, err := store.FindBySeries(ctx, series); !errors.Is(err, ErrNotFound) {
			t.Fatalf("series %s must be revoked, got %v", series, err)
		}
	}

	if _, err := store.FindBySeries(ctx, other.Series); err != nil {
		t.Fatalf("unrelated owner's record must survive, got %v", err)
	}
}

func TestRemoveExpired(t *testing.T) {
	longStore, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	live, _, err := longStore.Create(ctx, "owner-live")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	shortStore := NewStore(longStore.redis, longStore.hasher, longStore.prefix, 10*time.Millisecond)
	stale, _, err := shortStore.Create(ctx, "owner-stale")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	time.Sleep(1100 * time.Millisecond)

	n, err := longStore.RemoveExpired(ctx)
	if err != nil {
		t.Fatalf("RemoveExpired error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 swept record, got %d", n)
	}

	if _, err := longStore.FindBySeries(ctx, stale.Series); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired series must be unreachable, got %v", err)
	}
	if _, err := longStore.FindBySeries(ctx, live.Series); err != nil {
		t.Fatalf("live series must survive the sweep, got %v", err)
	}
}

func TestCreateRequiresOwner(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	if _, _, err := store.Create(context.Background(), ""); err == nil {
		t.Fatal("expected empty owner id to be rejected")
	}
}
