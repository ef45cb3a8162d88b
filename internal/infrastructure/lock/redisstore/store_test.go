package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/riskibarqy/group-stage/internal/platform/id"
	"github.com/riskibarqy/group-stage/internal/platform/lock"
	"github.com/riskibarqy/group-stage/internal/platform/logging"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, "group-stage:"), server
}

func TestStore_SetNXRespectsExistingKey(t *testing.T) {
	store, server := newTestStore(t)
	ctx := context.Background()

	ok, err := store.SetNX(ctx, lock.MatchResultsKey, "owner-a", 5*time.Second)
	if err != nil || !ok {
		t.Fatalf("expected first SetNX to succeed, ok=%v err=%v", ok, err)
	}
	ok, err = store.SetNX(ctx, lock.MatchResultsKey, "owner-b", 5*time.Second)
	if err != nil || ok {
		t.Fatalf("expected second SetNX to fail, ok=%v err=%v", ok, err)
	}

	if got, _ := server.Get("group-stage:match_lock"); got != "owner-a" {
		t.Fatalf("unexpected stored owner: %q", got)
	}
	if ttl := server.TTL("group-stage:match_lock"); ttl <= 0 || ttl > 5*time.Second {
		t.Fatalf("unexpected ttl: %s", ttl)
	}
}

func TestStore_SetNXAfterExpiry(t *testing.T) {
	store, server := newTestStore(t)
	ctx := context.Background()

	if ok, err := store.SetNX(ctx, lock.TeamRosterKey, "owner-a", time.Second); err != nil || !ok {
		t.Fatalf("initial SetNX failed, ok=%v err=%v", ok, err)
	}
	server.FastForward(2 * time.Second)

	if ok, err := store.SetNX(ctx, lock.TeamRosterKey, "owner-b", time.Second); err != nil || !ok {
		t.Fatalf("expected SetNX to succeed after expiry, ok=%v err=%v", ok, err)
	}
}

func TestStore_CompareAndDeleteOnlyForOwner(t *testing.T) {
	store, server := newTestStore(t)
	ctx := context.Background()

	if _, err := store.SetNX(ctx, lock.MatchResultsKey, "owner-a", 5*time.Second); err != nil {
		t.Fatalf("SetNX: %v", err)
	}

	deleted, err := store.CompareAndDelete(ctx, lock.MatchResultsKey, "owner-b")
	if err != nil || deleted {
		t.Fatalf("expected non-owner delete to be refused, deleted=%v err=%v", deleted, err)
	}
	if !server.Exists("group-stage:match_lock") {
		t.Fatalf("expected lock to survive non-owner delete")
	}

	deleted, err = store.CompareAndDelete(ctx, lock.MatchResultsKey, "owner-a")
	if err != nil || !deleted {
		t.Fatalf("expected owner delete to succeed, deleted=%v err=%v", deleted, err)
	}
	if server.Exists("group-stage:match_lock") {
		t.Fatalf("expected lock to be removed")
	}

	deleted, err = store.CompareAndDelete(ctx, lock.MatchResultsKey, "owner-a")
	if err != nil || deleted {
		t.Fatalf("expected delete of missing key to report false, deleted=%v err=%v", deleted, err)
	}
}

func TestStore_ErrorsWhenServerDown(t *testing.T) {
	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	store := New(client, "")
	server.Close()

	if _, err := store.SetNX(context.Background(), lock.MatchResultsKey, "owner", time.Second); err == nil {
		t.Fatalf("expected error when redis is unreachable")
	}
}

func TestStore_WithLockService(t *testing.T) {
	store, _ := newTestStore(t)
	svc := lock.NewService(store, id.NewUUIDGenerator(), nil, lock.DefaultOptions(), logging.NewNop())
	ctx := context.Background()
	opts := lock.Options{TTL: 5 * time.Second, Timeout: 30 * time.Millisecond, PollInterval: 5 * time.Millisecond}

	lease, err := svc.Acquire(ctx, lock.MatchResultsKey, opts)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := svc.Acquire(ctx, lock.MatchResultsKey, opts); !errors.Is(err, lock.ErrNotAcquired) {
		t.Fatalf("expected contention to time out, got %v", err)
	}
	if !svc.Release(ctx, lease) {
		t.Fatalf("expected release to delete redis key")
	}
	if _, err := svc.Acquire(ctx, lock.MatchResultsKey, opts); err != nil {
		t.Fatalf("expected acquire after release: %v", err)
	}
}

func TestConnect_InvalidURL(t *testing.T) {
	if _, err := Connect(context.Background(), "http://localhost:6379"); err == nil {
		t.Fatalf("expected error for non-redis scheme")
	}
}

func TestConnect_PingsServer(t *testing.T) {
	server := miniredis.RunT(t)
	client, err := Connect(context.Background(), "redis://"+server.Addr()+"/0")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	_ = client.Close()
}
