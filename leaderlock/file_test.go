package leaderlock

import (
	"context"
	"path/filepath"
	"testing"
)

func TestFileLockSingleLeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheduler.lock")
	ctx := context.Background()

	a := NewFileLock(path)
	b := NewFileLock(path)

	gotA, err := a.TryAcquire(ctx)
	if err != nil || !gotA {
		t.Fatalf("expected a to acquire, got %v err %v", gotA, err)
	}

	gotB, err := b.TryAcquire(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotB {
		t.Fatal("expected b to fail to acquire while a holds the lock")
	}

	if err := a.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}

	gotB2, err := b.TryAcquire(ctx)
	if err != nil || !gotB2 {
		t.Fatalf("expected b to acquire after a released, got %v err %v", gotB2, err)
	}
}

func TestFileLockIdempotentWithinSameHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheduler.lock")
	ctx := context.Background()
	a := NewFileLock(path)

	ok1, _ := a.TryAcquire(ctx)
	ok2, _ := a.TryAcquire(ctx)
	if !ok1 || !ok2 {
		t.Fatal("re-acquiring the same held lock should succeed idempotently")
	}
}
