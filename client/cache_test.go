package client

import (
	"context"
	"errors"
	"testing"
)

func TestSQLiteCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache, err := OpenSQLiteCache(t.TempDir())
	if err != nil {
		t.Fatalf("OpenSQLiteCache: %v", err)
	}
	defer cache.Close()

	if _, err := cache.Get(ctx, "progress:u1"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss on empty cache, got %v", err)
	}

	if err := cache.Set(ctx, "progress:u1", []byte(`{"totalPoints":50}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := cache.Get(ctx, "progress:u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"totalPoints":50}` {
		t.Errorf("value mismatch: %s", got)
	}

	// Upsert replaces, last write wins.
	if err := cache.Set(ctx, "progress:u1", []byte(`{"totalPoints":120}`)); err != nil {
		t.Fatalf("Set (update): %v", err)
	}
	got, err = cache.Get(ctx, "progress:u1")
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if string(got) != `{"totalPoints":120}` {
		t.Errorf("update not applied: %s", got)
	}
}

func TestSQLiteCacheReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cache, err := OpenSQLiteCache(dir)
	if err != nil {
		t.Fatalf("OpenSQLiteCache: %v", err)
	}
	if err := cache.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenSQLiteCache(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("data lost across reopen: %s", got)
	}
}
