package client

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"playRushAPI/internal/game"
	"playRushAPI/internal/progress"
)

var testDay = time.Date(2024, time.September, 12, 10, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestStoreHydratesFromCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()

	seed := progress.Default()
	seed.TotalPoints = 420
	seed.CurrentStreak = 8
	seed.LongestStreak = 8
	data, err := seed.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if err := cache.Set(ctx, "progress:u1", data); err != nil {
		t.Fatalf("Set: %v", err)
	}

	s := NewProgressStore(ctx, "u1", cache, WithClock(fixedClock(testDay)))
	got := s.Snapshot()
	if got.TotalPoints != 420 || got.CurrentStreak != 8 {
		t.Errorf("hydration lost fields: %+v", got)
	}
}

func TestStoreCorruptCacheFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	if err := cache.Set(ctx, "progress:u1", []byte(`{"totalPoints": nope`)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	s := NewProgressStore(ctx, "u1", cache, WithClock(fixedClock(testDay)))
	got := s.Snapshot()
	if got.TotalPoints != 0 || got.Coins != 3 || !got.StreakFreezeAvailable {
		t.Errorf("expected defaults after corrupt cache, got %+v", got)
	}
}

func TestStoreCompleteGamePersistsLatestState(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	s := NewProgressStore(ctx, "u1", cache, WithClock(fixedClock(testDay)))

	state, res := s.CompleteGame(game.CompletionEvent{GameID: game.Flappy, Score: 5})
	if res.PointsEarned != 50 {
		t.Errorf("pointsEarned = %d, want 50", res.PointsEarned)
	}
	if state.TotalGamesPlayed != 1 || state.Coins != 4 {
		t.Errorf("unexpected optimistic state: %+v", state)
	}

	s.Flush()
	raw, err := cache.Get(ctx, "progress:u1")
	if err != nil {
		t.Fatalf("Get after flush: %v", err)
	}
	var persisted progress.UserProgress
	if err := json.Unmarshal(raw, &persisted); err != nil {
		t.Fatalf("persisted payload invalid: %v", err)
	}
	if persisted.TotalGamesPlayed != 1 || persisted.TotalPoints != 50 {
		t.Errorf("cache does not reflect latest state: %+v", persisted)
	}
}

func TestStoreLoadSnapshotOverwritesOptimisticState(t *testing.T) {
	ctx := context.Background()
	s := NewProgressStore(ctx, "u1", NewMemoryCache(), WithClock(fixedClock(testDay)))

	s.CompleteGame(game.CompletionEvent{GameID: game.Jumper, Score: 10})

	server := progress.Default()
	server.TotalPoints = 999
	server.TotalGamesPlayed = 7
	server.CurrentStreak = 3
	server.LongestStreak = 3
	server.LastActiveDate = "2024-09-12"

	got := s.LoadSnapshot(server)
	if got.TotalPoints != 999 || got.TotalGamesPlayed != 7 {
		t.Errorf("server snapshot should fully overwrite local state: %+v", got)
	}
	s.Flush()
}

func TestStoreSpendCoinsRejectsUnderflow(t *testing.T) {
	ctx := context.Background()
	s := NewProgressStore(ctx, "u1", NewMemoryCache(), WithClock(fixedClock(testDay)))

	if _, ok := s.SpendCoins(100); ok {
		t.Error("spend above balance should be rejected")
	}
	got, ok := s.SpendCoins(2)
	if !ok || got.Coins != 1 {
		t.Errorf("spend within balance failed: ok=%v coins=%d", ok, got.Coins)
	}
	s.Flush()
}

func TestStoreStreakSettlesOnForeground(t *testing.T) {
	ctx := context.Background()
	s := NewProgressStore(ctx, "u1", NewMemoryCache(), WithClock(fixedClock(testDay)))

	seed := progress.Default()
	seed.CurrentStreak = 5
	seed.LongestStreak = 5
	seed.GamesCompletedToday = 2
	seed.LastActiveDate = "2024-09-11"
	s.LoadSnapshot(seed)

	got := s.CheckAndUpdateStreak()
	if got.GamesCompletedToday != 0 {
		t.Errorf("daily counter should reset on new day, got %d", got.GamesCompletedToday)
	}
	if got.CurrentStreak != 5 {
		t.Errorf("secured streak should survive the day roll, got %d", got.CurrentStreak)
	}
	s.Flush()
}
