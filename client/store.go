package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"playRushAPI/internal/game"
	"playRushAPI/internal/progress"
)

// ProgressStore owns the device-local UserProgress for one signed-in
// user. It is an explicit, injectable object: construct one per
// session and hand it to whatever needs it (sync, ad policy, UI);
// there is no hidden process-wide singleton.
//
// All reducer transitions run under the store lock, and every accepted
// state is persisted to the cache best-effort in the background.
type ProgressStore struct {
	userID string
	cache  Cache
	now    func() time.Time

	mu    sync.Mutex
	state progress.UserProgress

	// Persist bookkeeping: async writes may land out of order, so each
	// snapshot carries a sequence number and stale writes are dropped.
	saveMu   sync.Mutex
	saveWG   sync.WaitGroup
	saveSeq  uint64
	savedSeq uint64
}

// StoreOption tweaks construction (tests inject a fixed clock).
type StoreOption func(*ProgressStore)

func WithClock(now func() time.Time) StoreOption {
	return func(s *ProgressStore) { s.now = now }
}

// NewProgressStore hydrates the store from the cache snapshot, falling
// back to defaults silently on a miss or corrupt payload.
func NewProgressStore(ctx context.Context, userID string, cache Cache, opts ...StoreOption) *ProgressStore {
	s := &ProgressStore{
		userID: userID,
		cache:  cache,
		now:    time.Now,
		state:  progress.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cache != nil {
		raw, err := cache.Get(ctx, s.cacheKey())
		if err == nil {
			if state, perr := progress.FromJSON(raw); perr == nil {
				s.state = state
			} else {
				log.Printf("ProgressStore: corrupt cache for %s, using defaults: %v", userID, perr)
			}
		} else if !errors.Is(err, ErrCacheMiss) {
			log.Printf("ProgressStore: cache read failed for %s, using defaults: %v", userID, err)
		}
	}

	return s
}

func (s *ProgressStore) cacheKey() string {
	return fmt.Sprintf("progress:%s", s.userID)
}

// Snapshot returns a copy of the current state.
func (s *ProgressStore) Snapshot() progress.UserProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// LoadSnapshot replaces local state with an authoritative server
// snapshot. The server always wins; no field-level merge.
func (s *ProgressStore) LoadSnapshot(snapshot progress.UserProgress) progress.UserProgress {
	return s.apply(func(progress.UserProgress) progress.UserProgress {
		return progress.LoadState(snapshot)
	})
}

// CheckAndUpdateStreak settles streak continuation/breakage/freeze.
// Run once per app foreground, before any game interaction.
func (s *ProgressStore) CheckAndUpdateStreak() progress.UserProgress {
	return s.apply(func(state progress.UserProgress) progress.UserProgress {
		return progress.CheckAndUpdateStreak(state, s.now())
	})
}

// CompleteGame applies one finished session optimistically and returns
// the result the UI shows immediately.
func (s *ProgressStore) CompleteGame(ev game.CompletionEvent) (progress.UserProgress, progress.CompletionResult) {
	s.mu.Lock()
	next, res := progress.CompleteGame(s.state, ev, s.now())
	s.state = next
	snapshot := next.Clone()
	s.persistLocked()
	s.mu.Unlock()
	return snapshot, res
}

// UseStreakFreeze consumes the manual freeze (at most once a week).
func (s *ProgressStore) UseStreakFreeze() progress.UserProgress {
	return s.apply(func(state progress.UserProgress) progress.UserProgress {
		return progress.UseStreakFreeze(state, s.now())
	})
}

// AddBonusPoints credits the rewarded-ad double-points payout.
func (s *ProgressStore) AddBonusPoints(points int) progress.UserProgress {
	return s.apply(func(state progress.UserProgress) progress.UserProgress {
		return progress.AddBonusPoints(state, points)
	})
}

// AddCoins credits coins locally.
func (s *ProgressStore) AddCoins(amount int) progress.UserProgress {
	return s.apply(func(state progress.UserProgress) progress.UserProgress {
		return progress.AddCoins(state, amount)
	})
}

// SpendCoins debits coins; the spend is rejected (state unchanged,
// ok=false) when the balance would go negative. The server runs the
// authoritative check on its own copy.
func (s *ProgressStore) SpendCoins(amount int) (progress.UserProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := progress.SpendCoins(s.state, amount)
	if err != nil {
		return s.state.Clone(), false
	}
	s.state = next
	s.persistLocked()
	return next.Clone(), true
}

// Reset restores defaults (debug/logout).
func (s *ProgressStore) Reset() progress.UserProgress {
	return s.apply(func(progress.UserProgress) progress.UserProgress {
		return progress.Reset()
	})
}

func (s *ProgressStore) apply(fn func(progress.UserProgress) progress.UserProgress) progress.UserProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fn(s.state)
	s.persistLocked()
	return s.state.Clone()
}

// persistLocked schedules a best-effort async cache write of the
// current state. Callers hold s.mu. Stale writes (a newer snapshot
// already persisted) are dropped, so the cache always reflects the
// most recent accepted state.
func (s *ProgressStore) persistLocked() {
	if s.cache == nil {
		return
	}

	data, err := s.state.ToJSON()
	if err != nil {
		log.Printf("ProgressStore: failed to encode state for %s: %v", s.userID, err)
		return
	}

	s.saveSeq++
	seq := s.saveSeq

	s.saveWG.Add(1)
	go func() {
		defer s.saveWG.Done()
		s.saveMu.Lock()
		defer s.saveMu.Unlock()
		if seq <= s.savedSeq {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.cache.Set(ctx, s.cacheKey(), data); err != nil {
			log.Printf("ProgressStore: cache write failed for %s: %v", s.userID, err)
			return
		}
		s.savedSeq = seq
	}()
}

// Flush blocks until all scheduled cache writes have settled. Tests
// and logout paths use it; normal operation never waits.
func (s *ProgressStore) Flush() {
	s.saveWG.Wait()
}
