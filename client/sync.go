package client

import (
	"context"
	"log"

	"playRushAPI/internal/game"
	"playRushAPI/internal/progress"
)

// Syncer composes the optimistic store with the backend: local apply
// first for instant UI, then a bounded round-trip whose authoritative
// snapshot overwrites the optimistic guess. Network failures are
// swallowed; the next successful round-trip reconciles naturally.
type Syncer struct {
	store *ProgressStore
	api   *APIClient
}

func NewSyncer(store *ProgressStore, api *APIClient) *Syncer {
	return &Syncer{store: store, api: api}
}

// Start runs the app-foreground sync: server profile wins over the
// cached snapshot, which wins over defaults (the store hydrated from
// cache at construction). Streak settlement runs after hydration so a
// day rolled over while backgrounded is handled before any game.
func (s *Syncer) Start(ctx context.Context) progress.UserProgress {
	if s.api != nil {
		if server, err := s.api.FetchProfile(ctx); err == nil {
			s.store.LoadSnapshot(*server)
		} else {
			log.Printf("Syncer: profile fetch failed, keeping local state: %v", err)
		}
	}
	return s.store.CheckAndUpdateStreak()
}

// CompleteGame applies the completion optimistically, then submits it.
// The returned state and result come from the local apply so the UI
// never waits on the network; if the server answers, its snapshot
// silently replaces the optimistic one.
func (s *Syncer) CompleteGame(ctx context.Context, ev game.CompletionEvent) (progress.UserProgress, progress.CompletionResult, error) {
	state, res := s.store.CompleteGame(ev)

	if err := ev.Validate(); err != nil {
		return state, res, err
	}
	if s.api == nil {
		return state, res, nil
	}

	resp, err := s.api.PostGameComplete(ctx, ev)
	if err != nil {
		log.Printf("Syncer: completion submit failed, keeping optimistic state: %v", err)
		return state, res, nil
	}
	state = s.store.LoadSnapshot(resp.Profile)
	return state, res, nil
}

// ClaimDoublePoints reports the rewarded-ad payout: the same amount
// already earned is credited again, doubling the session's net gain.
func (s *Syncer) ClaimDoublePoints(ctx context.Context, pointsEarned int) progress.UserProgress {
	state := s.store.AddBonusPoints(pointsEarned)

	if s.api != nil {
		if server, err := s.api.PostBonusPoints(ctx, pointsEarned); err == nil {
			state = s.store.LoadSnapshot(*server)
		} else {
			log.Printf("Syncer: bonus points submit failed, keeping optimistic state: %v", err)
		}
	}
	return state
}
