package client

import (
	"context"
	"log"
	"sync"
	"time"

	"playRushAPI/internal/adconfig"
)

// AdConfigCache serves the remote ad config with a client-side TTL
// (about an hour). Offline or before the first fetch it answers with
// the shipped defaults, so gating always has a config to read.
type AdConfigCache struct {
	api *APIClient
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	cfg       adconfig.Config
	fetchedAt time.Time
}

func NewAdConfigCache(api *APIClient) *AdConfigCache {
	return &AdConfigCache{
		api: api,
		ttl: time.Hour,
		now: time.Now,
		cfg: adconfig.Defaults(),
	}
}

// Current returns the freshest config available, refetching past the
// TTL. A failed refetch keeps serving the previous value.
func (c *AdConfigCache) Current(ctx context.Context) adconfig.Config {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.api != nil && (c.fetchedAt.IsZero() || c.now().Sub(c.fetchedAt) >= c.ttl) {
		if cfg, err := c.api.FetchAdConfig(ctx); err == nil {
			c.cfg = *cfg
			c.fetchedAt = c.now()
		} else {
			log.Printf("AdConfigCache: fetch failed, serving stale config: %v", err)
		}
	}
	return c.cfg
}

// InterstitialGate decides when a full-screen ad may interrupt the
// between-games flow. Its counters are derived session state and are
// never persisted; a fresh session starts with a clean slate.
type InterstitialGate struct {
	config func() adconfig.Config
	now    func() time.Time

	mu                     sync.Mutex
	gamesSinceInterstitial int
	lastInterstitial       time.Time
}

// NewInterstitialGate wires the gate to a live config source so remote
// threshold changes apply between calls without a restart.
func NewInterstitialGate(config func() adconfig.Config) *InterstitialGate {
	return &InterstitialGate{config: config, now: time.Now}
}

// RecordGameComplete registers one finished game and reports whether
// an interstitial should show now. The global kill switch silences the
// placement outright. Streak-increment moments are never interrupted
// when the config says to suppress them; the counter still advances so
// the ad shows on a later game instead.
func (g *InterstitialGate) RecordGameComplete(streakJustIncremented bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.gamesSinceInterstitial++

	cfg := g.config()
	if cfg.GlobalKillSwitch || !cfg.Interstitial.Enabled {
		return false
	}
	if streakJustIncremented && cfg.Interstitial.SuppressOnStreakIncrement {
		return false
	}

	if g.gamesSinceInterstitial < cfg.Interstitial.FrequencyGames {
		return false
	}
	now := g.now()
	cooldown := time.Duration(cfg.Interstitial.CooldownSeconds) * time.Second
	if !g.lastInterstitial.IsZero() && now.Sub(g.lastInterstitial) < cooldown {
		return false
	}

	g.gamesSinceInterstitial = 0
	g.lastInterstitial = now
	return true
}

// RewardedAd runs the opt-in "double your points" placement. The real
// SDK call is behind show; the default simulates the ad with a short
// delay so the flow is exercisable in previews and tests.
type RewardedAd struct {
	config func() adconfig.Config
	show   func(ctx context.Context) error

	mu      sync.Mutex
	claimed bool
}

func NewRewardedAd(config func() adconfig.Config) *RewardedAd {
	return &RewardedAd{
		config: config,
		show: func(ctx context.Context) error {
			select {
			case <-time.After(3 * time.Second):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	}
}

// Offerable reports whether the double-points offer may be shown for
// the just-completed session. The kill switch silences the placement;
// otherwise it is claimable at most once per session and OnNewSession
// re-arms it.
func (a *RewardedAd) Offerable() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	cfg := a.config()
	return !cfg.GlobalKillSwitch && cfg.Rewarded.Enabled && !a.claimed
}

// OnNewSession re-arms the offer after the next game completion.
func (a *RewardedAd) OnNewSession() {
	a.mu.Lock()
	a.claimed = false
	a.mu.Unlock()
}

// Show plays the ad and invokes onReward exactly once on completion.
// Cancelling ctx (screen unmount) abandons the ad without rewarding,
// and the offer stays unclaimed.
func (a *RewardedAd) Show(ctx context.Context, onReward func()) error {
	a.mu.Lock()
	cfg := a.config()
	if cfg.GlobalKillSwitch || !cfg.Rewarded.Enabled || a.claimed {
		a.mu.Unlock()
		return nil
	}
	a.claimed = true
	a.mu.Unlock()

	if err := a.show(ctx); err != nil {
		a.mu.Lock()
		a.claimed = false
		a.mu.Unlock()
		return err
	}

	onReward()
	return nil
}
