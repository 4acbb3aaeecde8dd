// Package adconfig defines the remotely tunable ad-gating settings.
// The server loads them from ads.toml and serves them on /ads/config;
// clients cache the payload for about an hour and fall back to the
// defaults offline.
package adconfig

// Config is the full ad configuration document.
type Config struct {
	Version          string             `json:"version" toml:"version"`
	GlobalKillSwitch bool               `json:"globalKillSwitch" toml:"global_kill_switch"`
	Banner           BannerConfig       `json:"banner" toml:"banner"`
	Interstitial     InterstitialConfig `json:"interstitial" toml:"interstitial"`
	Rewarded         RewardedConfig     `json:"rewarded" toml:"rewarded"`
}

// BannerConfig controls the home-screen banner slot.
type BannerConfig struct {
	AdUnitID               string `json:"adUnitId" toml:"ad_unit_id"`
	Enabled                bool   `json:"enabled" toml:"enabled"`
	Provider               string `json:"provider" toml:"provider"`
	Size                   string `json:"size" toml:"size"`
	Position               string `json:"position" toml:"position"`
	RefreshIntervalSeconds int    `json:"refreshIntervalSeconds" toml:"refresh_interval_seconds"`
}

// InterstitialConfig controls full-screen ad frequency between games.
type InterstitialConfig struct {
	AdUnitID                  string `json:"adUnitId" toml:"ad_unit_id"`
	Enabled                   bool   `json:"enabled" toml:"enabled"`
	Provider                  string `json:"provider" toml:"provider"`
	FrequencyGames            int    `json:"frequencyGames" toml:"frequency_games"`
	CooldownSeconds           int    `json:"cooldownSeconds" toml:"cooldown_seconds"`
	SuppressOnStreakIncrement bool   `json:"suppressOnStreakIncrement" toml:"suppress_on_streak_increment"`
}

// RewardedConfig controls the opt-in "double your points" ad.
type RewardedConfig struct {
	AdUnitID         string  `json:"adUnitId" toml:"ad_unit_id"`
	Enabled          bool    `json:"enabled" toml:"enabled"`
	Provider         string  `json:"provider" toml:"provider"`
	RewardMultiplier float64 `json:"rewardMultiplier" toml:"reward_multiplier"`
	RewardLabel      string  `json:"rewardLabel" toml:"reward_label"`
}

// Defaults mirror the shipped client fallbacks: the app must behave
// sensibly offline with no config fetch at all.
func Defaults() Config {
	return Config{
		Version:          "0.0.0",
		GlobalKillSwitch: false,
		Banner: BannerConfig{
			AdUnitID:               "ca-app-pub-3940256099942544/6300978111",
			Enabled:                false,
			Provider:               "mock",
			Size:                   "banner",
			Position:               "home",
			RefreshIntervalSeconds: 60,
		},
		Interstitial: InterstitialConfig{
			AdUnitID:                  "ca-app-pub-3940256099942544/1033173712",
			Enabled:                   true,
			Provider:                  "mock",
			FrequencyGames:            4,
			CooldownSeconds:           30,
			SuppressOnStreakIncrement: true,
		},
		Rewarded: RewardedConfig{
			AdUnitID:         "ca-app-pub-3940256099942544/5224354917",
			Enabled:          true,
			Provider:         "mock",
			RewardMultiplier: 2,
			RewardLabel:      "Double your points!",
		},
	}
}
