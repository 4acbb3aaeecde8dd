// Package progress holds the user progression record and the pure
// state-transition logic behind streaks, points, coins and the weekly
// wheel quota. The same functions run on the device (optimistic) and on
// the server (authoritative), so nothing in here may touch I/O, config
// or the global clock.
package progress

import "encoding/json"

// Daily quota: a day counts toward the streak once this many games are
// finished on it.
const DailyGoal = 2

// Streak milestones that earn a permanent badge and a coin bonus.
var StreakMilestones = []int{7, 14, 30, 50}

// Coin rewards per completion.
const (
	CoinsPerGame      = 1
	CoinsPerMilestone = 3
)

// WeeklyWheelPlays is the free wheel-play quota granted at each week
// boundary.
const WeeklyWheelPlays = 5

// UserProgress is the single source-of-truth progression record, one
// per user. The authoritative copy lives in Postgres; devices hold a
// cached copy that is overwritten wholesale by server snapshots.
type UserProgress struct {
	TotalPoints           int      `json:"totalPoints" db:"total_points"`
	CurrentStreak         int      `json:"currentStreak" db:"current_streak"`
	LongestStreak         int      `json:"longestStreak" db:"longest_streak"`
	LastActiveDate        string   `json:"lastActiveDate" db:"last_active_date"` // YYYY-MM-DD, "" = never
	GamesCompletedToday   int      `json:"gamesCompletedToday" db:"games_completed_today"`
	StreakFreezeAvailable bool     `json:"streakFreezeAvailable" db:"streak_freeze_available"`
	LastStreakFreezeUsed  string   `json:"lastStreakFreezeUsed" db:"last_streak_freeze_used"` // week id, "" = never
	TotalGamesPlayed      int      `json:"totalGamesPlayed" db:"total_games_played"`
	Badges                []string `json:"badges" db:"badges"`
	Coins                 int      `json:"coins" db:"coins"`
	WeeklyPlaysRemaining  int      `json:"weeklyPlaysRemaining" db:"weekly_plays_remaining"`
	CurrentWeekID         string   `json:"currentWeekId" db:"current_week_id"`
}

// Default returns the record a brand-new user starts with.
func Default() UserProgress {
	return UserProgress{
		StreakFreezeAvailable: true,
		Badges:                []string{},
		Coins:                 3,
		WeeklyPlaysRemaining:  WeeklyWheelPlays,
	}
}

// FromJSON decodes a persisted or server-sent snapshot. Fields absent
// from the payload keep their default value, mirroring how clients have
// always hydrated partial profiles. A parse failure returns defaults
// and the error so callers can fall back silently.
func FromJSON(raw []byte) (UserProgress, error) {
	p := Default()
	if err := json.Unmarshal(raw, &p); err != nil {
		return Default(), err
	}
	return p.normalized(), nil
}

// ToJSON encodes the record for the device cache.
func (p UserProgress) ToJSON() ([]byte, error) {
	return json.Marshal(p.normalized())
}

// HasBadge reports whether the milestone badge is already earned.
func (p UserProgress) HasBadge(badge string) bool {
	for _, b := range p.Badges {
		if b == badge {
			return true
		}
	}
	return false
}

// Clone returns a deep copy; reducer transitions never mutate their
// input.
func (p UserProgress) Clone() UserProgress {
	out := p
	out.Badges = append([]string(nil), p.Badges...)
	return out
}

// normalized clamps fields a malformed snapshot could push out of
// range. Badges stay non-nil so JSON round-trips keep [] instead of
// null.
func (p UserProgress) normalized() UserProgress {
	out := p.Clone()
	if out.TotalPoints < 0 {
		out.TotalPoints = 0
	}
	if out.CurrentStreak < 0 {
		out.CurrentStreak = 0
	}
	if out.LongestStreak < out.CurrentStreak {
		out.LongestStreak = out.CurrentStreak
	}
	if out.GamesCompletedToday < 0 {
		out.GamesCompletedToday = 0
	}
	if out.GamesCompletedToday > DailyGoal {
		out.GamesCompletedToday = DailyGoal
	}
	if out.TotalGamesPlayed < 0 {
		out.TotalGamesPlayed = 0
	}
	if out.Coins < 0 {
		out.Coins = 0
	}
	if out.WeeklyPlaysRemaining < 0 {
		out.WeeklyPlaysRemaining = 0
	}
	if out.WeeklyPlaysRemaining > WeeklyWheelPlays {
		out.WeeklyPlaysRemaining = WeeklyWheelPlays
	}
	if out.Badges == nil {
		out.Badges = []string{}
	}
	return out
}
