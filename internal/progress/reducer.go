package progress

import (
	"fmt"
	"time"

	"playRushAPI/internal/datetime"
	"playRushAPI/internal/game"
)

// CompletionResult is what CompleteGame hands back alongside the new
// state. PointsEarned feeds the double-points rewarded-ad flow and the
// HTTP response; StreakJustIncremented feeds ad gating and milestone
// pushes.
type CompletionResult struct {
	PointsEarned           int  `json:"pointsEarned"`
	StreakJustIncremented  bool `json:"streakJustIncremented"`
	MilestoneCoinsAwarded  int  `json:"-"`
	WeeklyQuotaWasRefilled bool `json:"-"`
}

// LoadState replaces the whole record with a snapshot. Server snapshots
// always win over local optimistic guesses; there is no field-level
// merge. Applying the same snapshot twice yields identical state.
func LoadState(snapshot UserProgress) UserProgress {
	return snapshot.normalized()
}

// CheckAndUpdateStreak settles yesterday's streak outcome. It runs once
// per app foreground (client) and on every profile fetch (server),
// before any game interaction. The first matching rule applies; the
// relationship of lastActiveDate to today/yesterday plus the daily
// counter fully determines the transition.
func CheckAndUpdateStreak(state UserProgress, now time.Time) UserProgress {
	today := datetime.Today(now)
	yesterday := datetime.Yesterday(now)

	// Already settled today.
	if state.LastActiveDate == today {
		return state
	}

	// Device clock rolled backwards: never mutate on clock anomalies.
	if state.LastActiveDate != "" && state.LastActiveDate > today {
		return state
	}

	next := state.Clone()

	// First-ever launch.
	if state.LastActiveDate == "" {
		next.LastActiveDate = today
		next.GamesCompletedToday = 0
		return next
	}

	// Streak was secured yesterday; just roll the daily counter over.
	if state.LastActiveDate == yesterday && state.GamesCompletedToday >= DailyGoal {
		next.GamesCompletedToday = 0
		next.LastActiveDate = today
		return next
	}

	// Exactly one missed day: a freeze can still save the streak.
	if state.LastActiveDate == yesterday && state.GamesCompletedToday < DailyGoal {
		if state.StreakFreezeAvailable && state.CurrentStreak > 0 {
			next.StreakFreezeAvailable = false
			next.LastStreakFreezeUsed = datetime.WeekID(now)
			next.GamesCompletedToday = 0
			next.LastActiveDate = today
			return next
		}
		next.CurrentStreak = 0
		next.GamesCompletedToday = 0
		next.LastActiveDate = today
		return next
	}

	// Two or more missed days: the streak breaks regardless of any
	// freeze, which only ever covers a single gap day.
	next.CurrentStreak = 0
	next.GamesCompletedToday = 0
	next.LastActiveDate = today
	return next
}

// CompleteGame applies one finished session. Safe against duplicate
// dispatch: the daily counter saturates at the goal and the streak can
// only increment when lastActiveDate has not been stamped today yet.
func CompleteGame(state UserProgress, ev game.CompletionEvent, now time.Time) (UserProgress, CompletionResult) {
	today := datetime.Today(now)
	next := state.Clone()
	res := CompletionResult{PointsEarned: CalculatePoints(ev, state.CurrentStreak)}

	next.TotalPoints += res.PointsEarned
	next.TotalGamesPlayed++

	alreadyAtGoal := state.GamesCompletedToday >= DailyGoal
	if !alreadyAtGoal {
		next.GamesCompletedToday = state.GamesCompletedToday + 1
	}

	// Reaching the daily goal for the first time on a fresh day is the
	// one and only place the streak grows.
	if !alreadyAtGoal && next.GamesCompletedToday == DailyGoal {
		if state.LastActiveDate != today {
			next.CurrentStreak = state.CurrentStreak + 1
			next.LastActiveDate = today
			next.Badges = badgesForStreak(next.Badges, next.CurrentStreak)
			if next.CurrentStreak > next.LongestStreak {
				next.LongestStreak = next.CurrentStreak
			}
			res.StreakJustIncremented = true
		} else {
			// Goal re-reached on a day the streak already counted.
			next.LastActiveDate = today
		}
	}

	next.Coins += CoinsPerGame
	if res.StreakJustIncremented && isMilestone(next.CurrentStreak) {
		next.Coins += CoinsPerMilestone
		res.MilestoneCoinsAwarded = CoinsPerMilestone
	}

	// Weekly wheel quota: refill exactly once per week boundary, then
	// spend one play for this completion.
	if !datetime.SameWeek(next.CurrentWeekID, now) {
		next.WeeklyPlaysRemaining = WeeklyWheelPlays
		next.CurrentWeekID = datetime.WeekID(now)
		res.WeeklyQuotaWasRefilled = true
	}
	if next.WeeklyPlaysRemaining > 0 {
		next.WeeklyPlaysRemaining--
	}

	return next, res
}

// UseStreakFreeze grants/consumes the manual freeze (rewarded-ad flow).
// At most one freeze per calendar week.
func UseStreakFreeze(state UserProgress, now time.Time) UserProgress {
	week := datetime.WeekID(now)
	if state.LastStreakFreezeUsed == week {
		return state
	}
	next := state.Clone()
	next.StreakFreezeAvailable = false
	next.LastStreakFreezeUsed = week
	return next
}

// AddBonusPoints credits extra points, used by the double-points
// rewarded-ad flow. Callers pass the amount already awarded for the
// session, doubling the net gain.
func AddBonusPoints(state UserProgress, points int) UserProgress {
	if points <= 0 {
		return state
	}
	next := state.Clone()
	next.TotalPoints += points
	return next
}

// AddCoins credits virtual currency unconditionally.
func AddCoins(state UserProgress, amount int) UserProgress {
	if amount <= 0 {
		return state
	}
	next := state.Clone()
	next.Coins += amount
	return next
}

// ErrInsufficientCoins is returned by SpendCoins when the balance would
// go negative. The state is left untouched; the spend is rejected, not
// clamped.
var ErrInsufficientCoins = fmt.Errorf("insufficient coins")

// SpendCoins debits virtual currency. The local check is a guard for
// UI responsiveness; the server runs the same check authoritatively.
func SpendCoins(state UserProgress, amount int) (UserProgress, error) {
	if amount <= 0 {
		return state, nil
	}
	if state.Coins < amount {
		return state, ErrInsufficientCoins
	}
	next := state.Clone()
	next.Coins -= amount
	return next, nil
}

// Reset returns the default record (debug/logout).
func Reset() UserProgress {
	return Default()
}

func badgesForStreak(current []string, streak int) []string {
	updated := append([]string(nil), current...)
	for _, m := range StreakMilestones {
		badge := fmt.Sprintf("streak_%d", m)
		if streak >= m && !contains(updated, badge) {
			updated = append(updated, badge)
		}
	}
	return updated
}

func isMilestone(streak int) bool {
	for _, m := range StreakMilestones {
		if streak == m {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
