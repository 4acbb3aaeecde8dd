package progress

import (
	"reflect"
	"testing"
	"time"

	"playRushAPI/internal/datetime"
	"playRushAPI/internal/game"
)

var (
	// Wednesday, September 11/12/13 2024.
	day1 = time.Date(2024, time.September, 11, 10, 0, 0, 0, time.UTC)
	day2 = time.Date(2024, time.September, 12, 10, 0, 0, 0, time.UTC)
	day3 = time.Date(2024, time.September, 13, 10, 0, 0, 0, time.UTC)
	day4 = time.Date(2024, time.September, 14, 10, 0, 0, 0, time.UTC)
)

func flappyEvent(score int) game.CompletionEvent {
	return game.CompletionEvent{GameID: game.Flappy, Score: score}
}

func TestLoadStateIdempotent(t *testing.T) {
	snap := Default()
	snap.TotalPoints = 1234
	snap.CurrentStreak = 9
	snap.LongestStreak = 12
	snap.Badges = []string{"streak_7"}

	once := LoadState(snap)
	twice := LoadState(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("LoadState not idempotent: %+v vs %+v", once, twice)
	}
}

func TestLoadStateFillsDefaultsFromPartialJSON(t *testing.T) {
	p, err := FromJSON([]byte(`{"totalPoints": 100, "currentStreak": 4}`))
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if p.TotalPoints != 100 || p.CurrentStreak != 4 {
		t.Errorf("explicit fields lost: %+v", p)
	}
	if !p.StreakFreezeAvailable {
		t.Error("missing streakFreezeAvailable should default to true")
	}
	if p.Coins != 3 || p.WeeklyPlaysRemaining != WeeklyWheelPlays {
		t.Errorf("missing economy fields should default, got coins=%d plays=%d", p.Coins, p.WeeklyPlaysRemaining)
	}
	if p.LongestStreak != 4 {
		t.Errorf("longest streak should be lifted to current, got %d", p.LongestStreak)
	}
}

func TestFromJSONCorruptionFallsBackToDefaults(t *testing.T) {
	p, err := FromJSON([]byte(`{"totalPoints": garbage`))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !reflect.DeepEqual(p, Default()) {
		t.Errorf("corrupt payload should yield defaults, got %+v", p)
	}
}

func TestCheckStreakFirstLaunch(t *testing.T) {
	next := CheckAndUpdateStreak(Default(), day1)
	if next.LastActiveDate != datetime.Today(day1) {
		t.Errorf("lastActiveDate = %q, want today", next.LastActiveDate)
	}
	if next.GamesCompletedToday != 0 || next.CurrentStreak != 0 {
		t.Errorf("first launch should not touch counters: %+v", next)
	}
}

func TestCheckStreakNoopSameDay(t *testing.T) {
	state := Default()
	state.LastActiveDate = datetime.Today(day1)
	state.GamesCompletedToday = 1
	state.CurrentStreak = 3

	next := CheckAndUpdateStreak(state, day1)
	if !reflect.DeepEqual(state, next) {
		t.Errorf("same-day check must be a no-op: %+v", next)
	}
}

func TestCheckStreakClockRolledBack(t *testing.T) {
	state := Default()
	state.LastActiveDate = datetime.Today(day3)
	state.CurrentStreak = 6

	next := CheckAndUpdateStreak(state, day1)
	if !reflect.DeepEqual(state, next) {
		t.Errorf("clock anomaly must never mutate state: %+v", next)
	}
}

func TestCheckStreakSecuredYesterdayRollsCounter(t *testing.T) {
	state := Default()
	state.LastActiveDate = datetime.Today(day1)
	state.GamesCompletedToday = 2
	state.CurrentStreak = 5

	next := CheckAndUpdateStreak(state, day2)
	if next.CurrentStreak != 5 {
		t.Errorf("streak should be preserved, got %d", next.CurrentStreak)
	}
	if next.GamesCompletedToday != 0 || next.LastActiveDate != datetime.Today(day2) {
		t.Errorf("daily counter should roll: %+v", next)
	}
}

func TestCheckStreakFreezeConsumption(t *testing.T) {
	state := Default()
	state.CurrentStreak = 5
	state.StreakFreezeAvailable = true
	state.LastActiveDate = datetime.Today(day1)
	state.GamesCompletedToday = 1

	next := CheckAndUpdateStreak(state, day2)
	if next.CurrentStreak != 5 {
		t.Errorf("freeze should preserve streak, got %d", next.CurrentStreak)
	}
	if next.StreakFreezeAvailable {
		t.Error("freeze should be consumed")
	}
	if next.LastStreakFreezeUsed != datetime.WeekID(day2) {
		t.Errorf("freeze week = %q, want %q", next.LastStreakFreezeUsed, datetime.WeekID(day2))
	}
}

func TestCheckStreakBreaksWithoutFreeze(t *testing.T) {
	state := Default()
	state.CurrentStreak = 5
	state.StreakFreezeAvailable = false
	state.LastActiveDate = datetime.Today(day1)
	state.GamesCompletedToday = 1

	next := CheckAndUpdateStreak(state, day2)
	if next.CurrentStreak != 0 {
		t.Errorf("streak should break, got %d", next.CurrentStreak)
	}
}

func TestCheckStreakFreezeNotWastedOnZeroStreak(t *testing.T) {
	state := Default()
	state.CurrentStreak = 0
	state.StreakFreezeAvailable = true
	state.LastActiveDate = datetime.Today(day1)
	state.GamesCompletedToday = 1

	next := CheckAndUpdateStreak(state, day2)
	if !next.StreakFreezeAvailable {
		t.Error("freeze must not be spent when there is no streak to save")
	}
}

func TestCheckStreakLongGapBreaksRegardlessOfFreeze(t *testing.T) {
	state := Default()
	state.CurrentStreak = 10
	state.StreakFreezeAvailable = true
	state.LastActiveDate = datetime.Today(day1)
	state.GamesCompletedToday = 2

	next := CheckAndUpdateStreak(state, day4) // 3 days later
	if next.CurrentStreak != 0 {
		t.Errorf("2+ day gap must break the streak, got %d", next.CurrentStreak)
	}
	if !next.StreakFreezeAvailable {
		t.Error("freeze only covers a single missed day, must not be consumed here")
	}
}

func TestCompleteGameEndToEndFreshUser(t *testing.T) {
	// Fresh record, completions only: the streak increment requires
	// lastActiveDate to not be stamped today yet.
	state := Default()
	startCoins := state.Coins

	// First game: flappy, score 5 → 50 points, no streak movement.
	state, res := CompleteGame(state, flappyEvent(5), day1)
	if res.PointsEarned != 50 {
		t.Errorf("first game points = %d, want 50", res.PointsEarned)
	}
	if res.StreakJustIncremented {
		t.Error("one game must not complete the daily goal")
	}
	if state.GamesCompletedToday != 1 || state.CurrentStreak != 0 {
		t.Errorf("after first game: %+v", state)
	}

	// Second game: maze, 2 stars → 100 points, streak becomes 1.
	state, res = CompleteGame(state, game.CompletionEvent{GameID: game.Maze, Stars: stars(2)}, day1)
	if res.PointsEarned != 100 {
		t.Errorf("second game points = %d, want 100", res.PointsEarned)
	}
	if !res.StreakJustIncremented || state.CurrentStreak != 1 {
		t.Errorf("second game should secure the day: %+v", state)
	}
	if state.TotalPoints != 150 || state.TotalGamesPlayed != 2 {
		t.Errorf("totals wrong: %+v", state)
	}
	if got := state.Coins - startCoins; got != 2 {
		t.Errorf("coins earned = %d, want 2 (1 per game, streak 1 is no milestone)", got)
	}
	if state.LongestStreak != 1 {
		t.Errorf("longest streak = %d, want 1", state.LongestStreak)
	}
}

func TestCompleteGameDailyCounterSaturates(t *testing.T) {
	state := Default()
	state, _ = CompleteGame(state, flappyEvent(3), day1)
	state, _ = CompleteGame(state, flappyEvent(3), day1)
	streakAfterGoal := state.CurrentStreak

	// Third and fourth games on the same day: points and coins still
	// accrue, but the counter pins at the goal and the streak holds.
	state, res := CompleteGame(state, flappyEvent(3), day1)
	if res.StreakJustIncremented {
		t.Error("streak must not increment twice in one day")
	}
	if state.GamesCompletedToday != DailyGoal {
		t.Errorf("counter = %d, want pinned at %d", state.GamesCompletedToday, DailyGoal)
	}
	if state.CurrentStreak != streakAfterGoal {
		t.Errorf("streak moved on extra game: %d", state.CurrentStreak)
	}
	if state.TotalGamesPlayed != 3 {
		t.Errorf("lifetime count must still increment, got %d", state.TotalGamesPlayed)
	}
}

func TestCompleteGameMilestoneBadgeAndCoins(t *testing.T) {
	state := Default()
	state.CurrentStreak = 6
	state.LongestStreak = 6
	state.GamesCompletedToday = 1
	state.LastActiveDate = "" // fresh day, counter carried to 1 already
	startCoins := state.Coins

	state, res := CompleteGame(state, flappyEvent(4), day1)
	if state.CurrentStreak != 7 {
		t.Fatalf("streak = %d, want 7", state.CurrentStreak)
	}
	if !state.HasBadge("streak_7") {
		t.Error("streak_7 badge should be earned")
	}
	if got := state.Coins - startCoins; got != CoinsPerGame+CoinsPerMilestone {
		t.Errorf("coins earned = %d, want %d", got, CoinsPerGame+CoinsPerMilestone)
	}
	if res.MilestoneCoinsAwarded != CoinsPerMilestone {
		t.Errorf("milestone coins = %d", res.MilestoneCoinsAwarded)
	}

	// Replaying the goal on the same day must not re-award anything.
	state, res = CompleteGame(state, flappyEvent(4), day1)
	if res.StreakJustIncremented || res.MilestoneCoinsAwarded != 0 {
		t.Error("duplicate completion must not re-grant milestone rewards")
	}
}

// First submit of a new day, no foreground check in between: the stale
// counter from yesterday still counts toward today's goal, the streak
// increments, and the freeze is left alone.
func TestCompleteGameNewDayWithoutPriorCheck(t *testing.T) {
	state := Default()
	state.CurrentStreak = 5
	state.LongestStreak = 5
	state.StreakFreezeAvailable = true
	state.LastActiveDate = datetime.Today(day1)
	state.GamesCompletedToday = 1

	state, res := CompleteGame(state, flappyEvent(3), day2)
	if !res.StreakJustIncremented || state.CurrentStreak != 6 {
		t.Errorf("completion on a fresh day should increment the streak: %+v", state)
	}
	if !state.StreakFreezeAvailable {
		t.Error("freeze must not be consumed by a completion")
	}
	if state.LastActiveDate != datetime.Today(day2) {
		t.Errorf("lastActiveDate = %q, want today", state.LastActiveDate)
	}
}

func TestLongestStreakHighWaterMark(t *testing.T) {
	state := Default()
	state.CurrentStreak = 3
	state.LongestStreak = 10
	state.GamesCompletedToday = 1

	state, _ = CompleteGame(state, flappyEvent(2), day1)
	if state.CurrentStreak != 4 {
		t.Fatalf("streak = %d, want 4", state.CurrentStreak)
	}
	if state.LongestStreak != 10 {
		t.Errorf("longest streak must not regress, got %d", state.LongestStreak)
	}
	if state.LongestStreak < state.CurrentStreak {
		t.Error("longestStreak >= currentStreak violated")
	}
}

func TestWeeklyQuotaResetsOncePerWeekBoundary(t *testing.T) {
	state := Default()
	state.CurrentWeekID = "2024-W36"
	state.WeeklyPlaysRemaining = 0

	// First completion of the new week refills to 5, then spends 1.
	state, res := CompleteGame(state, flappyEvent(1), day2)
	if !res.WeeklyQuotaWasRefilled {
		t.Error("expected a quota refill on the week boundary")
	}
	if state.CurrentWeekID != datetime.WeekID(day2) {
		t.Errorf("week id = %q, want %q", state.CurrentWeekID, datetime.WeekID(day2))
	}
	if state.WeeklyPlaysRemaining != WeeklyWheelPlays-1 {
		t.Errorf("plays remaining = %d, want %d", state.WeeklyPlaysRemaining, WeeklyWheelPlays-1)
	}

	// Same week again: no refill, plain decrement.
	state, res = CompleteGame(state, flappyEvent(1), day3)
	if res.WeeklyQuotaWasRefilled {
		t.Error("quota must reset exactly once per week")
	}
	if state.WeeklyPlaysRemaining != WeeklyWheelPlays-2 {
		t.Errorf("plays remaining = %d, want %d", state.WeeklyPlaysRemaining, WeeklyWheelPlays-2)
	}
}

func TestWeeklyQuotaNeverGoesNegative(t *testing.T) {
	state := Default()
	state.CurrentWeekID = datetime.WeekID(day1)
	state.WeeklyPlaysRemaining = 0

	state, _ = CompleteGame(state, flappyEvent(1), day1)
	if state.WeeklyPlaysRemaining != 0 {
		t.Errorf("plays remaining = %d, want 0", state.WeeklyPlaysRemaining)
	}
}

func TestSpendCoinsRejectsUnderflow(t *testing.T) {
	state := Default()
	state.Coins = 2

	next, err := SpendCoins(state, 3)
	if err != ErrInsufficientCoins {
		t.Fatalf("err = %v, want ErrInsufficientCoins", err)
	}
	if !reflect.DeepEqual(state, next) {
		t.Error("rejected spend must leave state unchanged")
	}

	next, err = SpendCoins(state, 2)
	if err != nil {
		t.Fatalf("SpendCoins: %v", err)
	}
	if next.Coins != 0 {
		t.Errorf("coins = %d, want 0", next.Coins)
	}
}

func TestAddCoinsAndBonusPoints(t *testing.T) {
	state := Default()
	state = AddCoins(state, 10)
	if state.Coins != 13 {
		t.Errorf("coins = %d, want 13", state.Coins)
	}
	state = AddBonusPoints(state, 220)
	if state.TotalPoints != 220 {
		t.Errorf("points = %d, want 220", state.TotalPoints)
	}
	// Non-positive amounts are ignored.
	if got := AddCoins(state, -5); got.Coins != state.Coins {
		t.Error("negative coin grant must be a no-op")
	}
}

func TestUseStreakFreezeOncePerWeek(t *testing.T) {
	state := Default()
	state = UseStreakFreeze(state, day1)
	if state.StreakFreezeAvailable {
		t.Error("freeze should be marked used")
	}
	if state.LastStreakFreezeUsed != datetime.WeekID(day1) {
		t.Errorf("freeze week = %q", state.LastStreakFreezeUsed)
	}

	// Second use within the same week is a no-op even if a grant
	// flipped availability back on.
	state.StreakFreezeAvailable = true
	next := UseStreakFreeze(state, day2)
	if !reflect.DeepEqual(state, next) {
		t.Error("freeze reuse within one week must be a no-op")
	}
}

func TestResetReturnsDefaults(t *testing.T) {
	if !reflect.DeepEqual(Reset(), Default()) {
		t.Error("Reset should return the default record")
	}
}

// Streak monotonicity: without a qualifying gap, no sequence of checks
// and completions ever lowers the streak, and longest tracks the max.
func TestStreakMonotonicAcrossConsecutiveDays(t *testing.T) {
	state := Default()
	prevStreak := 0

	days := []time.Time{day1, day2, day3, day4}
	for _, day := range days {
		state = CheckAndUpdateStreak(state, day)
		if state.CurrentStreak < prevStreak {
			t.Fatalf("streak decreased on %s check: %d -> %d", datetime.Today(day), prevStreak, state.CurrentStreak)
		}
		prevStreak = state.CurrentStreak
		for i := 0; i < DailyGoal; i++ {
			state, _ = CompleteGame(state, flappyEvent(2), day)
			if state.CurrentStreak < prevStreak {
				t.Fatalf("streak decreased mid-day: %d -> %d", prevStreak, state.CurrentStreak)
			}
			prevStreak = state.CurrentStreak
			if state.LongestStreak < state.CurrentStreak {
				t.Fatal("longestStreak fell below currentStreak")
			}
			if state.Coins < 0 {
				t.Fatal("coins went negative")
			}
		}
	}
}
