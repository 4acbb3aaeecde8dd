package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"playRushAPI/internal/game"
	"playRushAPI/internal/progress"
)

// ProgressService owns the authoritative user_progress rows. Every
// mutation locks the user's row first (SELECT ... FOR UPDATE) so that
// duplicate completion retries from the same user serialize instead of
// double-counting streaks or milestone coins.
type ProgressService struct {
	db            *pgxpool.Pool
	notifications *NotificationService
	now           func() time.Time
}

func NewProgressService(db *pgxpool.Pool, notifications *NotificationService) *ProgressService {
	return &ProgressService{
		db:            db,
		notifications: notifications,
		now:           time.Now,
	}
}

// CompleteGameResponse is the authoritative answer to a completion
// submit: the points the server computed, whether the streak moved, and
// the full snapshot the client loads wholesale.
type CompleteGameResponse struct {
	PointsEarned          int                   `json:"pointsEarned"`
	StreakJustIncremented bool                  `json:"streakJustIncremented"`
	Profile               progress.UserProgress `json:"profile"`
}

const progressColumns = `
	total_points, current_streak, longest_streak, last_active_date,
	games_completed_today, streak_freeze_available, last_streak_freeze_used,
	total_games_played, badges, coins, weekly_plays_remaining, current_week_id`

// GetProfile settles the streak for today (authoritative
// CHECK_AND_UPDATE_STREAK) and returns the snapshot. Creates a default
// row on first sight.
func (s *ProgressService) GetProfile(ctx context.Context, clerkID string) (*progress.UserProgress, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	userID, err := s.resolveUserID(ctx, tx, clerkID)
	if err != nil {
		return nil, err
	}

	state, err := s.lockProgress(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	next := progress.CheckAndUpdateStreak(state, s.now())
	if next.CurrentStreak == 0 && state.CurrentStreak > 0 {
		streakBreaksTotal.Inc()
	}
	// The streak check only ever clears the freeze flag when it
	// consumes the freeze.
	if state.StreakFreezeAvailable && !next.StreakFreezeAvailable {
		streakFreezesTotal.Inc()
	}

	if err := s.saveProgress(ctx, tx, userID, next); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &next, nil
}

// CompleteGame runs the authoritative reducer for one finished session
// and returns the full post-completion snapshot.
func (s *ProgressService) CompleteGame(ctx context.Context, clerkID string, ev game.CompletionEvent) (*CompleteGameResponse, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	userID, err := s.resolveUserID(ctx, tx, clerkID)
	if err != nil {
		return nil, err
	}

	state, err := s.lockProgress(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	// COMPLETE_GAME is its own entry point: no streak pre-settle here.
	// Day rollover settles on profile fetch, same as the client does on
	// foreground.
	next, res := progress.CompleteGame(state, ev, s.now())
	if err := s.saveProgress(ctx, tx, userID, next); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	gamesCompletedTotal.WithLabelValues(string(ev.GameID)).Inc()
	pointsAwardedTotal.Add(float64(res.PointsEarned))

	if res.StreakJustIncremented && res.MilestoneCoinsAwarded > 0 && s.notifications != nil {
		// Milestone push is best-effort and must never block the
		// completion path.
		go s.notifications.NotifyStreakMilestone(context.Background(), userID, next.CurrentStreak)
	}

	return &CompleteGameResponse{
		PointsEarned:          res.PointsEarned,
		StreakJustIncremented: res.StreakJustIncremented,
		Profile:               next,
	}, nil
}

// UseStreakFreeze applies the manual freeze (rewarded-ad grant), at
// most once per calendar week.
func (s *ProgressService) UseStreakFreeze(ctx context.Context, clerkID string) (*progress.UserProgress, error) {
	return s.mutate(ctx, clerkID, func(state progress.UserProgress) (progress.UserProgress, error) {
		return progress.UseStreakFreeze(state, s.now()), nil
	})
}

// AddBonusPoints credits the double-points ad reward.
func (s *ProgressService) AddBonusPoints(ctx context.Context, clerkID string, points int) (*progress.UserProgress, error) {
	if points < 0 {
		return nil, fmt.Errorf("bonus points must be non-negative")
	}
	return s.mutate(ctx, clerkID, func(state progress.UserProgress) (progress.UserProgress, error) {
		return progress.AddBonusPoints(state, points), nil
	})
}

// AddCoins credits virtual currency.
func (s *ProgressService) AddCoins(ctx context.Context, clerkID string, amount int) (*progress.UserProgress, error) {
	if amount < 0 {
		return nil, fmt.Errorf("coin amount must be non-negative")
	}
	return s.mutate(ctx, clerkID, func(state progress.UserProgress) (progress.UserProgress, error) {
		return progress.AddCoins(state, amount), nil
	})
}

// SpendCoins is the authoritative balance check. A client whose stale
// local guard passed incorrectly gets an explicit rejection here.
func (s *ProgressService) SpendCoins(ctx context.Context, clerkID string, amount int) (*progress.UserProgress, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("spend amount must be positive")
	}
	return s.mutate(ctx, clerkID, func(state progress.UserProgress) (progress.UserProgress, error) {
		return progress.SpendCoins(state, amount)
	})
}

// Reset restores the default record (debug/logout).
func (s *ProgressService) Reset(ctx context.Context, clerkID string) (*progress.UserProgress, error) {
	return s.mutate(ctx, clerkID, func(progress.UserProgress) (progress.UserProgress, error) {
		return progress.Reset(), nil
	})
}

// mutate runs one reducer step under the per-user row lock.
func (s *ProgressService) mutate(ctx context.Context, clerkID string, fn func(progress.UserProgress) (progress.UserProgress, error)) (*progress.UserProgress, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	userID, err := s.resolveUserID(ctx, tx, clerkID)
	if err != nil {
		return nil, err
	}

	state, err := s.lockProgress(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	next, err := fn(state)
	if err != nil {
		return nil, err
	}

	if err := s.saveProgress(ctx, tx, userID, next); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &next, nil
}

func (s *ProgressService) resolveUserID(ctx context.Context, tx pgx.Tx, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("user not found")
		}
		return uuid.Nil, fmt.Errorf("failed to get user: %w", err)
	}
	return userID, nil
}

// lockProgress reads the user's row under FOR UPDATE, inserting the
// default record the first time the user shows up.
func (s *ProgressService) lockProgress(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (progress.UserProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = $1 FOR UPDATE`

	var p progress.UserProgress
	err := tx.QueryRow(ctx, query, userID).Scan(
		&p.TotalPoints,
		&p.CurrentStreak,
		&p.LongestStreak,
		&p.LastActiveDate,
		&p.GamesCompletedToday,
		&p.StreakFreezeAvailable,
		&p.LastStreakFreezeUsed,
		&p.TotalGamesPlayed,
		&p.Badges,
		&p.Coins,
		&p.WeeklyPlaysRemaining,
		&p.CurrentWeekID,
	)
	if err == nil {
		return progress.LoadState(p), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return progress.UserProgress{}, fmt.Errorf("failed to get progress: %w", err)
	}

	p = progress.Default()
	insert := `
	INSERT INTO user_progress (user_id,` + progressColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = tx.Exec(ctx, insert, userID,
		p.TotalPoints, p.CurrentStreak, p.LongestStreak, p.LastActiveDate,
		p.GamesCompletedToday, p.StreakFreezeAvailable, p.LastStreakFreezeUsed,
		p.TotalGamesPlayed, p.Badges, p.Coins, p.WeeklyPlaysRemaining, p.CurrentWeekID,
	)
	if err != nil {
		return progress.UserProgress{}, fmt.Errorf("failed to create progress row: %w", err)
	}
	log.Printf("ProgressService: created default progress for user %s", userID)
	return p, nil
}

func (s *ProgressService) saveProgress(ctx context.Context, tx pgx.Tx, userID uuid.UUID, p progress.UserProgress) error {
	query := `
	UPDATE user_progress SET
		total_points = $2,
		current_streak = $3,
		longest_streak = $4,
		last_active_date = $5,
		games_completed_today = $6,
		streak_freeze_available = $7,
		last_streak_freeze_used = $8,
		total_games_played = $9,
		badges = $10,
		coins = $11,
		weekly_plays_remaining = $12,
		current_week_id = $13,
		updated_at = NOW()
	WHERE user_id = $1
	`
	_, err := tx.Exec(ctx, query, userID,
		p.TotalPoints, p.CurrentStreak, p.LongestStreak, p.LastActiveDate,
		p.GamesCompletedToday, p.StreakFreezeAvailable, p.LastStreakFreezeUsed,
		p.TotalGamesPlayed, p.Badges, p.Coins, p.WeeklyPlaysRemaining, p.CurrentWeekID,
	)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}
