package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"playRushAPI/internal/datetime"
	"playRushAPI/internal/game"
	"playRushAPI/internal/leaderboard"
)

// LeaderboardService keeps per-week best scores. It is a peer system to
// the progression engine: the engine only consumes isNewBest for
// display.
type LeaderboardService struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewLeaderboardService(db *pgxpool.Pool) *LeaderboardService {
	return &LeaderboardService{db: db, now: time.Now}
}

// Submit records a weekly score. Submissions for any week other than
// the current one are refused (accepted=false), not errored: stale
// clients retrying across a week boundary are normal.
func (s *LeaderboardService) Submit(ctx context.Context, clerkID string, req *leaderboard.SubmitRequest) (*leaderboard.SubmitResponse, error) {
	if !req.GameID.Valid() {
		return nil, fmt.Errorf("unknown game id %q", req.GameID)
	}
	if req.WeekID != datetime.WeekID(s.now()) {
		return &leaderboard.SubmitResponse{Accepted: false, IsNewBest: false}, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var userID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var previousBest int
	isNewBest := false
	err = tx.QueryRow(ctx, `
		SELECT score FROM weekly_scores
		WHERE user_id = $1 AND week_id = $2 AND game_id = $3
		FOR UPDATE
	`, userID, req.WeekID, req.GameID).Scan(&previousBest)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		isNewBest = true
		_, err = tx.Exec(ctx, `
			INSERT INTO weekly_scores (id, user_id, week_id, game_id, score, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
		`, uuid.New(), userID, req.WeekID, req.GameID, req.Score)
		if err != nil {
			return nil, fmt.Errorf("failed to insert score: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read previous best: %w", err)
	case req.Score > previousBest:
		isNewBest = true
		_, err = tx.Exec(ctx, `
			UPDATE weekly_scores SET score = $4, updated_at = NOW()
			WHERE user_id = $1 AND week_id = $2 AND game_id = $3
		`, userID, req.WeekID, req.GameID, req.Score)
		if err != nil {
			return nil, fmt.Errorf("failed to update score: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &leaderboard.SubmitResponse{Accepted: true, IsNewBest: isNewBest}, nil
}

// GetBoard returns the top scores for one game in one week.
func (s *LeaderboardService) GetBoard(ctx context.Context, weekID string, gameID game.ID, limit int) (*leaderboard.Board, error) {
	if !gameID.Valid() {
		return nil, fmt.Errorf("unknown game id %q", gameID)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
	SELECT
		ws.id,
		ws.user_id,
		u.username,
		ws.week_id,
		ws.game_id,
		ws.score,
		RANK() OVER (ORDER BY ws.score DESC) AS rank,
		ws.updated_at
	FROM weekly_scores ws
	JOIN users u ON u.id = ws.user_id
	WHERE ws.week_id = $1 AND ws.game_id = $2
	ORDER BY ws.score DESC
	LIMIT $3
	`

	rows, err := s.db.Query(ctx, query, weekID, gameID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	board := &leaderboard.Board{WeekID: weekID, GameID: gameID, Entries: []*leaderboard.Entry{}}
	for rows.Next() {
		var e leaderboard.Entry
		err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.DisplayName,
			&e.WeekID,
			&e.GameID,
			&e.Score,
			&e.Rank,
			&e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		board.Entries = append(board.Entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return board, nil
}
