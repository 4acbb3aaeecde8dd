package leaderboard

import (
	"time"

	"github.com/google/uuid"

	"playRushAPI/internal/game"
)

// Entry is one user's best score for a game within a week bucket.
type Entry struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	DisplayName string    `json:"displayName" db:"display_name"`
	WeekID      string    `json:"weekId" db:"week_id"`
	GameID      game.ID   `json:"gameId" db:"game_id"`
	Score       int       `json:"score" db:"score"`
	Rank        int       `json:"rank" db:"rank"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// SubmitRequest is the leaderboard submission payload.
type SubmitRequest struct {
	WeekID string  `json:"weekId"`
	GameID game.ID `json:"gameId"`
	Score  int     `json:"score"`
}

// SubmitResponse tells the client whether the score was taken and
// whether it beat the user's previous weekly best.
type SubmitResponse struct {
	Accepted  bool `json:"accepted"`
	IsNewBest bool `json:"isNewBest"`
}

// Board is a week's ranking for one game.
type Board struct {
	WeekID  string   `json:"weekId"`
	GameID  game.ID  `json:"gameId"`
	Entries []*Entry `json:"entries"`
}
