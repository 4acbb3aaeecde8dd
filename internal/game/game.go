package game

import "fmt"

// ID identifies one of the three mini-games.
type ID string

const (
	Flappy ID = "flappy"
	Maze   ID = "maze"
	Jumper ID = "jumper"
)

// Valid reports whether id names a known mini-game.
func (id ID) Valid() bool {
	switch id {
	case Flappy, Maze, Jumper:
		return true
	}
	return false
}

// CompletionEvent is the single signal a mini-game emits at session
// end. It is ephemeral: never persisted, only fed through the reducer
// and forwarded to the backend.
type CompletionEvent struct {
	GameID ID   `json:"gameId"`
	Score  int  `json:"score"`
	Stars  *int `json:"stars,omitempty"` // maze only, 1..3
}

// StarsOrDefault returns the star rating, defaulting to 1 when the
// game did not report one.
func (e CompletionEvent) StarsOrDefault() int {
	if e.Stars == nil {
		return 1
	}
	return *e.Stars
}

// Validate checks the event shape. Score plausibility is deliberately
// not checked: the engine trusts client-reported scores verbatim.
func (e CompletionEvent) Validate() error {
	if !e.GameID.Valid() {
		return fmt.Errorf("unknown game id %q", e.GameID)
	}
	if e.Stars != nil && (*e.Stars < 1 || *e.Stars > 3) {
		return fmt.Errorf("stars out of range: %d", *e.Stars)
	}
	return nil
}
