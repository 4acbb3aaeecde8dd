package progress

import (
	"testing"

	"playRushAPI/internal/game"
)

func stars(n int) *int { return &n }

func TestCalculatePoints(t *testing.T) {
	tests := []struct {
		name   string
		ev     game.CompletionEvent
		streak int
		want   int
	}{
		{"flappy zero score", game.CompletionEvent{GameID: game.Flappy, Score: 0}, 0, 0},
		{"flappy negative score", game.CompletionEvent{GameID: game.Flappy, Score: -3}, 0, 0},
		{"flappy small score", game.CompletionEvent{GameID: game.Flappy, Score: 5}, 0, 50},
		{"flappy capped", game.CompletionEvent{GameID: game.Flappy, Score: 60}, 0, 500},
		{"maze three stars no tier", game.CompletionEvent{GameID: game.Maze, Stars: stars(3)}, 6, 200},
		{"maze three stars tier starts at 7", game.CompletionEvent{GameID: game.Maze, Stars: stars(3)}, 10, 220},
		{"maze three stars tier 7", game.CompletionEvent{GameID: game.Maze, Stars: stars(3)}, 7, 220},
		{"maze two stars", game.CompletionEvent{GameID: game.Maze, Stars: stars(2)}, 0, 100},
		{"maze stars default to one", game.CompletionEvent{GameID: game.Maze}, 0, 50},
		{"jumper zero score", game.CompletionEvent{GameID: game.Jumper, Score: 0}, 5, 0},
		// Cap applies to the base, the multiplier after: min(200*5,500)*1.5.
		{"jumper capped then multiplied", game.CompletionEvent{GameID: game.Jumper, Score: 200}, 30, 750},
		{"jumper tier 14", game.CompletionEvent{GameID: game.Jumper, Score: 10}, 14, 60},
		{"unknown game", game.CompletionEvent{GameID: "pinball", Score: 99}, 0, 0},
	}

	for _, tt := range tests {
		if got := CalculatePoints(tt.ev, tt.streak); got != tt.want {
			t.Errorf("%s: CalculatePoints = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestStreakMultiplierTiers(t *testing.T) {
	tiers := map[int]float64{0: 1.0, 6: 1.0, 7: 1.1, 13: 1.1, 14: 1.2, 29: 1.2, 30: 1.5, 100: 1.5}
	for streak, want := range tiers {
		if got := streakMultiplier(streak); got != want {
			t.Errorf("streakMultiplier(%d) = %v, want %v", streak, got, want)
		}
	}
}

func TestHalfUpRounding(t *testing.T) {
	// maze 1-star base 50 at tier 7: 50*1.1 = 55.000 exactly; flappy
	// score 5 at tier 7: 50*1.1 = 55 as well. Use jumper 9 at tier 7:
	// 45*1.1 = 49.5 rounds up to 50.
	got := CalculatePoints(game.CompletionEvent{GameID: game.Jumper, Score: 9}, 7)
	if got != 50 {
		t.Errorf("expected 49.5 to round half-up to 50, got %d", got)
	}
}
