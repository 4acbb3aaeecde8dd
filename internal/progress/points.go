package progress

import (
	"math"

	"playRushAPI/internal/game"
)

// Per-game base score parameters.
const (
	flappyPointsPerPipe = 10
	jumperPointsPerUnit = 5
	basePointsCap       = 500

	mazeStars3Points = 200
	mazeStars2Points = 100
	mazeStars1Points = 50
)

// CalculatePoints computes the reward for one finished session given
// the streak the player carried into it.
//
// The cap applies to the base score, the streak multiplier applies
// after it, and the result rounds half-up. The UI shows this number as
// a preview before the authoritative update lands, so client and server
// must agree on it bit for bit.
func CalculatePoints(ev game.CompletionEvent, currentStreak int) int {
	var base int
	switch ev.GameID {
	case game.Flappy:
		if ev.Score <= 0 {
			return 0
		}
		base = capPoints(ev.Score * flappyPointsPerPipe)
	case game.Maze:
		switch ev.StarsOrDefault() {
		case 3:
			base = mazeStars3Points
		case 2:
			base = mazeStars2Points
		default:
			base = mazeStars1Points
		}
	case game.Jumper:
		if ev.Score <= 0 {
			return 0
		}
		base = capPoints(ev.Score * jumperPointsPerUnit)
	default:
		return 0
	}

	return int(math.Round(float64(base) * streakMultiplier(currentStreak)))
}

// streakMultiplier returns the reward multiplier for the streak tier.
func streakMultiplier(streak int) float64 {
	switch {
	case streak >= 30:
		return 1.5
	case streak >= 14:
		return 1.2
	case streak >= 7:
		return 1.1
	default:
		return 1.0
	}
}

func capPoints(points int) int {
	if points > basePointsCap {
		return basePointsCap
	}
	return points
}
