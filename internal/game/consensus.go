package game

import (
	"time"

	"github.com/vovakirdan/coop-snake/internal/core"
)

// decideDirection turns the players' latest intents into this tick's
// heading. The snake only turns when both seated players sent the same
// fresh intent; every other combination keeps the current heading.
func (g *Game) decideDirection(now time.Time) core.Direction {
	current := g.snake.Dir()

	fresh := make([]core.Intent, 0, MaxPlayers)
	for _, id := range g.players {
		rec, ok := g.intents[id]
		if !ok || now.Sub(rec.at) > g.cfg.ConsensusWindow {
			continue
		}
		fresh = append(fresh, rec.intent)
	}

	if len(fresh) != 2 || fresh[0] != fresh[1] {
		return current
	}

	dir, absolute := fresh[0].Direction()
	if !absolute {
		return current
	}
	// Reversal never reaches the collision checks as a new heading.
	if dir == current.Opposite() {
		return current
	}
	return dir
}
