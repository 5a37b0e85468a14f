package game

import (
	"slices"

	"github.com/vovakirdan/coop-snake/internal/core"
)

// Snapshot is the per-tick projection of a match sent to observers.
// Uses primitive types only for stable serialization. Consumers must treat
// it as read-only.
type Snapshot struct {
	SnakeCells []core.Point   `json:"snakeCells" msgpack:"snakeCells"`
	Heading    core.Direction `json:"heading" msgpack:"heading"`
	Fruits     []Fruit        `json:"fruits" msgpack:"fruits"`
	Score      int            `json:"score" msgpack:"score"`
	GameOver   bool           `json:"gameOver" msgpack:"gameOver"`
	Tick       uint64         `json:"tick" msgpack:"tick"`
	Width      int            `json:"width" msgpack:"width"`
	Height     int            `json:"height" msgpack:"height"`
}

// Snapshot builds a fresh snapshot of the current state. Slices are copied
// so later ticks never alter a snapshot already handed out.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		SnakeCells: g.snake.OccupiedCells(),
		Heading:    g.snake.Dir(),
		Fruits:     slices.Clone(g.fruits),
		Score:      g.score,
		GameOver:   g.gameOver,
		Tick:       g.tick,
		Width:      g.cfg.Bounds.Width,
		Height:     g.cfg.Bounds.Height,
	}
}

// Head returns the anchor cell of the head segment, the first snake cell.
func (s Snapshot) Head() (core.Point, bool) {
	if len(s.SnakeCells) == 0 {
		return core.Point{}, false
	}
	return s.SnakeCells[0], true
}
