package game

import "github.com/vovakirdan/coop-snake/internal/core"

// spawnFruit places one fruit on a random cell the snake does not cover.
// Other fruits are not avoided. A full field spawns nothing.
func (g *Game) spawnFruit() {
	occupied := make(map[core.Point]struct{}, g.snake.Len()*2)
	for _, c := range g.snake.OccupiedCells() {
		occupied[c] = struct{}{}
	}

	free := make([]core.Point, 0, g.cfg.Bounds.Cells())
	for y := 0; y < g.cfg.Bounds.Height; y++ {
		for x := 0; x < g.cfg.Bounds.Width; x++ {
			p := core.Point{X: x, Y: y}
			if _, taken := occupied[p]; !taken {
				free = append(free, p)
			}
		}
	}

	if len(free) == 0 {
		return
	}

	g.fruits = append(g.fruits, Fruit{
		Pos:   free[g.rng.Intn(len(free))],
		Value: 1 + g.rng.Intn(max(1, g.cfg.MaxFruitValue)),
	})
}

// fruitAt returns the index of the first fruit at p, or -1.
func (g *Game) fruitAt(p core.Point) int {
	for i, f := range g.fruits {
		if f.Pos == p {
			return i
		}
	}
	return -1
}
