package game

import (
	"reflect"
	"testing"
	"time"

	"github.com/vovakirdan/coop-snake/internal/core"
	"github.com/vovakirdan/coop-snake/internal/snake"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// newTestGame returns a seated two-player game on a 20x20 field with no
// fruits, so tests control every pickup.
func newTestGame(t *testing.T) (*Game, *fakeClock) {
	t.Helper()

	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.Now = clk.Now

	g := New(cfg)
	g.fruits = nil
	if !g.AddPlayer("p1") || !g.AddPlayer("p2") {
		t.Fatal("AddPlayer failed on an empty game")
	}
	return g, clk
}

func send(g *Game, intent core.Intent, players ...PlayerID) {
	for _, p := range players {
		g.RecordIntent(p, intent)
	}
}

func TestInitialState(t *testing.T) {
	g, _ := newTestGame(t)

	if g.Heading() != core.Right {
		t.Errorf("initial heading = %v, expected right", g.Heading())
	}
	if g.snake.Len() != 4 {
		t.Errorf("initial length = %d, expected 4", g.snake.Len())
	}
	if g.snake.Head().Pos != (core.Point{X: 10, Y: 10}) {
		t.Errorf("initial head = %v, expected (10,10)", g.snake.Head().Pos)
	}
	if g.TickCount() != 0 || g.Score() != 0 || g.IsGameOver() {
		t.Error("new game should start at tick 0, score 0, running")
	}
}

func TestNewSpawnsInitialFruits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 7
	g := New(cfg)

	if len(g.fruits) != 3 {
		t.Fatalf("expected 3 initial fruits, got %d", len(g.fruits))
	}
	for _, f := range g.fruits {
		if g.snake.Contains(f.Pos) {
			t.Errorf("fruit spawned on snake at %v", f.Pos)
		}
		if f.Value < 1 || f.Value > 5 {
			t.Errorf("fruit value %d outside [1,5]", f.Value)
		}
	}
}

func TestConsensusAppliesMatchingIntents(t *testing.T) {
	g, _ := newTestGame(t)

	send(g, core.Toward(core.Up), "p1", "p2")
	snap := g.Tick()

	if snap.Heading != core.Up {
		t.Errorf("heading = %v, expected up", snap.Heading)
	}
	if head, _ := snap.Head(); head != (core.Point{X: 10, Y: 9}) {
		t.Errorf("head = %v, expected (10,9)", head)
	}
	if snap.GameOver {
		t.Error("turning up from the start should be safe")
	}
}

func TestConsensusTable(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(g *Game, clk *fakeClock)
		expected core.Direction
	}{
		{
			name: "disagreement continues straight",
			setup: func(g *Game, _ *fakeClock) {
				g.RecordIntent("p1", core.Toward(core.Up))
				g.RecordIntent("p2", core.Toward(core.Down))
			},
			expected: core.Right,
		},
		{
			name: "one stale intent continues straight",
			setup: func(g *Game, clk *fakeClock) {
				g.RecordIntent("p1", core.Toward(core.Up))
				clk.Advance(200 * time.Millisecond)
				g.RecordIntent("p2", core.Toward(core.Up))
			},
			expected: core.Right,
		},
		{
			name: "both stale continues straight",
			setup: func(g *Game, clk *fakeClock) {
				send(g, core.Toward(core.Up), "p1", "p2")
				clk.Advance(121 * time.Millisecond)
			},
			expected: core.Right,
		},
		{
			name: "intent exactly at the window edge is fresh",
			setup: func(g *Game, clk *fakeClock) {
				send(g, core.Toward(core.Up), "p1", "p2")
				clk.Advance(120 * time.Millisecond)
			},
			expected: core.Up,
		},
		{
			name: "only one player sent anything",
			setup: func(g *Game, _ *fakeClock) {
				g.RecordIntent("p1", core.Toward(core.Up))
			},
			expected: core.Right,
		},
		{
			name: "agreed straight keeps heading",
			setup: func(g *Game, _ *fakeClock) {
				send(g, core.Straight, "p1", "p2")
			},
			expected: core.Right,
		},
		{
			name: "agreed reversal is rejected",
			setup: func(g *Game, _ *fakeClock) {
				send(g, core.Toward(core.Left), "p1", "p2")
			},
			expected: core.Right,
		},
		{
			name: "last write wins per player",
			setup: func(g *Game, _ *fakeClock) {
				g.RecordIntent("p1", core.Toward(core.Down))
				g.RecordIntent("p1", core.Toward(core.Up))
				g.RecordIntent("p2", core.Toward(core.Up))
			},
			expected: core.Up,
		},
		{
			name: "agreement on current heading keeps it",
			setup: func(g *Game, _ *fakeClock) {
				send(g, core.Toward(core.Right), "p1", "p2")
			},
			expected: core.Right,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, clk := newTestGame(t)
			tc.setup(g, clk)

			snap := g.Tick()
			if snap.Heading != tc.expected {
				t.Errorf("heading = %v, expected %v", snap.Heading, tc.expected)
			}
			if snap.GameOver {
				t.Error("unexpected game over")
			}
		})
	}
}

func TestSinglePlayerNeverTurns(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	cfg := DefaultConfig()
	cfg.Seed = 1
	cfg.Now = clk.Now
	g := New(cfg)
	g.fruits = nil
	g.AddPlayer("solo")

	for range 3 {
		g.RecordIntent("solo", core.Toward(core.Up))
		if snap := g.Tick(); snap.Heading != core.Right {
			t.Fatalf("solo player turned the snake to %v", snap.Heading)
		}
	}
}

func TestUnseatedIntentIgnored(t *testing.T) {
	g, _ := newTestGame(t)

	g.RecordIntent("p1", core.Toward(core.Up))
	g.RecordIntent("stranger", core.Toward(core.Up))

	if _, ok := g.intents["stranger"]; ok {
		t.Error("intent from unseated player was recorded")
	}
	if snap := g.Tick(); snap.Heading != core.Right {
		t.Errorf("heading = %v, expected right", snap.Heading)
	}
}

func TestStraightLineTicks(t *testing.T) {
	g, _ := newTestGame(t)

	for i := 1; i <= 3; i++ {
		send(g, core.Toward(core.Right), "p1", "p2")
		snap := g.Tick()
		if snap.Tick != uint64(i) {
			t.Errorf("tick %d: counter = %d", i, snap.Tick)
		}
	}

	if head := g.snake.Head().Pos; head != (core.Point{X: 13, Y: 10}) {
		t.Errorf("head after 3 ticks = %v, expected (13,10)", head)
	}
	if g.snake.Len() != 4 {
		t.Errorf("length = %d, expected 4", g.snake.Len())
	}
}

func TestBoundaryEndsGame(t *testing.T) {
	g, _ := newTestGame(t)
	g.snake = snake.FromSegments([]snake.Segment{
		{Pos: core.Point{X: 19, Y: 5}, Dir: core.Right},
		{Pos: core.Point{X: 18, Y: 5}, Dir: core.Right},
	})

	snap := g.Tick()
	if !snap.GameOver {
		t.Fatal("moving past the right edge should end the game")
	}
	if snap.Tick != 0 {
		t.Errorf("terminating tick should not commit a move, tick = %d", snap.Tick)
	}
	if head, _ := snap.Head(); head != (core.Point{X: 19, Y: 5}) {
		t.Errorf("snake moved on a fatal tick, head = %v", head)
	}
}

func TestBoundaryChecksPairedCell(t *testing.T) {
	g, _ := newTestGame(t)
	// Anchor stays inside; the +x cell of an upward segment does not.
	g.snake = snake.FromSegments([]snake.Segment{
		{Pos: core.Point{X: 19, Y: 10}, Dir: core.Right},
		{Pos: core.Point{X: 18, Y: 10}, Dir: core.Right},
		{Pos: core.Point{X: 17, Y: 10}, Dir: core.Right},
	})

	send(g, core.Toward(core.Up), "p1", "p2")
	if snap := g.Tick(); !snap.GameOver {
		t.Error("paired cell at x=20 should end the game")
	}
}

func TestGameOverIsFrozen(t *testing.T) {
	g, _ := newTestGame(t)
	g.snake = snake.FromSegments([]snake.Segment{
		{Pos: core.Point{X: 0, Y: 3}, Dir: core.Left},
	})

	final := g.Tick()
	if !final.GameOver {
		t.Fatal("expected game over")
	}

	send(g, core.Toward(core.Down), "p1", "p2")
	for range 5 {
		again := g.Tick()
		if !reflect.DeepEqual(final, again) {
			t.Fatalf("frozen game changed:\n%+v\n%+v", final, again)
		}
	}
}

// tailAheadSnake puts the tail segment directly in front of the head so the
// next upward move lands exactly on the tail's two cells.
func tailAheadSnake() *snake.Snake {
	return snake.FromSegments([]snake.Segment{
		{Pos: core.Point{X: 10, Y: 12}, Dir: core.Up},
		{Pos: core.Point{X: 10, Y: 13}, Dir: core.Up},
		{Pos: core.Point{X: 10, Y: 11}, Dir: core.Up},
	})
}

func TestTailVacatesOnNonGrowingMove(t *testing.T) {
	g, _ := newTestGame(t)
	g.snake = tailAheadSnake()

	snap := g.Tick()
	if snap.GameOver {
		t.Fatal("moving into the vacating tail should not collide")
	}
	if head, _ := snap.Head(); head != (core.Point{X: 10, Y: 11}) {
		t.Errorf("head = %v, expected (10,11)", head)
	}
}

func TestTailStaysOnGrowingMove(t *testing.T) {
	g, _ := newTestGame(t)
	g.snake = tailAheadSnake()
	g.fruits = []Fruit{{Pos: core.Point{X: 10, Y: 11}, Value: 2}}

	snap := g.Tick()
	if !snap.GameOver {
		t.Fatal("growing into the tail should collide")
	}
	if snap.Score != 0 {
		t.Errorf("score changed on a fatal tick: %d", snap.Score)
	}
}

func TestSelfCollisionWithBody(t *testing.T) {
	g, _ := newTestGame(t)
	// Heading right, the down-turn head overlaps the current head's +y cell.
	send(g, core.Toward(core.Down), "p1", "p2")

	if snap := g.Tick(); !snap.GameOver {
		t.Error("turning onto the head's own paired cell should collide")
	}
}

func TestFruitConsumption(t *testing.T) {
	g, _ := newTestGame(t)
	g.fruits = []Fruit{{Pos: core.Point{X: 11, Y: 10}, Value: 3}}

	snap := g.Tick()

	if snap.GameOver {
		t.Fatal("eating a fruit should not end the game")
	}
	if snap.Score != 3 {
		t.Errorf("score = %d, expected 3", snap.Score)
	}
	if g.snake.Len() != 5 {
		t.Errorf("length = %d, expected 5", g.snake.Len())
	}
	if len(snap.Fruits) != 1 {
		t.Fatalf("expected exactly one replacement fruit, got %d", len(snap.Fruits))
	}
	if snap.Fruits[0].Pos == (core.Point{X: 11, Y: 10}) && snap.Fruits[0].Value == 3 {
		t.Error("consumed fruit still present")
	}
	if g.snake.Contains(snap.Fruits[0].Pos) {
		t.Errorf("replacement fruit spawned on snake at %v", snap.Fruits[0].Pos)
	}
}

func TestReplacementFruitAvoidsGrownSnake(t *testing.T) {
	// 6x3 field: the snake fills x=0..3 on rows 1-2 and eats at (4,1),
	// leaving eight free cells after the move.
	for seed := int64(1); seed <= 200; seed++ {
		cfg := DefaultConfig()
		cfg.Bounds = core.Bounds{Width: 6, Height: 3}
		cfg.InitialFruits = 0
		cfg.Seed = seed

		g := New(cfg)
		g.fruits = []Fruit{{Pos: core.Point{X: 4, Y: 1}, Value: 1}}

		snap := g.Tick()
		if snap.GameOver || len(snap.Fruits) != 1 {
			t.Fatalf("seed %d: unexpected state %+v", seed, snap)
		}
		if g.snake.Contains(snap.Fruits[0].Pos) {
			t.Fatalf("seed %d: replacement fruit at %v is under the snake", seed, snap.Fruits[0].Pos)
		}
	}
}

func TestFruitOnPairedCellIsNotEaten(t *testing.T) {
	g, _ := newTestGame(t)
	g.fruits = []Fruit{{Pos: core.Point{X: 11, Y: 11}, Value: 4}}

	snap := g.Tick()
	if snap.Score != 0 || len(snap.Fruits) != 1 {
		t.Errorf("only the anchor cell eats fruit; score=%d fruits=%d", snap.Score, len(snap.Fruits))
	}
}

func TestSpawnFruitRespectsSnake(t *testing.T) {
	g, _ := newTestGame(t)

	for range 200 {
		g.spawnFruit()
	}
	for _, f := range g.fruits {
		if g.snake.Contains(f.Pos) {
			t.Errorf("fruit spawned on snake at %v", f.Pos)
		}
		if !g.cfg.Bounds.Contains(f.Pos) {
			t.Errorf("fruit spawned out of bounds at %v", f.Pos)
		}
		if f.Value < 1 || f.Value > 5 {
			t.Errorf("fruit value %d outside [1,5]", f.Value)
		}
	}
}

func TestSpawnFruitSkipsFullField(t *testing.T) {
	g, _ := newTestGame(t)
	g.cfg.Bounds = core.Bounds{Width: 2, Height: 2}
	g.snake = snake.FromSegments([]snake.Segment{
		{Pos: core.Point{X: 0, Y: 0}, Dir: core.Up},
		{Pos: core.Point{X: 0, Y: 1}, Dir: core.Up},
	})

	g.spawnFruit()
	if len(g.fruits) != 0 {
		t.Errorf("full field should spawn nothing, got %v", g.fruits)
	}
}

func TestAddPlayer(t *testing.T) {
	g := New(DefaultConfig())

	if !g.AddPlayer("a") || !g.AddPlayer("b") {
		t.Fatal("first two players should be seated")
	}
	if !g.AddPlayer("a") {
		t.Error("re-adding a seated player should succeed")
	}
	if g.AddPlayer("c") {
		t.Error("third player should be rejected")
	}
	if got := g.Players(); !reflect.DeepEqual(got, []PlayerID{"a", "b"}) {
		t.Errorf("Players() = %v", got)
	}

	g.RemovePlayer("a")
	if !g.AddPlayer("c") {
		t.Error("freed seat should accept a new player")
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	g, _ := newTestGame(t)
	g.fruits = []Fruit{{Pos: core.Point{X: 2, Y: 2}, Value: 1}}

	snap := g.Snapshot()
	snap.SnakeCells[0] = core.Point{X: -5, Y: -5}
	snap.Fruits[0].Value = 99

	fresh := g.Snapshot()
	if fresh.SnakeCells[0] == (core.Point{X: -5, Y: -5}) || fresh.Fruits[0].Value == 99 {
		t.Error("mutating a snapshot leaked into the game")
	}
	if fresh.Width != 20 || fresh.Height != 20 {
		t.Errorf("snapshot size = %dx%d", fresh.Width, fresh.Height)
	}
}

func TestDeterminism(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 12345

	g1 := New(cfg)
	g2 := New(cfg)

	for range 30 {
		s1, s2 := g1.Tick(), g2.Tick()
		if !reflect.DeepEqual(s1, s2) {
			t.Fatalf("same seed diverged:\n%+v\n%+v", s1, s2)
		}
	}
}
