// Package game holds the authoritative state of one cooperative match: the
// shared snake, the fruits, the score and the two players whose intents
// must agree before the snake turns.
package game

import (
	"math/rand"
	"slices"
	"time"

	"github.com/vovakirdan/coop-snake/internal/core"
	"github.com/vovakirdan/coop-snake/internal/snake"
)

// MaxPlayers is the number of seats in a match. Consensus needs both.
const MaxPlayers = 2

// PlayerID identifies a player across the transport and the simulation.
type PlayerID string

// Config contains the tuning of a single match.
type Config struct {
	Bounds          core.Bounds
	SnakeLength     int           // Segments at start
	InitialFruits   int           // Fruits spawned before the first tick
	MaxFruitValue   int           // Fruit values are uniform in [1, MaxFruitValue]
	ConsensusWindow time.Duration // How long an intent counts as fresh
	Seed            int64         // RNG seed, 0 means time based

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns the classic 20x20 setup.
func DefaultConfig() Config {
	return Config{
		Bounds:          core.DefaultBounds,
		SnakeLength:     4,
		InitialFruits:   3,
		MaxFruitValue:   5,
		ConsensusWindow: 120 * time.Millisecond,
	}
}

// Fruit is a single-cell pickup worth Value points.
type Fruit struct {
	Pos   core.Point `json:"pos" msgpack:"pos"`
	Value int        `json:"value" msgpack:"value"`
}

// intentRecord is the last intent a player sent and when it was received.
type intentRecord struct {
	intent core.Intent
	at     time.Time
}

// Game is one match. It is not safe for concurrent use; the owning room
// serializes every call.
type Game struct {
	cfg   Config
	rng   *rand.Rand
	now   func() time.Time
	snake *snake.Snake

	fruits   []Fruit
	score    int
	tick     uint64
	gameOver bool

	players []PlayerID
	intents map[PlayerID]intentRecord
}

// New creates a match with the snake centered on the field, heading right,
// and InitialFruits fruits already placed.
func New(cfg Config) *Game {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	g := &Game{
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(seed)),
		now:     now,
		snake:   snake.New(cfg.Bounds.Center(), core.Right, max(1, cfg.SnakeLength)),
		intents: make(map[PlayerID]intentRecord),
	}

	for range cfg.InitialFruits {
		g.spawnFruit()
	}
	return g
}

// AddPlayer seats a player. Adding an already seated player succeeds
// without changes; false means both seats are taken.
func (g *Game) AddPlayer(id PlayerID) bool {
	if slices.Contains(g.players, id) {
		return true
	}
	if len(g.players) >= MaxPlayers {
		return false
	}
	g.players = append(g.players, id)
	return true
}

// RemovePlayer frees the player's seat and forgets their last intent.
func (g *Game) RemovePlayer(id PlayerID) {
	g.players = slices.DeleteFunc(g.players, func(p PlayerID) bool { return p == id })
	delete(g.intents, id)
}

// Players returns the seated players in join order.
func (g *Game) Players() []PlayerID {
	return slices.Clone(g.players)
}

// RecordIntent stores the player's intent stamped with the current time.
func (g *Game) RecordIntent(id PlayerID, intent core.Intent) {
	g.RecordIntentAt(id, intent, g.now())
}

// RecordIntentAt stores the player's intent with an explicit receipt time.
// The newest call wins. Intents from players without a seat are ignored.
func (g *Game) RecordIntentAt(id PlayerID, intent core.Intent, at time.Time) {
	if !slices.Contains(g.players, id) {
		return
	}
	g.intents[id] = intentRecord{intent: intent, at: at}
}

// Tick advances the match by one step and returns the resulting snapshot.
// Once the game is over it only re-emits the final snapshot.
func (g *Game) Tick() Snapshot {
	if g.gameOver {
		return g.Snapshot()
	}

	dir := g.decideDirection(g.now())

	// All checks run against the prospective head; nothing is mutated
	// until they pass.
	next := g.snake.ComputeNextHead(dir)
	cells := next.Cells()

	for _, c := range cells {
		if !g.cfg.Bounds.Contains(c) {
			g.gameOver = true
			return g.Snapshot()
		}
	}

	fruit := g.fruitAt(next.Pos)
	grow := fruit >= 0

	if g.hitsBody(cells, grow) {
		g.gameOver = true
		return g.Snapshot()
	}

	if grow {
		g.score += g.fruits[fruit].Value
		g.fruits = slices.Delete(g.fruits, fruit, fruit+1)
	}

	g.snake.Advance(dir, grow)

	// The replacement spawns after the advance so it can never land on the
	// new head or the grown tail.
	if grow {
		g.spawnFruit()
	}

	g.tick++
	return g.Snapshot()
}

// hitsBody reports whether either prospective cell lands on the body. On a
// non-growing move the tail's cells are left out because the tail vacates
// them this same tick.
func (g *Game) hitsBody(cells [2]core.Point, grow bool) bool {
	occupied := make(map[core.Point]struct{}, g.snake.Len()*2)
	for _, c := range g.snake.OccupiedCells() {
		occupied[c] = struct{}{}
	}
	if !grow {
		for _, c := range g.snake.Tail().Cells() {
			delete(occupied, c)
		}
	}

	for _, c := range cells {
		if _, hit := occupied[c]; hit {
			return true
		}
	}
	return false
}

// Heading returns the snake's current direction.
func (g *Game) Heading() core.Direction {
	return g.snake.Dir()
}

// Score returns the accumulated fruit value.
func (g *Game) Score() int {
	return g.score
}

// TickCount returns the number of committed moves. The tick that ends the
// game moves nothing and is not counted.
func (g *Game) TickCount() uint64 {
	return g.tick
}

// IsGameOver reports whether the match reached its terminal state.
func (g *Game) IsGameOver() bool {
	return g.gameOver
}
