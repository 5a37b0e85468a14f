package multiplayer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/coop-snake/internal/core"
	"github.com/vovakirdan/coop-snake/internal/game"
)

// RoomConfig holds the settings shared by every room a matchmaker creates.
type RoomConfig struct {
	Game         game.Config
	TickInterval time.Duration // Period of the tick loop
	Capacity     int           // Seats per room, at most game.MaxPlayers
}

// DefaultRoomConfig returns the classic 100ms, two-seat setup.
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		Game:         game.DefaultConfig(),
		TickInterval: 100 * time.Millisecond,
		Capacity:     game.MaxPlayers,
	}
}

type intentMsg struct {
	player PlayerID
	intent core.Intent
	at     time.Time
}

type joinRequest struct {
	player  PlayerID
	session SessionHandle
	reply   chan bool
}

// Room owns one game and runs its tick loop. Every access to the game
// happens on the goroutine executing Run; other goroutines talk to it over
// channels.
type Room struct {
	id     RoomID
	cfg    RoomConfig
	logger *log.Logger
	game   *game.Game
	now    func() time.Time

	// Owned by the Run goroutine.
	members map[PlayerID]SessionHandle

	intentChan chan intentMsg
	joinChan   chan joinRequest
	leaveChan  chan PlayerID

	seated   atomic.Int32
	finished atomic.Bool

	done     chan struct{}
	doneOnce sync.Once

	onClose func(RoomID)
}

// NewRoom creates a room with a fresh game. onClose, if set, is called once
// after the tick loop has stopped.
func NewRoom(id RoomID, cfg RoomConfig, logger *log.Logger, onClose func(RoomID)) *Room {
	now := cfg.Game.Now
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Room{
		id:         id,
		cfg:        cfg,
		logger:     logger.With("room", string(id)),
		game:       game.New(cfg.Game),
		now:        now,
		members:    make(map[PlayerID]SessionHandle),
		intentChan: make(chan intentMsg, 64),
		joinChan:   make(chan joinRequest),
		leaveChan:  make(chan PlayerID, 8),
		done:       make(chan struct{}),
		onClose:    onClose,
	}
}

// ID returns the room identifier.
func (r *Room) ID() RoomID {
	return r.id
}

// Seated returns the number of connected players.
func (r *Room) Seated() int {
	return int(r.seated.Load())
}

// Finished reports whether the game has reached game over.
func (r *Room) Finished() bool {
	return r.finished.Load()
}

// Available reports whether the room can take another player.
func (r *Room) Available() bool {
	select {
	case <-r.done:
		return false
	default:
	}
	return !r.Finished() && r.Seated() < r.cfg.Capacity
}

// Done returns a channel that closes when the tick loop stops.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// Join seats a player and registers the session for snapshots. It returns
// false when the room is full or already stopped.
func (r *Room) Join(player PlayerID, session SessionHandle) bool {
	req := joinRequest{player: player, session: session, reply: make(chan bool, 1)}
	select {
	case r.joinChan <- req:
	case <-r.done:
		return false
	}
	select {
	case ok := <-req.reply:
		return ok
	case <-r.done:
		return false
	}
}

// RecordIntent stamps the intent with its receipt time and hands it to the
// tick loop. Non-blocking; when the queue is full the oldest queued intent
// is evicted so the latest vote always reaches the game.
func (r *Room) RecordIntent(player PlayerID, intent core.Intent) {
	msg := intentMsg{player: player, intent: intent, at: r.now()}
	for attempt := 0; attempt < 2; attempt++ {
		select {
		case r.intentChan <- msg:
			return
		default:
		}
		select {
		case old := <-r.intentChan:
			r.logger.Debug("intent queue full, evicting oldest", "player", old.player)
		default:
		}
	}
	r.logger.Debug("intent queue full, dropping", "player", player)
}

// Leave removes a player. Leaving twice or after the room stopped is a no-op.
func (r *Room) Leave(player PlayerID) {
	select {
	case r.leaveChan <- player:
	case <-r.done:
	}
}

// Stop ends the tick loop. Remaining members receive a RoomClosedEvent.
func (r *Room) Stop() {
	r.doneOnce.Do(func() {
		close(r.done)
	})
}

// Run executes the tick loop until the last player leaves or Stop is called.
func (r *Room) Run() {
	ticker := time.NewTicker(r.cfg.TickInterval)
	r.logger.Info("room started", "tick", r.cfg.TickInterval, "capacity", r.cfg.Capacity)

	defer func() {
		ticker.Stop()
		r.Stop()
		for _, s := range r.members {
			s.Send(RoomClosedEvent{RoomID: r.id})
		}
		r.logger.Info("room closed", "ticks", r.game.TickCount(), "score", r.game.Score())
		if r.onClose != nil {
			r.onClose(r.id)
		}
	}()

	for {
		select {
		case <-ticker.C:
			r.tick()

		case msg := <-r.intentChan:
			r.game.RecordIntentAt(msg.player, msg.intent, msg.at)

		case req := <-r.joinChan:
			req.reply <- r.handleJoin(req)

		case player := <-r.leaveChan:
			if r.handleLeave(player) {
				return
			}

		case <-r.done:
			return
		}
	}
}

func (r *Room) tick() {
	snapshot := r.game.Tick()
	if snapshot.GameOver && !r.finished.Load() {
		r.finished.Store(true)
		r.logger.Info("game over", "score", snapshot.Score, "ticks", snapshot.Tick)
	}

	evt := SnapshotEvent{RoomID: r.id, Snapshot: snapshot}
	for _, s := range r.members {
		s.Send(evt)
	}
}

func (r *Room) handleJoin(req joinRequest) bool {
	if _, ok := r.members[req.player]; ok {
		return true
	}
	if len(r.members) >= r.cfg.Capacity || !r.game.AddPlayer(req.player) {
		return false
	}

	r.members[req.player] = req.session
	r.seated.Store(int32(len(r.members))) //nolint:gosec // bounded by capacity
	req.session.Send(JoinedEvent{RoomID: r.id, PlayerID: req.player})
	r.logger.Info("player joined", "player", req.player, "session", req.session.ID(), "seated", len(r.members))

	go r.monitorSession(req.player, req.session)
	return true
}

// handleLeave removes the player and reports whether the room is now empty.
func (r *Room) handleLeave(player PlayerID) bool {
	if _, ok := r.members[player]; !ok {
		return false
	}
	delete(r.members, player)
	r.game.RemovePlayer(player)
	r.seated.Store(int32(len(r.members))) //nolint:gosec // bounded by capacity
	r.logger.Info("player left", "player", player, "seated", len(r.members))

	return len(r.members) == 0
}

func (r *Room) monitorSession(player PlayerID, session SessionHandle) {
	select {
	case <-session.Done():
		r.Leave(player)
	case <-r.done:
	}
}
