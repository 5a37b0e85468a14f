package multiplayer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/coop-snake/internal/core"
)

// ErrMatchmakerClosed is returned by Connect after Shutdown.
var ErrMatchmakerClosed = errors.New("multiplayer: matchmaker closed")

// Matchmaker seats incoming sessions in a room with a free slot, creating
// rooms on demand and forgetting them when they empty.
type Matchmaker struct {
	cfg    RoomConfig
	logger *log.Logger

	mu     sync.RWMutex
	rooms  map[RoomID]*Room
	closed bool

	wg sync.WaitGroup
}

// NewMatchmaker creates a matchmaker whose rooms all use cfg.
func NewMatchmaker(cfg RoomConfig, logger *log.Logger) *Matchmaker {
	if logger == nil {
		logger = log.Default()
	}
	return &Matchmaker{
		cfg:    cfg,
		logger: logger,
		rooms:  make(map[RoomID]*Room),
	}
}

// Connect assigns the session a fresh player id and seats it. Picking the
// room and joining it happen under one lock, so two concurrent connects
// never both take the last seat.
func (m *Matchmaker) Connect(session SessionHandle) (Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return Seat{}, ErrMatchmakerClosed
	}

	player := PlayerID(uuid.NewString())

	for _, room := range m.rooms {
		if !room.Available() {
			continue
		}
		if room.Join(player, session) {
			return Seat{Room: room.ID(), Player: player}, nil
		}
	}

	room := m.createRoomLocked()
	if !room.Join(player, session) {
		return Seat{}, fmt.Errorf("multiplayer: new room %s rejected player %s", room.ID(), player)
	}
	return Seat{Room: room.ID(), Player: player}, nil
}

// Disconnect removes the seated player from its room.
func (m *Matchmaker) Disconnect(seat Seat) {
	if room, ok := m.room(seat.Room); ok {
		room.Leave(seat.Player)
	}
}

// RecordIntent forwards an intent to the seat's room. It returns false when
// the room no longer exists.
func (m *Matchmaker) RecordIntent(seat Seat, intent core.Intent) bool {
	room, ok := m.room(seat.Room)
	if !ok {
		return false
	}
	room.RecordIntent(seat.Player, intent)
	return true
}

// Stats returns the number of live rooms and seated players.
func (m *Matchmaker) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{Rooms: len(m.rooms)}
	for _, room := range m.rooms {
		stats.Players += room.Seated()
	}
	return stats
}

// Shutdown stops every room and waits for their tick loops to exit.
// Connect fails with ErrMatchmakerClosed afterwards.
func (m *Matchmaker) Shutdown() {
	m.mu.Lock()
	m.closed = true
	rooms := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	m.mu.Unlock()

	for _, room := range rooms {
		room.Stop()
	}
	m.wg.Wait()
	m.logger.Info("matchmaker stopped", "rooms", len(rooms))
}

func (m *Matchmaker) room(id RoomID) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	return room, ok
}

// createRoomLocked must be called with m.mu held.
func (m *Matchmaker) createRoomLocked() *Room {
	id := RoomID(uuid.NewString())
	room := NewRoom(id, m.cfg, m.logger, m.removeRoom)
	m.rooms[id] = room

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		room.Run()
	}()
	return room
}

func (m *Matchmaker) removeRoom(id RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, id)
}
