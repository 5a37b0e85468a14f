package multiplayer

import "github.com/vovakirdan/coop-snake/internal/game"

// SessionEvent represents an event sent from a room to a session.
type SessionEvent interface {
	sessionEvent()
}

// JoinedEvent is sent once when a session takes a seat.
type JoinedEvent struct {
	RoomID   RoomID
	PlayerID PlayerID
}

func (JoinedEvent) sessionEvent() {}

// SnapshotEvent carries the state produced by one tick.
type SnapshotEvent struct {
	RoomID   RoomID
	Snapshot game.Snapshot
}

func (SnapshotEvent) sessionEvent() {}

// RoomClosedEvent is sent to remaining members when the server stops a room.
type RoomClosedEvent struct {
	RoomID RoomID
}

func (RoomClosedEvent) sessionEvent() {}
