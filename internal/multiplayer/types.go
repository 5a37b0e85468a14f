// Package multiplayer runs cooperative matches for connected sessions: one
// goroutine per room owns its game, and a matchmaker seats new sessions in a
// room with a free slot.
package multiplayer

import "github.com/vovakirdan/coop-snake/internal/game"

// PlayerID is an alias to game.PlayerID for convenience.
type PlayerID = game.PlayerID

// SessionID identifies a transport connection (a WebSocket or SSH session).
// It is used for logging only; the matchmaker assigns the PlayerID.
type SessionID string

// RoomID uniquely identifies a room.
type RoomID string

// Seat is where the matchmaker placed a session. Transports keep it for the
// lifetime of the connection and pass it back with every intent.
type Seat struct {
	Room   RoomID
	Player PlayerID
}

// Stats is a point-in-time count of live rooms and seated players.
type Stats struct {
	Rooms   int `json:"rooms"`
	Players int `json:"players"`
}
