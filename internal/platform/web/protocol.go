package web

import (
	"fmt"

	"github.com/vovakirdan/coop-snake/internal/codec"
	"github.com/vovakirdan/coop-snake/internal/core"
	"github.com/vovakirdan/coop-snake/internal/multiplayer"
)

// Message types on the wire.
const (
	TypeWelcome  = "welcome"
	TypeSnapshot = "snapshot"
	TypeIntent   = "intent"
)

// Envelope wraps every frame: {"type": ..., "data": ...}.
type Envelope struct {
	Type string `json:"type" msgpack:"type"`
	Data any    `json:"data" msgpack:"data"`
}

// Welcome tells a client which seat it got.
type Welcome struct {
	PlayerID string `json:"playerId" msgpack:"playerId"`
	RoomID   string `json:"roomId" msgpack:"roomId"`
}

// IntentData is the payload of an inbound intent frame.
type IntentData struct {
	Intent string `json:"intent" msgpack:"intent"`
}

type inboundEnvelope struct {
	Type string     `json:"type" msgpack:"type"`
	Data IntentData `json:"data" msgpack:"data"`
}

// envelopeFor maps a room event to its outbound frame. Events without a
// wire form return false.
func envelopeFor(evt multiplayer.SessionEvent) (Envelope, bool) {
	switch e := evt.(type) {
	case multiplayer.JoinedEvent:
		return Envelope{Type: TypeWelcome, Data: Welcome{PlayerID: string(e.PlayerID), RoomID: string(e.RoomID)}}, true
	case multiplayer.SnapshotEvent:
		return Envelope{Type: TypeSnapshot, Data: e.Snapshot}, true
	default:
		return Envelope{}, false
	}
}

// decodeIntent parses an inbound frame. Frames that are not a well-formed
// intent message return an error and must be dropped.
func decodeIntent(c codec.Codec, frame []byte) (core.Intent, error) {
	var msg inboundEnvelope
	if err := c.Unmarshal(frame, &msg); err != nil {
		return core.Straight, fmt.Errorf("web: decode frame: %w", err)
	}
	if msg.Type != TypeIntent {
		return core.Straight, fmt.Errorf("web: unexpected message type %q", msg.Type)
	}
	intent, ok := core.ParseIntent(msg.Data.Intent)
	if !ok {
		return core.Straight, fmt.Errorf("web: unknown intent %q", msg.Data.Intent)
	}
	return intent, nil
}
