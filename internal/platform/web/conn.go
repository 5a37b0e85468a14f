package web

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/coop-snake/internal/codec"
	"github.com/vovakirdan/coop-snake/internal/multiplayer"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Conn is one WebSocket player. Room events queue in the embedded channel
// session and the write pump encodes them with the connection's codec.
type Conn struct {
	*multiplayer.ChannelSession

	ws     *websocket.Conn
	codec  codec.Codec
	mm     *multiplayer.Matchmaker
	seat   multiplayer.Seat
	logger *log.Logger
}

func newConn(id multiplayer.SessionID, ws *websocket.Conn, c codec.Codec, mm *multiplayer.Matchmaker, logger *log.Logger) *Conn {
	return &Conn{
		ChannelSession: multiplayer.NewChannelSession(id, sendBuffer),
		ws:             ws,
		codec:          c,
		mm:             mm,
		logger:         logger.With("session", string(id), "codec", c.Name()),
	}
}

// start seats the connection and runs both pumps.
func (c *Conn) start() error {
	seat, err := c.mm.Connect(c)
	if err != nil {
		return err
	}
	c.seat = seat
	c.logger = c.logger.With("room", string(seat.Room), "player", string(seat.Player))
	c.logger.Info("websocket player connected")

	go c.writePump()
	go c.readPump()
	return nil
}

func (c *Conn) readPump() {
	defer func() {
		c.mm.Disconnect(c.seat)
		c.Close()
		c.ws.Close()
		c.logger.Info("websocket player disconnected", "dropped", c.Dropped())
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("read error", "err", err)
			}
			return
		}

		intent, err := decodeIntent(c.codec, data)
		if err != nil {
			c.logger.Debug("dropping frame", "err", err)
			continue
		}
		c.mm.RecordIntent(c.seat, intent)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	frameType := websocket.TextMessage
	if c.codec.Binary() {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case evt := <-c.Events():
			if _, closed := evt.(multiplayer.RoomClosedEvent); closed {
				c.writeClose(websocket.CloseGoingAway, "room closed")
				return
			}
			env, ok := envelopeFor(evt)
			if !ok {
				continue
			}
			frame, err := c.codec.Marshal(env)
			if err != nil {
				c.logger.Error("encode failed", "type", env.Type, "err", err)
				continue
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(frameType, frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.Done():
			c.writeClose(websocket.CloseNormalClosure, "")
			return
		}
	}
}

func (c *Conn) writeClose(code int, text string) {
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, text), time.Now().Add(writeWait))
}
