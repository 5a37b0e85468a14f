package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vovakirdan/coop-snake/internal/core"
	"github.com/vovakirdan/coop-snake/internal/game"
	"github.com/vovakirdan/coop-snake/internal/multiplayer"
)

type rawEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (*httptest.Server, *multiplayer.Matchmaker) {
	t.Helper()

	logger := log.New(io.Discard)
	cfg := multiplayer.DefaultRoomConfig()
	cfg.TickInterval = 10 * time.Millisecond
	cfg.Game.Seed = 5
	cfg.Game.InitialFruits = 0

	mm := multiplayer.NewMatchmaker(cfg, logger)
	srv := NewServer(ServerConfig{Addr: "127.0.0.1:0", Matchmaker: mm, Logger: logger})
	ts := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		mm.Shutdown()
		ts.Close()
	})
	return ts, mm
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readJSON(t *testing.T, ws *websocket.Conn) rawEnvelope {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	msgType, data, err := ws.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, msgType)

	var env rawEnvelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func readWelcome(t *testing.T, ws *websocket.Conn) Welcome {
	t.Helper()
	env := readJSON(t, ws)
	require.Equal(t, TypeWelcome, env.Type)

	var w Welcome
	require.NoError(t, json.Unmarshal(env.Data, &w))
	return w
}

func sendIntent(t *testing.T, ws *websocket.Conn, intent string) {
	t.Helper()
	require.NoError(t, ws.WriteJSON(Envelope{Type: TypeIntent, Data: IntentData{Intent: intent}}))
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestWelcomeAndStats(t *testing.T) {
	ts, _ := newTestServer(t)

	w1 := readWelcome(t, dial(t, ts, ""))
	w2 := readWelcome(t, dial(t, ts, "?codec=json"))

	assert.NotEmpty(t, w1.PlayerID)
	assert.NotEqual(t, w1.PlayerID, w2.PlayerID)
	assert.Equal(t, w1.RoomID, w2.RoomID, "second player fills the first room")

	resp, err := http.Get(ts.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	var stats multiplayer.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, multiplayer.Stats{Rooms: 1, Players: 2}, stats)
}

func TestConsensusOverWebSocket(t *testing.T) {
	ts, _ := newTestServer(t)

	a := dial(t, ts, "")
	readWelcome(t, a)
	b := dial(t, ts, "")
	readWelcome(t, b)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		sendIntent(t, a, "up")
		sendIntent(t, b, "up")

		env := readJSON(t, a)
		if env.Type != TypeSnapshot {
			continue
		}
		var snap game.Snapshot
		require.NoError(t, json.Unmarshal(env.Data, &snap))
		if snap.Heading == core.Up {
			return
		}
	}
	t.Fatal("snake never turned up")
}

func TestMalformedFramesAreIgnored(t *testing.T) {
	ts, mm := newTestServer(t)

	ws := dial(t, ts, "")
	readWelcome(t, ws)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"intent","data":{"intent":"sideways"}}`)))
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"chat","data":{}}`)))

	// The connection stays open and keeps streaming snapshots.
	env := readJSON(t, ws)
	assert.Equal(t, TypeSnapshot, env.Type)
	assert.Equal(t, 1, mm.Stats().Players)
}

func TestMsgpackCodec(t *testing.T) {
	ts, _ := newTestServer(t)

	ws := dial(t, ts, "?codec=msgpack")
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))

	msgType, data, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, msgType)

	var env struct {
		Type string  `msgpack:"type"`
		Data Welcome `msgpack:"data"`
	}
	require.NoError(t, msgpack.Unmarshal(data, &env))
	assert.Equal(t, TypeWelcome, env.Type)
	assert.NotEmpty(t, env.Data.RoomID)

	frame, err := msgpack.Marshal(Envelope{Type: TypeIntent, Data: IntentData{Intent: "straight"}})
	require.NoError(t, err)
	require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, frame))

	_, data, err = ws.ReadMessage()
	require.NoError(t, err)
	var snapEnv struct {
		Type string        `msgpack:"type"`
		Data game.Snapshot `msgpack:"data"`
	}
	require.NoError(t, msgpack.Unmarshal(data, &snapEnv))
	assert.Equal(t, TypeSnapshot, snapEnv.Type)
	assert.Equal(t, 20, snapEnv.Data.Width)
}

func TestUnknownCodecRejected(t *testing.T) {
	ts, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?codec=xml"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDisconnectFreesSeat(t *testing.T) {
	ts, mm := newTestServer(t)

	ws := dial(t, ts, "")
	readWelcome(t, ws)
	require.Equal(t, 1, mm.Stats().Players)

	require.NoError(t, ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	ws.Close()

	require.Eventually(t, func() bool {
		return mm.Stats() == multiplayer.Stats{}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestShutdownClosesSockets(t *testing.T) {
	ts, mm := newTestServer(t)

	ws := dial(t, ts, "")
	readWelcome(t, ws)

	mm.Shutdown()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, _, err := ws.ReadMessage()
		if err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "unexpected error: %v", err)
			return
		}
	}
}
