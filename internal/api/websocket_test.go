package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"void-arena/internal/game"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

func startHub(t *testing.T, engine EngineInterface, origins []string) (*WebSocketHub, string) {
	t.Helper()

	hub := NewWebSocketHub(engine, NewOriginPolicy(origins))
	go hub.Run()

	ts := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(func() {
		hub.Stop()
		ts.Close()
	})

	return hub, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func TestWebSocketReceivesState(t *testing.T) {
	engine := NewMockEngine()
	hub, url := startHub(t, engine, nil)

	conn := dial(t, url)
	waitFor(t, "client registration", func() bool { return hub.ClientCount() == 1 })
	hub.StartBroadcastLoop(10 * time.Millisecond)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if msgType != websocket.TextMessage {
		t.Errorf("Expected text frame, got %d", msgType)
	}

	var msg struct {
		Event string            `json:"event"`
		Data  game.GameSnapshot `json:"data"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to decode message: %v", err)
	}
	if msg.Event != MsgGameState {
		t.Errorf("Expected %s, got %s", MsgGameState, msg.Event)
	}
	if msg.Data.SessionID != "session-1" {
		t.Errorf("Unexpected session %q", msg.Data.SessionID)
	}
}

func TestWebSocketGameOverAnnouncedOnce(t *testing.T) {
	engine := NewMockEngine()
	engine.snap.GameOver = true
	engine.snap.FinalScore = 700
	hub, url := startHub(t, engine, nil)

	conn := dial(t, url)
	waitFor(t, "client registration", func() bool { return hub.ClientCount() == 1 })
	hub.StartBroadcastLoop(10 * time.Millisecond)

	events := make([]string, 0, 2)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for len(events) < 2 {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		var msg ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Failed to decode message: %v", err)
		}
		events = append(events, msg.Event)
	}

	if events[0] != MsgGameState || events[1] != MsgGameOver {
		t.Errorf("Expected state then game over, got %v", events)
	}

	// Sequence never advances, so nothing else is sent
	conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Game over should be announced once per session")
	}
}

func TestWebSocketMsgpackFormat(t *testing.T) {
	engine := NewMockEngine()
	hub, url := startHub(t, engine, nil)

	conn := dial(t, url+"?format=msgpack")
	waitFor(t, "client registration", func() bool { return hub.ClientCount() == 1 })
	hub.Broadcast(MsgGameState, engine.GetSnapshot())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if msgType != websocket.BinaryMessage {
		t.Fatalf("Expected binary frame, got %d", msgType)
	}

	var msg struct {
		Event string            `msgpack:"event"`
		Data  game.GameSnapshot `msgpack:"data"`
	}
	if err := msgpack.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to decode msgpack: %v", err)
	}
	if msg.Event != MsgGameState || msg.Data.HUD.Score != 200 {
		t.Errorf("Unexpected message %+v", msg)
	}
}

func TestWebSocketInputAndRestart(t *testing.T) {
	engine := NewMockEngine()
	hub, url := startHub(t, engine, nil)

	conn := dial(t, url)
	waitFor(t, "client registration", func() bool { return hub.ClientCount() == 1 })

	input := ClientMessage{Type: MsgInput, Input: &game.ControlSample{Thrust: 3, Pitch: 0.25}}
	if err := conn.WriteJSON(input); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	waitFor(t, "input", func() bool {
		_, n := engine.lastInput()
		return n == 1
	})

	got, _ := engine.lastInput()
	if got.Thrust != 1 || got.Pitch != 0.25 {
		t.Errorf("Input should arrive clamped, got %+v", got)
	}

	payload, err := msgpack.Marshal(ClientMessage{Type: MsgRestart})
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	waitFor(t, "restart", func() bool { return engine.restartCount() == 1 })
}

func TestWebSocketIgnoresMalformedMessages(t *testing.T) {
	engine := NewMockEngine()
	hub, url := startHub(t, engine, nil)

	conn := dial(t, url)
	waitFor(t, "client registration", func() bool { return hub.ClientCount() == 1 })

	conn.WriteMessage(websocket.TextMessage, []byte("not json"))
	conn.WriteJSON(ClientMessage{Type: MsgInput})
	conn.WriteJSON(ClientMessage{Type: MsgRestart})

	waitFor(t, "restart", func() bool { return engine.restartCount() == 1 })
	if _, n := engine.lastInput(); n != 0 {
		t.Errorf("Malformed input must be ignored, got %d samples", n)
	}
	if hub.ClientCount() != 1 {
		t.Error("Malformed messages should not drop the client")
	}
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	_, url := startHub(t, NewMockEngine(), []string{"https://arena.example"})

	header := http.Header{"Origin": []string{"https://evil.example"}}
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		conn.Close()
		t.Fatal("Expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %v", resp)
	}

	header = http.Header{"Origin": []string{"https://arena.example"}}
	conn, _, err = websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("Allowed origin should connect: %v", err)
	}
	conn.Close()
}

func TestWebSocketDisconnectReleasesSlot(t *testing.T) {
	hub, url := startHub(t, NewMockEngine(), nil)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	waitFor(t, "client registration", func() bool { return hub.ClientCount() == 1 })

	conn.Close()
	waitFor(t, "client removal", func() bool { return hub.ClientCount() == 0 })
	if n := hub.connLimiter.Count("127.0.0.1"); n != 0 {
		t.Errorf("Expected released slot, got %d", n)
	}
}
