package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"void-arena/internal/game"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 256

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 8

	wsWriteTimeout = 2 * time.Second
	wsMaxMessage   = 1 << 10
)

// Outbound envelope names
const (
	MsgGameState = "game:state"
	MsgGameOver  = "game:over"
)

// Inbound message types
const (
	MsgInput   = "input"
	MsgRestart = "restart"
)

// ServerMessage is the outbound envelope
type ServerMessage struct {
	Event string      `json:"event" msgpack:"event"`
	Data  interface{} `json:"data" msgpack:"data"`
}

// ClientMessage is the inbound envelope. Input is only set for MsgInput.
type ClientMessage struct {
	Type  string              `json:"type" msgpack:"type"`
	Input *game.ControlSample `json:"input,omitempty" msgpack:"input,omitempty"`
}

// wsClient tracks a connection with its source IP and wire format
type wsClient struct {
	conn   *websocket.Conn
	ip     string
	binary bool // msgpack frames instead of JSON text
}

// frame is one broadcast encoded in both wire formats
type frame struct {
	text   []byte
	binary []byte
}

// WebSocketHub fans snapshots out to clients and feeds their input back to
// the engine.
type WebSocketHub struct {
	engine     EngineInterface
	clients    map[*websocket.Conn]*wsClient
	broadcast  chan frame
	register   chan *wsClient
	unregister chan *websocket.Conn
	stopChan   chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex

	upgrader    websocket.Upgrader
	connLimiter *ConnLimiter
}

// NewWebSocketHub creates a hub. Nothing runs until Run is called.
func NewWebSocketHub(engine EngineInterface, origins OriginPolicy) *WebSocketHub {
	h := &WebSocketHub{
		engine:      engine,
		clients:     make(map[*websocket.Conn]*wsClient),
		broadcast:   make(chan frame, 16),
		register:    make(chan *wsClient),
		unregister:  make(chan *websocket.Conn),
		stopChan:    make(chan struct{}),
		connLimiter: NewConnLimiter(MaxWSConnectionsPerIP),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origins.Allow(origin) {
				return true
			}
			log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
			RecordConnectionRejected("origin")
			return false
		},
	}
	return h
}

// Run owns the client set until Stop
func (h *WebSocketHub) Run() {
	for {
		select {
		case <-h.stopChan:
			h.mu.Lock()
			for conn, client := range h.clients {
				h.connLimiter.Release(client.ip)
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			UpdateWSConnections(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Client connected from %s (%d total)", client.ip, count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[conn]; ok {
				h.connLimiter.Release(client.ip)
				delete(h.clients, conn)
				conn.Close()
			}
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Client disconnected (%d remaining)", count)
			UpdateWSConnections(count)

		case f := <-h.broadcast:
			h.mu.Lock()
			for conn, client := range h.clients {
				msgType, payload := websocket.TextMessage, f.text
				if client.binary {
					msgType, payload = websocket.BinaryMessage, f.binary
				}
				conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteMessage(msgType, payload); err != nil {
					h.connLimiter.Release(client.ip)
					delete(h.clients, conn)
					conn.Close()
					continue
				}
				RecordWSMessage("out")
			}
			h.mu.Unlock()
		}
	}
}

// Stop closes every connection and ends Run
func (h *WebSocketHub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
	})
}

// Broadcast encodes msg once per wire format and queues it. Drops the frame
// when the hub is behind.
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	msg := ServerMessage{Event: event, Data: data}

	text, err := json.Marshal(msg)
	if err != nil {
		return
	}
	binary, err := msgpack.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case h.broadcast <- frame{text: text, binary: binary}:
	default:
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartBroadcastLoop pushes each new snapshot every period, plus a single
// game-over message when a run ends.
func (h *WebSocketHub) StartBroadcastLoop(every time.Duration) {
	if every <= 0 {
		every = 50 * time.Millisecond
	}
	ticker := time.NewTicker(every)

	go func() {
		defer ticker.Stop()
		var lastSeq uint64
		var lastSession string
		announced := false

		for {
			select {
			case <-h.stopChan:
				return
			case <-ticker.C:
			}

			snap := h.engine.GetSnapshot()
			if snap == nil || snap.Sequence == lastSeq {
				continue
			}
			lastSeq = snap.Sequence
			if snap.SessionID != lastSession {
				lastSession = snap.SessionID
				announced = false
			}

			if h.ClientCount() == 0 {
				continue
			}
			h.Broadcast(MsgGameState, snap)

			if snap.GameOver && !announced {
				announced = true
				h.Broadcast(MsgGameOver, map[string]interface{}{
					"sessionId":    snap.SessionID,
					"finalScore":   snap.FinalScore,
					"survivalTime": snap.SurvivalTime,
				})
			}
		}
	}()
}

// HandleWebSocket upgrades the request. ?format=msgpack selects binary frames.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if h.ClientCount() >= MaxWSConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached")
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}
	if !h.connLimiter.Acquire(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.connLimiter.Release(ip)
		return
	}
	conn.SetReadLimit(wsMaxMessage)

	client := &wsClient{conn: conn, ip: ip, binary: r.URL.Query().Get("format") == "msgpack"}
	select {
	case h.register <- client:
	case <-h.stopChan:
		h.connLimiter.Release(ip)
		conn.Close()
		return
	}

	go h.readLoop(client)
}

// readLoop applies client messages until the connection drops
func (h *WebSocketHub) readLoop(client *wsClient) {
	defer func() {
		select {
		case h.unregister <- client.conn:
		case <-h.stopChan:
		}
	}()

	for {
		msgType, data, err := client.conn.ReadMessage()
		if err != nil {
			return
		}
		RecordWSMessage("in")

		var msg ClientMessage
		if msgType == websocket.BinaryMessage {
			err = msgpack.Unmarshal(data, &msg)
		} else {
			err = json.Unmarshal(data, &msg)
		}
		if err != nil {
			continue
		}
		h.apply(msg)
	}
}

func (h *WebSocketHub) apply(msg ClientMessage) {
	switch msg.Type {
	case MsgInput:
		if msg.Input != nil {
			h.engine.SubmitInput(msg.Input.Clamp())
		}
	case MsgRestart:
		h.engine.Restart()
	}
}
