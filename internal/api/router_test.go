package api

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"void-arena/internal/game"

	"github.com/vmihailenco/msgpack/v5"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// MockEngine implements EngineInterface for testing
type MockEngine struct {
	mu       sync.Mutex
	snap     *game.GameSnapshot
	inputs   []game.ControlSample
	restarts int
}

func NewMockEngine() *MockEngine {
	return &MockEngine{
		snap: &game.GameSnapshot{
			Sequence:   3,
			TickNumber: 2,
			SessionID:  "session-1",
			Ship:       game.ShipSnapshot{Shield: 80, Alive: true},
			Enemies:    []game.EnemySnapshot{{ID: 1, Kind: "scout", Health: 2, MaxHealth: 2}},
			HUD: game.HUDStats{
				EnemyCount:    1,
				EnemyCap:      4,
				Score:         200,
				ShieldPercent: 80,
				NearestEnemy:  42,
				Radar:         []game.RadarContact{{X: 10, Forward: 40, Distance: 42, Kind: "scout"}},
			},
		},
	}
}

func (m *MockEngine) GetSnapshot() *game.GameSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

func (m *MockEngine) SubmitInput(c game.ControlSample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, c)
}

func (m *MockEngine) Restart() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restarts++
}

func (m *MockEngine) IsGameOver() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap != nil && m.snap.GameOver
}

func (m *MockEngine) GetEventLogStats() map[string]interface{} {
	return map[string]interface{}{"total": uint64(7), "dropped": uint64(0)}
}

func (m *MockEngine) lastInput() (game.ControlSample, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.inputs) == 0 {
		return game.ControlSample{}, 0
	}
	return m.inputs[len(m.inputs)-1], len(m.inputs)
}

func (m *MockEngine) restartCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restarts
}

func newTestRouter(engine EngineInterface) http.Handler {
	return NewRouter(RouterConfig{
		Engine:         engine,
		DisableLogging: true,
		RateLimitConfig: &RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             1000,
			CleanupInterval:   time.Hour,
		},
	})
}

// ============================================================================
// Endpoint Tests
// ============================================================================

func TestAPIGetState(t *testing.T) {
	ts := httptest.NewServer(newTestRouter(NewMockEngine()))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var snap game.GameSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if snap.SessionID != "session-1" || len(snap.Enemies) != 1 {
		t.Errorf("Unexpected snapshot: %+v", snap)
	}
}

func TestAPIGetStateMsgpack(t *testing.T) {
	ts := httptest.NewServer(newTestRouter(NewMockEngine()))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/state?format=msgpack")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != contentTypeMsgpack {
		t.Errorf("Expected msgpack content type, got %q", ct)
	}

	var snap game.GameSnapshot
	if err := msgpack.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("Failed to decode msgpack: %v", err)
	}
	if snap.HUD.Score != 200 {
		t.Errorf("Expected score 200, got %d", snap.HUD.Score)
	}
}

func TestAPINotStarted(t *testing.T) {
	engine := NewMockEngine()
	engine.snap = nil
	ts := httptest.NewServer(newTestRouter(engine))
	defer ts.Close()

	for _, path := range []string{"/api/state", "/api/hud", "/api/stats"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503, got %d", path, resp.StatusCode)
		}
	}
}

func TestAPIGetHUD(t *testing.T) {
	ts := httptest.NewServer(newTestRouter(NewMockEngine()))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/hud")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var result struct {
		HUD      game.HUDStats `json:"hud"`
		GameOver bool          `json:"gameOver"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.HUD.EnemyCount != 1 || result.HUD.EnemyCap != 4 || result.HUD.ShieldPercent != 80 {
		t.Errorf("Unexpected HUD %+v", result.HUD)
	}
	if len(result.HUD.Radar) != 1 || result.HUD.Radar[0].Kind != "scout" {
		t.Errorf("Unexpected radar %+v", result.HUD.Radar)
	}
}

func TestAPIGetStats(t *testing.T) {
	ts := httptest.NewServer(newTestRouter(NewMockEngine()))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result["sessionId"] != "session-1" {
		t.Errorf("Expected session id, got %v", result["sessionId"])
	}
	if _, ok := result["eventLog"].(map[string]interface{}); !ok {
		t.Error("Stats should include event log counters")
	}
}

func TestAPIRadarPNG(t *testing.T) {
	ts := httptest.NewServer(newTestRouter(NewMockEngine()))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/radar.png")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %q", ct)
	}
	if _, err := png.Decode(resp.Body); err != nil {
		t.Errorf("Body is not a PNG: %v", err)
	}
}

func TestAPIPostInput(t *testing.T) {
	engine := NewMockEngine()
	ts := httptest.NewServer(newTestRouter(engine))
	defer ts.Close()

	body := bytes.NewReader([]byte(`{"thrust": 2, "yaw": -0.5, "fire": true}`))
	resp, err := http.Post(ts.URL+"/api/input", "application/json", body)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	got, n := engine.lastInput()
	if n != 1 {
		t.Fatalf("Expected one submitted sample, got %d", n)
	}
	if got.Thrust != 1 || got.Yaw != -0.5 || !got.Fire {
		t.Errorf("Sample should be clamped and forwarded, got %+v", got)
	}
}

func TestAPIPostInputMsgpack(t *testing.T) {
	engine := NewMockEngine()
	ts := httptest.NewServer(newTestRouter(engine))
	defer ts.Close()

	payload, err := msgpack.Marshal(game.ControlSample{Brake: 1, Boost: true})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(ts.URL+"/api/input", contentTypeMsgpack, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()

	got, _ := engine.lastInput()
	if got.Brake != 1 || !got.Boost {
		t.Errorf("Unexpected sample %+v", got)
	}
}

func TestAPIPostInputValidation(t *testing.T) {
	engine := NewMockEngine()
	ts := httptest.NewServer(newTestRouter(engine))
	defer ts.Close()

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{invalid}`},
		{"wrong type", `{"thrust": "full"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/input", "application/json", bytes.NewReader([]byte(tt.body)))
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", resp.StatusCode)
			}
		})
	}

	if _, n := engine.lastInput(); n != 0 {
		t.Error("Invalid samples must not reach the engine")
	}
}

func TestAPIRestart(t *testing.T) {
	engine := NewMockEngine()
	ts := httptest.NewServer(newTestRouter(engine))
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/session/restart", "application/json", nil)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()

	if engine.restartCount() != 1 {
		t.Errorf("Expected one restart, got %d", engine.restartCount())
	}

	resp, err = http.Get(ts.URL + "/api/session/restart")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET restart should be rejected, got %d", resp.StatusCode)
	}
}

func TestAPIRateLimited(t *testing.T) {
	router := NewRouter(RouterConfig{
		Engine:          NewMockEngine(),
		DisableLogging:  true,
		RateLimitConfig: &RateLimitConfig{RequestsPerSecond: 1, Burst: 2, CleanupInterval: time.Hour},
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/health", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("Expected 200,200,429 got %v", codes)
	}
}

func TestAPICORS(t *testing.T) {
	router := NewRouter(RouterConfig{
		Engine:          NewMockEngine(),
		DisableLogging:  true,
		CORSOrigins:     []string{"https://arena.example"},
		RateLimitConfig: &RateLimitConfig{RequestsPerSecond: 100, Burst: 100, CleanupInterval: time.Hour},
	})

	req := httptest.NewRequest("GET", "/api/hud", nil)
	req.Header.Set("Origin", "https://arena.example")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://arena.example" {
		t.Errorf("Expected CORS header for allowed origin, got %q", got)
	}

	req = httptest.NewRequest("GET", "/api/hud", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Unexpected CORS header for foreign origin: %q", got)
	}
}
