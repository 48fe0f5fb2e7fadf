package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"void-arena/internal/game"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	maxInputBody       = 1 << 10
	contentTypeMsgpack = "application/msgpack"
)

// Handler methods for routerHandlers

func (h *routerHandlers) snapshot(w http.ResponseWriter) *game.GameSnapshot {
	snap := h.engine.GetSnapshot()
	if snap == nil {
		writeError(w, "Simulation not started", http.StatusServiceUnavailable)
	}
	return snap
}

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}
	if wantsMsgpack(r) {
		writeMsgpack(w, snap)
		return
	}
	writeJSON(w, snap)
}

func (h *routerHandlers) handleGetHUD(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}
	writeJSON(w, map[string]interface{}{
		"hud":          snap.HUD,
		"boosting":     snap.Ship.Boosting,
		"damageFlash":  snap.Ship.DamageFlash > 0,
		"gameOver":     snap.GameOver,
		"finalScore":   snap.FinalScore,
		"survivalTime": snap.SurvivalTime,
	})
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.snapshot(w)
	if snap == nil {
		return
	}
	writeJSON(w, map[string]interface{}{
		"sessionId":   snap.SessionID,
		"tickNumber":  snap.TickNumber,
		"sequence":    snap.Sequence,
		"enemies":     len(snap.Enemies),
		"projectiles": len(snap.Projectiles),
		"particles":   len(snap.Particles),
		"gameOver":    snap.GameOver,
		"eventLog":    h.engine.GetEventLogStats(),
	})
}

func (h *routerHandlers) handleGetRadar(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := h.radar.EncodePNG(w, h.engine.GetSnapshot()); err != nil {
		log.Printf("⚠️ Radar render failed: %v", err)
	}
}

func (h *routerHandlers) handlePostInput(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxInputBody))
	if err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	var sample game.ControlSample
	if strings.HasPrefix(r.Header.Get("Content-Type"), contentTypeMsgpack) {
		err = msgpack.Unmarshal(body, &sample)
	} else {
		err = json.Unmarshal(body, &sample)
	}
	if err != nil {
		writeError(w, "Invalid control sample", http.StatusBadRequest)
		return
	}

	h.engine.SubmitInput(sample.Clamp())
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleRestart(w http.ResponseWriter, r *http.Request) {
	log.Println("🔄 Session restart requested via API")
	h.engine.Restart()
	writeJSON(w, map[string]bool{"success": true})
}

// Helper functions (package-level for reuse)

func wantsMsgpack(r *http.Request) bool {
	return r.URL.Query().Get("format") == "msgpack" ||
		strings.Contains(r.Header.Get("Accept"), contentTypeMsgpack)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeMsgpack(w http.ResponseWriter, data interface{}) {
	payload, err := msgpack.Marshal(data)
	if err != nil {
		writeError(w, "Encoding failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeMsgpack)
	w.Write(payload)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
