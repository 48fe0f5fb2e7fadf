package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"void-arena/internal/config"
	"void-arena/internal/radar"

	"github.com/go-chi/chi/v5"
)

// Server is the HTTP API plus the WebSocket hub.
type Server struct {
	engine      EngineInterface
	cfg         config.ServerConfig
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
	httpServer  *http.Server
}

// NewServer builds the server. Background workers do not start until Start.
func NewServer(engine EngineInterface, cfg config.ServerConfig) *Server {
	s := &Server{
		engine:      engine,
		cfg:         cfg,
		wsHub:       NewWebSocketHub(engine, NewOriginPolicy(cfg.CORSOrigins)),
		rateLimiter: NewIPRateLimiter(RateLimitConfigFrom(cfg)),
	}

	s.router = NewRouter(RouterConfig{
		Engine:      engine,
		Radar:       radar.NewRenderer(0),
		RateLimiter: s.rateLimiter,
		CORSOrigins: cfg.CORSOrigins,
	})
	s.router.Get("/ws", s.wsHub.HandleWebSocket)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start runs the hub, the broadcast loop and the HTTP listener. It blocks
// until Shutdown; a clean shutdown returns nil.
func (s *Server) Start() error {
	go s.wsHub.Run()
	s.wsHub.StartBroadcastLoop(s.cfg.BroadcastEvery)

	addr := s.httpServer.Addr
	log.Printf("🌐 API server starting on http://localhost%s", addr)
	log.Printf("📡 WebSocket: ws://localhost%s/ws", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Router returns the HTTP handler for use with httptest
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub exposes the WebSocket hub
func (s *Server) Hub() *WebSocketHub {
	return s.wsHub
}

// Shutdown stops accepting requests, closes WebSockets and background workers
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHub.Stop()
	s.rateLimiter.Stop()
	return s.httpServer.Shutdown(ctx)
}
