package api

import (
	"net/http"

	"void-arena/internal/game"
	"void-arena/internal/radar"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// EngineInterface defines the simulation methods used by the API.
// Keep this minimal so tests can mock it without a running loop.
type EngineInterface interface {
	// GetSnapshot returns the latest immutable frame, nil before start
	GetSnapshot() *game.GameSnapshot
	// SubmitInput replaces the pilot's control sample
	SubmitInput(game.ControlSample)
	// Restart begins a fresh run
	Restart()
	// IsGameOver reports whether the current run has ended
	IsGameOver() bool
	// GetEventLogStats returns journal counters
	GetEventLogStats() map[string]interface{}
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
//
// Example usage in tests:
//
//	router := api.NewRouter(api.RouterConfig{
//	    Engine: mockEngine,
//	    RateLimitConfig: &api.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
//	})
//	ts := httptest.NewServer(router)
type RouterConfig struct {
	// Engine is the simulation (required)
	Engine EngineInterface

	// Radar renders /api/radar.png. If nil, a default-size renderer is used.
	Radar *radar.Renderer

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is only used if RateLimiter is nil.
	// If both are nil, DefaultRateLimitConfig applies.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional list of allowed origins.
	// If nil, only local development origins are allowed.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (useful for benchmarks).
	DisableLogging bool
}

// routerHandlers holds what the route handlers need
type routerHandlers struct {
	engine EngineInterface
	radar  *radar.Renderer
}

// NewRouter constructs the HTTP router with all middleware and routes.
//
// IMPORTANT: This function has no side effects beyond the rate limiter's
// cleanup goroutine. No listeners are opened and the simulation is not
// started, so it is safe to use with httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware - Order matters!
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting before CORS to reject early
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   resolveOrigins(cfg.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(MetricsMiddleware)

	renderer := cfg.Radar
	if renderer == nil {
		renderer = radar.NewRenderer(0)
	}
	h := &routerHandlers{
		engine: cfg.Engine,
		radar:  renderer,
	}

	r.Route("/api", func(r chi.Router) {
		// Read side: lock-free snapshot views
		r.Get("/state", h.handleGetState)
		r.Get("/hud", h.handleGetHUD)
		r.Get("/stats", h.handleGetStats)
		r.Get("/radar.png", h.handleGetRadar)

		// Control
		r.Post("/input", h.handlePostInput)
		r.Post("/session/restart", h.handleRestart)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})

	return r
}

// resolveOrigins returns the configured origins or the local defaults
func resolveOrigins(origins []string) []string {
	if len(origins) > 0 {
		return origins
	}
	return DefaultOrigins
}
