package api

import (
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"strconv"
	"time"

	"void-arena/internal/config"
	"void-arena/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality: labels only take enum values
var (
	// Simulation metrics
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_tick_duration_seconds",
		Help:    "Time spent in one simulation tick",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
	})

	enemyCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_enemies",
		Help: "Live enemy population",
	})

	projectileCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_projectiles",
		Help: "Live projectiles",
	})

	particleCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_particles",
		Help: "Live explosion particles",
	})

	scoreGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_score",
		Help: "Score of the current run",
	})

	shieldGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_shield",
		Help: "Ship shield of the current run",
	})

	gameOverGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_game_over",
		Help: "1 while the current run is over",
	})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_events_total",
		Help: "Simulation events by kind",
	}, []string{"kind"}) // Bounded: game.EventType names

	// Event log metrics
	eventLogTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "event_log_accepted",
		Help: "Events accepted by the journal since start",
	})

	eventLogDropped = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "event_log_dropped",
		Help: "Events dropped by rate limiting or a full buffer since start",
	})

	// Rejections - bounded label values only
	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // Bounded: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit"

	// HTTP metrics
	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is the route pattern, not the URL

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	// WebSocket metrics
	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "WebSocket messages by direction",
	}, []string{"direction"}) // "out", "in"
)

// StartDebugServer serves pprof, /metrics and /health on a loopback address.
// Non-loopback addresses are refused unless ALLOW_DEBUG_EXTERNAL=true.
func StartDebugServer(cfg config.DebugConfig) error {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	addr := cfg.ListenAddr
	if !isLoopback(addr) && os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
		log.Printf("⚠️ Debug address %s is not loopback, forcing %s", addr, config.DefaultDebug().ListenAddr)
		addr = config.DefaultDebug().ListenAddr
	}

	handler := DebugHandler()
	go func() {
		log.Printf("📊 Debug server starting on %s", addr)
		log.Printf("   - pprof:   http://%s/debug/pprof/", addr)
		log.Printf("   - metrics: http://%s/metrics", addr)

		if err := http.ListenAndServe(addr, handler); err != nil {
			log.Printf("⚠️ Debug server error: %v", err)
		}
	}()

	return nil
}

// DebugHandler returns the debug mux
func DebugHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}

func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// ObserveTick records one engine tick. Install with Engine.SetTickObserver.
func ObserveTick(stats game.TickStats) {
	tickDuration.Observe(stats.Duration.Seconds())
	enemyCount.Set(float64(stats.Enemies))
	projectileCount.Set(float64(stats.Projectiles))
	particleCount.Set(float64(stats.Particles))
	scoreGauge.Set(float64(stats.Score))
	shieldGauge.Set(stats.Shield)
	if stats.GameOver {
		gameOverGauge.Set(1)
	} else {
		gameOverGauge.Set(0)
	}
}

// MetricsSink counts simulation events by kind
type MetricsSink struct{}

// HandleEvent implements game.EventSink
func (MetricsSink) HandleEvent(ev game.Event) {
	eventsTotal.WithLabelValues(ev.Type.String()).Inc()
}

// UpdateEventLogStats mirrors journal counters into gauges
func UpdateEventLogStats(total, dropped uint64) {
	eventLogTotal.Set(float64(total))
	eventLogDropped.Set(float64(dropped))
}

// RecordConnectionRejected increments the rejection counter
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
}

// MetricsMiddleware records latency and status per route pattern
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordRequest(r.Method, endpoint, status, time.Since(start))
	})
}

// UpdateWSConnections updates the WebSocket connection gauge
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// RecordWSMessage counts a WebSocket message; direction is "in" or "out"
func RecordWSMessage(direction string) {
	wsMessagesTotal.WithLabelValues(direction).Inc()
}
