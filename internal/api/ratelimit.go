package api

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"void-arena/internal/config"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the per-client limiter
type RateLimitConfig struct {
	RequestsPerSecond float64       // Sustained requests per second per IP
	Burst             int           // Maximum burst size
	CleanupInterval   time.Duration // How often idle limiters are dropped
}

// DefaultRateLimitConfig is sized for a pilot posting input at 20 Hz
var DefaultRateLimitConfig = RateLimitConfig{
	RequestsPerSecond: 20,
	Burst:             40,
	CleanupInterval:   5 * time.Minute,
}

// RateLimitConfigFrom derives limiter settings from the server configuration
func RateLimitConfigFrom(cfg config.ServerConfig) RateLimitConfig {
	out := DefaultRateLimitConfig
	if cfg.RateLimitRPS > 0 {
		out.RequestsPerSecond = cfg.RateLimitRPS
	}
	if cfg.RateLimitBurst > 0 {
		out.Burst = cfg.RateLimitBurst
	}
	return out
}

type ipLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // Unix nano
}

// IPRateLimiter applies a token bucket per client IP
type IPRateLimiter struct {
	limiters sync.Map // map[string]*ipLimiterEntry
	config   RateLimitConfig
	stopChan chan struct{}
	stopOnce sync.Once

	rejectedCount uint64 // atomic
	allowedCount  uint64 // atomic
}

// NewIPRateLimiter creates a limiter and its idle-entry sweeper
func NewIPRateLimiter(cfg RateLimitConfig) *IPRateLimiter {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultRateLimitConfig.CleanupInterval
	}
	rl := &IPRateLimiter{
		config:   cfg,
		stopChan: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Stop ends the sweeper
func (rl *IPRateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopChan)
	})
}

func (rl *IPRateLimiter) entry(ip string) *ipLimiterEntry {
	now := time.Now().UnixNano()
	if v, ok := rl.limiters.Load(ip); ok {
		e := v.(*ipLimiterEntry)
		e.lastSeen.Store(now)
		return e
	}

	e := &ipLimiterEntry{
		limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst),
	}
	e.lastSeen.Store(now)
	actual, _ := rl.limiters.LoadOrStore(ip, e)
	return actual.(*ipLimiterEntry)
}

func (rl *IPRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopChan:
			return
		case now := <-ticker.C:
			rl.sweep(now.Add(-2 * rl.config.CleanupInterval))
		}
	}
}

// sweep drops limiters idle since before cutoff
func (rl *IPRateLimiter) sweep(cutoff time.Time) int {
	removed := 0
	rl.limiters.Range(func(key, value interface{}) bool {
		if value.(*ipLimiterEntry).lastSeen.Load() < cutoff.UnixNano() {
			rl.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Allow consumes a token for ip
func (rl *IPRateLimiter) Allow(ip string) bool {
	if rl.entry(ip).limiter.Allow() {
		atomic.AddUint64(&rl.allowedCount, 1)
		return true
	}
	atomic.AddUint64(&rl.rejectedCount, 1)
	return false
}

// Middleware rejects requests over the client's budget with 429
func (rl *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(GetClientIP(r)) {
			RecordConnectionRejected("rate_limit")
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetStats returns limiter counters
func (rl *IPRateLimiter) GetStats() map[string]uint64 {
	return map[string]uint64{
		"allowed":  atomic.LoadUint64(&rl.allowedCount),
		"rejected": atomic.LoadUint64(&rl.rejectedCount),
	}
}

// GetClientIP extracts the client IP, honouring X-Forwarded-For and
// X-Real-IP. Those headers can be spoofed unless a trusted proxy sets them.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// ConnLimiter caps concurrent WebSocket connections per IP
type ConnLimiter struct {
	connections sync.Map // map[string]*atomic.Int32
	maxPerIP    int32

	rejectedCount uint64 // atomic
}

// NewConnLimiter creates a per-IP connection cap
func NewConnLimiter(maxPerIP int) *ConnLimiter {
	return &ConnLimiter{maxPerIP: int32(maxPerIP)}
}

// Acquire reserves a slot for ip
func (cl *ConnLimiter) Acquire(ip string) bool {
	v, _ := cl.connections.LoadOrStore(ip, new(atomic.Int32))
	counter := v.(*atomic.Int32)

	for {
		current := counter.Load()
		if current >= cl.maxPerIP {
			atomic.AddUint64(&cl.rejectedCount, 1)
			return false
		}
		if counter.CompareAndSwap(current, current+1) {
			return true
		}
	}
}

// Release frees a slot for ip
func (cl *ConnLimiter) Release(ip string) {
	if v, ok := cl.connections.Load(ip); ok {
		v.(*atomic.Int32).Add(-1)
	}
}

// Count returns the open connections for ip
func (cl *ConnLimiter) Count(ip string) int {
	if v, ok := cl.connections.Load(ip); ok {
		return int(v.(*atomic.Int32).Load())
	}
	return 0
}

// DefaultOrigins are accepted when no CORS origins are configured
var DefaultOrigins = []string{
	"http://localhost:*",
	"http://127.0.0.1:*",
}

// OriginPolicy decides which browser origins may open a WebSocket. Patterns
// follow the CORS syntax: one "*" wildcard per entry.
type OriginPolicy struct {
	patterns []string
}

// NewOriginPolicy builds a policy; empty patterns use DefaultOrigins
func NewOriginPolicy(patterns []string) OriginPolicy {
	return OriginPolicy{patterns: resolveOrigins(patterns)}
}

// Allow reports whether origin may connect. Requests without an Origin
// header come from non-browser clients and are accepted.
func (p OriginPolicy) Allow(origin string) bool {
	if origin == "" {
		return true
	}
	for _, pattern := range p.patterns {
		if pattern == "*" || pattern == origin {
			return true
		}
		prefix, suffix, wild := strings.Cut(pattern, "*")
		if wild && len(origin) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}
