// Package config provides centralized configuration management.
// Every tunable of the simulation and its outer surfaces lives here.
//
// When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// SIMULATION CONFIGURATION
// =============================================================================

// SimConfig holds the gameplay kernel settings.
type SimConfig struct {
	TickRate      int     // Simulation ticks per second for the real-time loop
	Seed          int64   // RNG seed (0 = time based)
	MaxDelta      float64 // Upper clamp on a single tick delta in seconds
	MaxEnemies    int     // Population cap
	MinEnemies    int     // Population floor below which spawns are forced
	SpawnInterval float64 // Seconds between spawn evaluations
	SpawnChance   float64 // Probability of spawning while at or above the floor
	MaxShield     float64 // Full shield value
}

// DefaultSim returns the default simulation configuration.
func DefaultSim() SimConfig {
	return SimConfig{
		TickRate:      60,
		Seed:          0,
		MaxDelta:      0.1,
		MaxEnemies:    4,
		MinEnemies:    1,
		SpawnInterval: 4.0,
		SpawnChance:   0.7,
		MaxShield:     100,
	}
}

// SimFromEnv returns simulation configuration with environment variable overrides.
// Environment variables take precedence over defaults.
func SimFromEnv() SimConfig {
	cfg := DefaultSim()

	if tr := getEnvInt("TICK_RATE", 0); tr > 0 {
		cfg.TickRate = tr
	}
	if seed := getEnvInt64("SIM_SEED", 0); seed != 0 {
		cfg.Seed = seed
	}
	if me := getEnvInt("MAX_ENEMIES", 0); me > 0 {
		cfg.MaxEnemies = me
	}
	if si := getEnvFloat("SPAWN_INTERVAL", 0); si > 0 {
		cfg.SpawnInterval = si
	}

	return cfg
}

// =============================================================================
// RESOURCE LIMITS
// =============================================================================

// ResourceLimits bounds per-tick allocations.
type ResourceLimits struct {
	MaxProjectiles int // Maximum live projectiles (player and enemy combined)
	MaxParticles   int // Maximum live explosion particles
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		MaxProjectiles: 256,
		MaxParticles:   300,
	}
}

// =============================================================================
// AUDIO CONFIGURATION
// =============================================================================

// AudioConfig holds audio cue settings.
type AudioConfig struct {
	SampleRate int     // Audio sample rate in Hz
	Volume     float64 // Master volume (0.0 to 1.0)
	Enabled    bool    // Whether cues are played
}

// DefaultAudio returns the default audio configuration.
func DefaultAudio() AudioConfig {
	return AudioConfig{
		SampleRate: 44100,
		Volume:     0.25,
		Enabled:    true,
	}
}

// AudioFromEnv returns audio configuration with environment variable overrides.
func AudioFromEnv() AudioConfig {
	cfg := DefaultAudio()

	if v := getEnvFloat("AUDIO_VOLUME", -1); v >= 0 {
		cfg.Volume = v
	}
	if os.Getenv("AUDIO_ENABLED") == "false" {
		cfg.Enabled = false
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	BroadcastEvery time.Duration // WebSocket snapshot period
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:           3000,
		RateLimitRPS:   20,
		RateLimitBurst: 40,
		BroadcastEvery: 50 * time.Millisecond,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
	if rps := getEnvFloat("RATE_LIMIT_RPS", 0); rps > 0 {
		cfg.RateLimitRPS = rps
	}
	if burst := getEnvInt("RATE_LIMIT_BURST", 0); burst > 0 {
		cfg.RateLimitBurst = burst
	}

	return cfg
}

// =============================================================================
// DEBUG SERVER CONFIGURATION
// =============================================================================

// DebugConfig configures the pprof/metrics listener.
type DebugConfig struct {
	Enabled    bool
	ListenAddr string // Keep on loopback
}

// DefaultDebug returns the default debug configuration.
func DefaultDebug() DebugConfig {
	return DebugConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// DebugFromEnv returns debug configuration with environment variable overrides.
func DebugFromEnv() DebugConfig {
	cfg := DefaultDebug()

	if addr := os.Getenv("DEBUG_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if getEnvBool("DISABLE_DEBUG_SERVER", false) {
		cfg.Enabled = false
	}

	return cfg
}

// =============================================================================
// ASSET CONFIGURATION
// =============================================================================

// AssetsConfig locates files consumed or produced at runtime.
type AssetsConfig struct {
	EnemyModelsDir string // Directory holding enemy model files ("" = assume all present)
	EventLogPath   string // JSONL event journal ("" = disabled)
}

// DefaultAssets returns the default asset configuration.
func DefaultAssets() AssetsConfig {
	return AssetsConfig{
		EnemyModelsDir: "",
		EventLogPath:   "events.jsonl",
	}
}

// AssetsFromEnv returns asset configuration with environment variable overrides.
func AssetsFromEnv() AssetsConfig {
	cfg := DefaultAssets()

	if dir := os.Getenv("ENEMY_MODELS_DIR"); dir != "" {
		cfg.EnemyModelsDir = dir
	}
	if path, ok := os.LookupEnv("EVENT_LOG_PATH"); ok {
		cfg.EventLogPath = path
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Sim    SimConfig
	Limits ResourceLimits
	Audio  AudioConfig
	Server ServerConfig
	Debug  DebugConfig
	Assets AssetsConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Sim:    SimFromEnv(),
		Limits: DefaultLimits(),
		Audio:  AudioFromEnv(),
		Server: ServerFromEnv(),
		Debug:  DebugFromEnv(),
		Assets: AssetsFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}
