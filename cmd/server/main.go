package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"void-arena/internal/api"
	"void-arena/internal/assets"
	"void-arena/internal/audio"
	"void-arena/internal/config"
	"void-arena/internal/game"

	"github.com/joho/godotenv"
)

const (
	statsInterval   = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🚀 ================================")
	log.Println("🚀  VOID ARENA - SIMULATION SERVER")
	log.Println("🚀 ================================")

	appConfig := config.Load()
	simCfg := appConfig.Sim
	log.Printf("🎮 Config: %d TPS, %d-%d enemies, spawn every %.1fs", simCfg.TickRate, simCfg.MinEnemies, simCfg.MaxEnemies, simCfg.SpawnInterval)
	log.Printf("🛡️ Resource limits: %d projectiles, %d particles", appConfig.Limits.MaxProjectiles, appConfig.Limits.MaxParticles)

	catalog := assets.Load(appConfig.Assets.EnemyModelsDir)

	engine := game.NewEngine(game.EngineConfig{
		Sim:     simCfg,
		Limits:  appConfig.Limits,
		Catalog: catalog,
	})

	// Start event log
	if path := appConfig.Assets.EventLogPath; path != "" {
		if err := engine.StartEventLog(path); err != nil {
			log.Printf("⚠️ Event log disabled: %v", err)
		} else {
			log.Printf("📝 Event log: %s", path)
		}
	} else {
		log.Println("📝 Event log disabled (EVENT_LOG_PATH empty)")
	}

	// Audio cues
	cues := audio.NewCuePlayer(appConfig.Audio)
	if err := cues.Init(); err != nil {
		log.Printf("⚠️ Audio output unavailable, cues stay headless: %v", err)
	}
	cues.Start()
	engine.AddSink(cues)

	// Metrics
	engine.AddSink(api.MetricsSink{})
	engine.SetTickObserver(api.ObserveTick)

	if err := api.StartDebugServer(appConfig.Debug); err != nil {
		log.Printf("⚠️ Debug server disabled: %v", err)
	}

	server := api.NewServer(engine, appConfig.Server)

	engine.Start()
	log.Println("✅ Simulation started")

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	stopStats := make(chan struct{})
	go reportEventLog(engine, stopStats)

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	close(stopStats)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️ Server shutdown: %v", err)
	}

	engine.Stop()
	engine.StopEventLog()
	cues.Stop()
	log.Println("👋 Goodbye!")
}

// reportEventLog mirrors journal counters into metrics until stop closes
func reportEventLog(engine *game.Engine, stop <-chan struct{}) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			api.UpdateEventLogStats(engine.EventLogCounts())
		}
	}
}
