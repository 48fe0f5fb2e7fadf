package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"void-arena/internal/assets"
	"void-arena/internal/audio"
	"void-arena/internal/config"
	"void-arena/internal/game"
	"void-arena/internal/tui"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(".env"); err == nil {
		log.Println("✅ Loaded environment from .env")
	}

	appConfig := config.Load()

	// The screen owns the terminal, so logs go to a file
	if logFile, err := os.OpenFile("arena-tui.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}

	engine := game.NewEngine(game.EngineConfig{
		Sim:     appConfig.Sim,
		Limits:  appConfig.Limits,
		Catalog: assets.Load(appConfig.Assets.EnemyModelsDir),
	})

	if path := appConfig.Assets.EventLogPath; path != "" {
		if err := engine.StartEventLog(path); err != nil {
			log.Printf("⚠️ Event log disabled: %v", err)
		}
	}

	cues := audio.NewCuePlayer(appConfig.Audio)
	if err := cues.Init(); err != nil {
		log.Printf("⚠️ Audio output unavailable: %v", err)
	}
	cues.Start()
	engine.AddSink(cues)

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize screen: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine.Start()
	tui.NewHost(screen, engine).Run(ctx)

	screen.Fini()
	engine.Stop()
	engine.StopEventLog()
	cues.Stop()

	if snap := engine.GetSnapshot(); snap != nil {
		fmt.Printf("Final score %d after %.1fs\n", snap.HUD.Score, snap.HUD.Elapsed)
	}
}
