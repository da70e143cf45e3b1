package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"rationbook/internal/bot"
	"rationbook/internal/client"
	"rationbook/internal/config"
	"rationbook/internal/planner"
	"rationbook/internal/repository"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	if cfg.Telegram.BotToken == "" || cfg.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		log.Fatal("Set the bot token in config.yaml")
	}
	if cfg.Telegram.APIBaseURL == "" {
		log.Fatal("Set the API base URL in config.yaml")
	}

	logger := newLogger(cfg.Monitoring.LogLevel)

	if err := os.MkdirAll(cfg.Exports.Path, 0755); err != nil {
		log.Fatalf("Error creating export directory: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Drafts survive restarts only with Redis behind them; without it the
	// bot still works off in-memory state.
	var store planner.Store
	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		log.Printf("Redis unavailable (%v), falling back to in-memory drafts", err)
		store = planner.NewMemoryStore()
	} else {
		store = repository.NewPlannerStore(redisClient, 30*24*time.Hour, logger)
		defer redisClient.Close()
	}

	apiClient := client.NewClient(cfg.Telegram.APIBaseURL)

	b, err := bot.New(cfg.Telegram.BotToken, apiClient, store, cfg.Managers, cfg.Exports.Path, logger)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	log.Println("Bot started")
	b.Start(ctx)
	log.Println("Bot stopped")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}
