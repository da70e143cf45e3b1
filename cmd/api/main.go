package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"rationbook/internal/api"
	"rationbook/internal/cache"
	"rationbook/internal/config"
	"rationbook/internal/google"
	"rationbook/internal/metrics"
	"rationbook/internal/ration"
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

	logger := newLogger(cfg.Monitoring.LogLevel)

	if cfg.Google.CredentialsFile == "" || cfg.Google.SpreadsheetID == "" {
		log.Fatal("Google credentials file and spreadsheet id must be set in config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sheets, err := google.NewSheetsService(ctx,
		cfg.Google.CredentialsFile,
		cfg.Google.SpreadsheetID,
		cfg.Google.RationsSheet,
		cfg.Google.NamelistSheet,
	)
	if err != nil {
		log.Fatalf("Error initializing Google Sheets service: %v", err)
	}
	if err := sheets.TestConnection(ctx); err != nil {
		log.Fatalf("Google Sheets connection test failed: %v", err)
	}

	svc := ration.NewService(sheets, nil, logger)
	namelistCache := cache.New(time.Duration(cfg.Namelist.CacheTTLSeconds)*time.Second, nil)
	handler := api.NewHandler(svc, sheets, namelistCache, logger)
	server := api.NewServer(cfg.Server.Port, handler)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort)
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Printf("HTTP server stopped: %v", err)
		}
	}()
	log.Printf("API server started on :%d", cfg.Server.Port)

	<-ctx.Done()
	log.Println("Shutdown signal received...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("API server stopped")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

func startMetricsServer(ctx context.Context, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("metrics server error: %v", err)
	}
}
