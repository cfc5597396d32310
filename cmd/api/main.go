package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Marlvin12/perfit/internal/app"
	"github.com/Marlvin12/perfit/internal/config"
	"github.com/Marlvin12/perfit/internal/logging"
	"github.com/Marlvin12/perfit/server"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	configFlag := flag.String("config", "", "Config file path (default: ./config.yaml or ./config/config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// API_PORT is kept for existing deployments
	if envPort := os.Getenv("API_PORT"); envPort != "" {
		cfg.Server.Port = envPort
	}

	logger, logCloser := logging.New(cfg.Log)
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to start: %v", err)
	}
	defer application.Close()

	srv := server.New(application.Router, application.Registry, logger, cfg.Server.AllowedOrigins)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Shutdown failed: %v", err)
		}
	}()

	logger.Infof("Starting API server on port %s", cfg.Server.Port)
	logger.Info("Available endpoints:")
	logger.Info("  POST /messages - Dispatch an extension message")
	logger.Info("  POST /detect   - Detect the product on a page")
	logger.Info("  GET  /sites    - List supported stores")
	logger.Info("  GET  /health   - Health check")

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("Server failed: %v", err)
	}
	logger.Info("Server stopped")
}
