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

	"github.com/joho/godotenv"

	"github.com/pulsepoly/pulsepoly/internal/assistant"
	"github.com/pulsepoly/pulsepoly/internal/config"
	"github.com/pulsepoly/pulsepoly/internal/dataapi"
	"github.com/pulsepoly/pulsepoly/internal/gamma"
	"github.com/pulsepoly/pulsepoly/internal/jupiter"
	"github.com/pulsepoly/pulsepoly/internal/logger"
	"github.com/pulsepoly/pulsepoly/internal/savedqueries"
	"github.com/pulsepoly/pulsepoly/internal/search"
	"github.com/pulsepoly/pulsepoly/internal/server"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	// Optional .env for local development; missing file is fine
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.Init(logger.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		FilePath:   cfg.Logging.FilePath,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	appLog.WithField("path", *configPath).Info("Configuration loaded")

	gammaClient := gamma.NewClient(cfg.Gamma.BaseURL, cfg.Gamma.Timeout, appLog)
	boardClient := dataapi.NewClient(cfg.DataAPI.BaseURL, cfg.DataAPI.Timeout)

	var aggregator search.AggregatorSource
	if cfg.Jupiter.Enabled {
		aggregator = jupiter.NewClient(cfg.Jupiter.BaseURL, cfg.Jupiter.Timeout, appLog)
	}

	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if !cfg.Assistant.Enabled {
		apiKey = ""
	}
	aiClient := assistant.NewClient(cfg.Assistant.BaseURL, apiKey, cfg.Assistant.Model, cfg.Assistant.Timeout)
	if apiKey == "" {
		appLog.Info("Assistant disabled, search runs without keyword suggestions")
	}

	store := savedqueries.New(cfg.SavedQueries.FilePath, 0o644, 0o755)
	if err := store.Load(); err != nil {
		appLog.WithError(err).Warn("Failed to load saved queries, starting fresh")
	}

	var suggester search.KeywordSuggester
	if apiKey != "" {
		suggester = aiClient
	}
	svc := search.NewService(gammaClient, aggregator, suggester, store, cfg.Search.ItemsPerPage, appLog)

	srv := server.New(svc, boardClient, aiClient, store, appLog)
	httpServer := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		appLog.WithField("addr", cfg.Server.ListenAddr).Info("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-sigChan
	appLog.Info("Shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		appLog.WithError(err).Error("Shutdown did not complete cleanly")
	}
	appLog.Info("Service stopped")
}
