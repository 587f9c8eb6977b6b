package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/liliang-cn/chatspark/internal/api"
	"github.com/liliang-cn/chatspark/internal/api/widget"
	"github.com/liliang-cn/chatspark/internal/config"
	"github.com/liliang-cn/chatspark/internal/domain"
	"github.com/liliang-cn/chatspark/internal/llm"
	"github.com/liliang-cn/chatspark/internal/repository"
	"github.com/liliang-cn/chatspark/internal/service"
	"github.com/liliang-cn/chatspark/internal/speech"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database (key-value state + telemetry events)
	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	stateRepo := repository.NewStateRepository(db)
	eventRepo := repository.NewEventRepository(db)

	// Completion client; without a key every turn falls back to the canned
	// answer, which keeps the widget usable for local development
	if cfg.LLM.APIKey == "" {
		logger.Warn("No completion API key configured, replies will use the fallback answer")
	}
	completion := llm.NewOpenAIClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)

	// Speech capabilities are probed once at startup
	caps := speech.Probe(cfg.Speech.Input, cfg.Speech.Output)

	// Initialize services
	metrics := service.NewMetricsService(eventRepo, logger)
	store := service.NewSessionStore(stateRepo, logger)
	chatService := service.NewChatService(
		store,
		completion,
		metrics,
		speech.NoopSynthesizer{},
		caps,
		service.ChatSettings{
			Personality: domain.Tone(cfg.Chat.Personality),
			Defensive:   cfg.Chat.DefensiveMode,
			ModelID:     cfg.LLM.Model,
		},
		logger,
	)
	catalog := service.NewModelCatalog(cfg.LLM.Model)

	// Periodic metrics reporting, stopped on shutdown
	reporterCtx, stopReporter := context.WithCancel(context.Background())
	defer stopReporter()
	metrics.StartReporter(reporterCtx, cfg.ReportInterval())

	// Setup router
	widgetHandler := widget.NewHandler(chatService, store, catalog, metrics, caps, speech.NoopTranscriber{})
	router := api.SetupRouter(widgetHandler, api.RouterConfig{
		APIKey:       cfg.Server.APIKey,
		AllowOrigins: []string{"*"},
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting ChatSpark server",
			zap.String("address", cfg.Address()),
			zap.String("base_url", cfg.Server.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopReporter()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
