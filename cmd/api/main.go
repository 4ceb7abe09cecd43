package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/chronicle-engine/internal/config"
	"github.com/jwebster45206/chronicle-engine/internal/handlers"
	"github.com/jwebster45206/chronicle-engine/internal/logger"
	"github.com/jwebster45206/chronicle-engine/internal/processor"
	"github.com/jwebster45206/chronicle-engine/internal/services"
	internalstorage "github.com/jwebster45206/chronicle-engine/internal/storage"
	"github.com/jwebster45206/chronicle-engine/internal/turnlock"
	"github.com/jwebster45206/chronicle-engine/pkg/state"
	"github.com/jwebster45206/chronicle-engine/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Chronicle Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName,
		"storage_backend", cfg.StorageBackend)

	llmService, err := newLLMService(cfg, log)
	if err != nil {
		logger.WithError(log, err).Error("Failed to configure LLM provider")
		os.Exit(1)
	}

	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		logger.WithError(log, err).Error("Failed to load reconciliation rules", "path", cfg.RulesPath)
		os.Exit(1)
	}

	store, lock, err := newStorage(cfg, log)
	if err != nil {
		logger.WithError(log, err).Error("Failed to open storage")
		os.Exit(1)
	}

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.Ping(storageCtx); err != nil {
		logger.WithError(log, err).Error("Failed to connect to storage")
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	// Initialize the model on startup
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := llmService.InitModel(ctx, cfg.ModelName); err != nil {
		logger.WithError(log, err).Error("Failed to initialize LLM model", "model", cfg.ModelName)
		os.Exit(1)
	}

	worker := state.NewTurnWorker(rules).WithLogger(log)
	proc := processor.NewTurnProcessor(store, llmService, lock, worker, processor.Options{
		SummaryInterval: cfg.SummaryInterval,
		HistoryWindow:   cfg.HistoryWindow,
		OracleTimeout:   cfg.OracleTimeout,
	}, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	gameStateHandler := handlers.NewGameStateHandler(proc, log)
	mux.Handle("/v1/gamestate", gameStateHandler)
	mux.Handle("/v1/gamestate/", gameStateHandler)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handlers.RequestLogger(log, mux),
		ReadTimeout: 15 * time.Second,
		// A turn may wait on the narrator twice: the turn and a summary.
		WriteTimeout: turnBudget(cfg),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(log, err).Error("Server failed to start")
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(log, err).Error("Server forced to shutdown")
	}

	// Close storage after in-flight turns have saved
	if err := store.Close(); err != nil {
		logger.WithError(log, err).Error("Error closing storage connection")
	}

	log.Info("Server exited")
}

func newLLMService(cfg *config.Config, log *slog.Logger) (services.LLMService, error) {
	switch cfg.LLMProvider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required when using the anthropic provider")
		}
		log.Info("Using Anthropic LLM provider")
		return services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, cfg.BackendModelName, log), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when using the openai provider")
		}
		log.Info("Using OpenAI LLM provider")
		return services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.ModelName, cfg.BackendModelName, log), nil
	case "mock":
		log.Warn("Using mock LLM provider; every turn returns a canned reply")
		return services.NewMockLLMAPI(), nil
	default:
		return nil, fmt.Errorf("invalid LLM provider %q, supported: anthropic, openai, mock", cfg.LLMProvider)
	}
}

// newStorage opens the configured backend. Redis deployments share the turn
// lock through Redis; a SQLite file serves a single process.
func newStorage(cfg *config.Config, log *slog.Logger) (storage.Storage, turnlock.Lock, error) {
	switch cfg.StorageBackend {
	case "sqlite":
		store, err := internalstorage.OpenSQLiteStorage(cfg.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}
		return store, turnlock.NewLocalLock(), nil
	default:
		store := internalstorage.NewRedisStorage(cfg.RedisURL, cfg.GameStateTTL, log)
		lock := turnlock.NewRedisLock(store.Client(), turnBudget(cfg)).OnReleaseError(func(err error) {
			logger.WithError(log, err).Warn("Turn lock release failed")
		})
		return store, lock, nil
	}
}

// turnBudget is the longest a single turn can hold its game.
func turnBudget(cfg *config.Config) time.Duration {
	return 2*cfg.OracleTimeout + 30*time.Second
}
