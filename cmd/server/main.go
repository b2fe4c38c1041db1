package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/intellidocs/intellidocs/internal/api"
	"github.com/intellidocs/intellidocs/internal/config"
	"github.com/intellidocs/intellidocs/internal/core"
	"github.com/intellidocs/intellidocs/internal/store"
	"github.com/intellidocs/intellidocs/internal/vector"
)

func newLogger(level string) (*zap.Logger, error) {
	if level == "DEBUG" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	// Load configuration
	config.LoadConfig()

	logger, err := newLogger(config.AppConfig.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Initialize conversation/status store
	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer dbStore.Close()

	// Initialize the chunk vector index (same SQLite file, own table)
	index, err := vector.NewSQLiteIndex(config.AppConfig.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("failed to initialize vector index", zap.Error(err))
	}
	defer index.Close()

	// One shared Gemini client for embeddings, routing and generation
	llmService, err := core.NewLLMService(context.Background(), config.AppConfig.GeminiAPIKey, logger)
	if err != nil {
		logger.Fatal("failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	ingestService, err := core.NewIngestService(
		llmService, index, dbStore,
		config.AppConfig.ChunkSize, config.AppConfig.ChunkOverlap,
		logger)
	if err != nil {
		logger.Fatal("invalid ingestion configuration", zap.Error(err))
	}

	router := core.NewRouter(llmService, logger)
	answerService := core.NewAnswerService(
		dbStore, router, llmService, index, llmService,
		config.AppConfig.RetrievalTopK, config.AppConfig.HistoryWindow,
		logger)
	chatService := core.NewChatService(dbStore, answerService, logger)

	apiHandler := api.NewAPIHandler(chatService, ingestService, dbStore, index, logger)
	httpRouter := api.NewRouter(apiHandler)

	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      httpRouter,
		ReadTimeout:  15 * time.Second, // Adjusted for potentially slower LLM handshakes
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		logger.Info("starting server", zap.String("addr", serverAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server stopped unexpectedly", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Give active connections time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exiting gracefully")
}
