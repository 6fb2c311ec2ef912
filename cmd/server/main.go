// Package main is the entry point for the artrogue HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/artrogue/artrogue/internal/config"
	"github.com/artrogue/artrogue/internal/llm"
	"github.com/artrogue/artrogue/internal/model"
	"github.com/artrogue/artrogue/internal/museum"
	"github.com/artrogue/artrogue/internal/server"
	"github.com/artrogue/artrogue/internal/service"
	"github.com/artrogue/artrogue/internal/session"
	"github.com/artrogue/artrogue/internal/storage"
)

func main() {
	// run() is separate so deferred cleanup executes before os.Exit.
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := os.Getenv("ARTROGUE_CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// zap outputs JSON in production and human-readable format in development.
	var logger *zap.Logger
	if cfg.Log.Level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	// Sync commonly fails on stdout/stderr; the error is not a real problem.
	defer func() { _ = logger.Sync() }()

	// History database
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DatabasePath), 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	db, err := storage.NewDatabase(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	searchRepo := storage.NewSearchRepository(db)
	chatCallRepo := storage.NewChatCallRepository(db)

	// Museum providers
	timeout := time.Duration(cfg.Museum.TimeoutSeconds) * time.Second
	providers := museum.Registry{
		model.MuseumMET: museum.NewMETProvider(cfg.Museum.METBaseURL, cfg.Museum.SampleSize, timeout, logger),
		model.MuseumCMA: museum.NewCMAProvider(cfg.Museum.CMABaseURL, cfg.Museum.SampleSize, timeout, logger),
	}

	// Chat backends in configured order. No keys means no clients — the
	// streamer then answers with its not-configured notice instead of failing.
	clients := buildChatClients(cfg, logger)
	streamer := llm.NewStreamer(clients, cfg.LLM.RatePerMinute, chatCallRepo, logger)

	sessions := session.NewStore(time.Duration(cfg.Session.TTLMinutes) * time.Minute)

	artService := service.NewArtService(providers, searchRepo, logger)
	chatService := service.NewChatService(sessions, streamer, logger)

	srv := server.New(cfg, server.Deps{
		ArtService:   artService,
		ChatService:  chatService,
		Sessions:     sessions,
		SearchRepo:   searchRepo,
		ChatCallRepo: chatCallRepo,
	}, logger)

	// Graceful shutdown: SIGINT (Ctrl+C) or SIGTERM (docker stop).
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		if err != nil {
			return err
		}
	}

	// Give in-flight requests 10 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(ctx)
}

func buildChatClients(cfg *config.Config, logger *zap.Logger) []llm.Client {
	var clients []llm.Client
	for _, name := range cfg.LLM.ProviderOrder {
		switch name {
		case "openai":
			if cfg.LLM.OpenAI.APIKey != "" {
				clients = append(clients, llm.NewOpenAIClient(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.Model))
			}
		case "anthropic":
			if cfg.LLM.Anthropic.APIKey != "" {
				clients = append(clients, llm.NewAnthropicClient(cfg.LLM.Anthropic.APIKey, cfg.LLM.Anthropic.Model))
			}
		default:
			logger.Warn("unknown chat provider in provider_order", zap.String("provider", name))
		}
	}
	if len(clients) == 0 {
		logger.Warn("no chat backend configured, assistant will reply with a notice")
	}
	return clients
}
