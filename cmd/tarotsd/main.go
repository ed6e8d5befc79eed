package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lorenzomaiuri-dev/tarots-os/internal/adapters/decks"
	"github.com/lorenzomaiuri-dev/tarots-os/internal/adapters/history/bolt"
	httpadapter "github.com/lorenzomaiuri-dev/tarots-os/internal/adapters/http"
	"github.com/lorenzomaiuri-dev/tarots-os/internal/adapters/i18n"
	"github.com/lorenzomaiuri-dev/tarots-os/internal/adapters/llm/openai"
	"github.com/lorenzomaiuri-dev/tarots-os/internal/app"
	"github.com/lorenzomaiuri-dev/tarots-os/internal/config"
	"github.com/lorenzomaiuri-dev/tarots-os/internal/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	deckStore := decks.NewEmbeddedStore()
	translator := i18n.New(cfg.Locale)

	history, err := bolt.New(cfg.HistoryDBPath)
	if err != nil {
		logger.Error("failed to open history store", "error", err)
		os.Exit(1)
	}
	defer history.Close()

	llmClient := openai.NewClient(
		&http.Client{Timeout: cfg.LLMTimeout},
		config.AppName,
		config.SiteURL,
		cfg.AITemperature,
		logger,
	)

	svc := app.NewJournalService(app.Deps{
		Decks:         deckStore,
		Spreads:       deckStore,
		History:       history,
		Interpreter:   llmClient,
		Translator:    translator,
		DefaultDeckID: cfg.DefaultDeckID,
		Logger:        logger,
	})

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(httpadapter.RequestIDMiddleware())
	e.Use(httpadapter.LoggingMiddleware(logger))

	handler := httpadapter.NewHandler(svc, domain.AIModelConfig{
		Provider: "openrouter",
		ModelID:  cfg.AIModel,
		APIKey:   cfg.AIAPIKey,
		BaseURL:  cfg.AIBaseURL,
	})
	handler.Register(e)

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		logger.Info("starting server", "addr", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
