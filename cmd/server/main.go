package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"groq-chat-backend/internal/adapter/httpapi"
	"groq-chat-backend/internal/adapter/memory"
	"groq-chat-backend/internal/adapter/openai"
	"groq-chat-backend/internal/adapter/telegram"
	"groq-chat-backend/internal/config"
	"groq-chat-backend/internal/usecase/chat"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	client := openai.NewClient(cfg.APIKey, cfg.BaseURL, nil)
	store := memory.NewStore(cfg.SystemPrompt)
	chatSvc := chat.NewService(store, client, cfg, logger)

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, chatSvc, logger)
		if err != nil {
			logger.Error("failed to init telegram bot", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := bot.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("telegram bot stopped", "error", err)
			}
		}()
	}

	server := &http.Server{
		Addr: net.JoinHostPort("0.0.0.0", cfg.Port),
		Handler: httpapi.NewRouter(chatSvc, httpapi.Options{
			FrontendDir:    cfg.FrontendDir,
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Logger:         logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening",
		"addr", server.Addr,
		"model", cfg.Model,
		"telegram", cfg.TelegramToken != "")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
