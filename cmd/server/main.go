package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/agencyos/agencyos/internal/blob"
	"github.com/agencyos/agencyos/internal/calendar"
	"github.com/agencyos/agencyos/internal/config"
	"github.com/agencyos/agencyos/internal/database"
	"github.com/agencyos/agencyos/internal/metrics"
	"github.com/agencyos/agencyos/internal/notify"
	"github.com/agencyos/agencyos/internal/rbac"
	"github.com/agencyos/agencyos/internal/repository"
	"github.com/agencyos/agencyos/internal/server"
	"github.com/agencyos/agencyos/internal/service"
	"github.com/agencyos/agencyos/pkg/auth"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.IsDevelopment() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx := context.Background()

	var store repository.Store
	switch cfg.Database.Backend {
	case "memory":
		store = repository.NewMemory()
		logger.Info("using in-memory store")
	default:
		db, err := database.Connect(database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			logger.Error("connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			logger.Error("apply schema", "error", err)
			os.Exit(1)
		}
		store = repository.NewPostgres(db)
		logger.Info("connected to postgres", "host", cfg.Database.Host, "db", cfg.Database.DBName)
	}

	signer, err := blob.Open(ctx, cfg.Storage)
	if err != nil {
		logger.Error("open blob storage", "error", err)
		os.Exit(1)
	}

	var pusher calendar.Pusher = calendar.NopPusher{}
	if cfg.Calendar.WebhookURL != "" {
		pusher = calendar.NewWebhookPusher(cfg.Calendar.WebhookURL, cfg.Calendar.Timeout)
	}

	tokens := auth.NewTokenManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenDuration,
		cfg.JWT.RefreshTokenDuration,
	)
	m := metrics.New()
	services := service.New(service.Deps{
		Store:     store,
		RBAC:      rbac.NewTable(),
		Tokens:    tokens,
		Passwords: auth.NewPasswordManager(),
		Notifier:  notify.New(store, logger),
		Metrics:   m,
		Signer:    signer,
		Calendar:  pusher,
		Logger:    logger,
	})

	srv := server.New(services, tokens, m, logger)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.HTTPPort,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info("starting server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown server", "error", err)
	}
	logger.Info("server stopped")
}
