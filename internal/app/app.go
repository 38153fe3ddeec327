package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-storefront/internal/commerce"
	"go-storefront/internal/config"
	"go-storefront/internal/database"
	"go-storefront/internal/handler"
	"go-storefront/internal/middleware"
	"go-storefront/internal/repository"
	"go-storefront/internal/router"
	"go-storefront/internal/service"
)

type App struct {
	server *http.Server
	db     *database.DB
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.IsProduction() {
		slog.Warn("running outside production; insecure token secret fallbacks are permitted", "env", cfg.AppEnv)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	userRepo := repository.NewUserRepository(db.Pool)
	if userCount, countErr := userRepo.Count(context.Background()); countErr == nil {
		slog.Info("database ready", "users", userCount)
	} else {
		slog.Info("database ready")
	}

	// The commerce client is constructed exactly once, with its
	// configuration validated here, and handed to everything that
	// needs it.
	commerceClient, err := commerce.NewClient(cfg.CommerceEndpoint, cfg.CommerceAccessToken)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize commerce client: %w", err)
	}

	tokenService := service.NewTokenService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := service.NewAuthService(userRepo)
	cartService := service.NewCartService(commerceClient, userRepo)

	session := middleware.NewSessionMiddleware(tokenService, cfg.ProtectedPaths, cfg.IsProduction())

	cartHandler := handler.NewCartHandler(cartService, cfg.IsProduction())
	appRouter := router.New(cfg, session, router.Handlers{
		Auth:    handler.NewAuthHandler(authService, tokenService, userRepo, cfg.IsProduction()),
		Cart:    cartHandler,
		Product: handler.NewProductHandler(commerceClient),
		Page:    handler.NewPageHandler(cartService),
	}, db.Health)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{server: server, db: db}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.db.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.db.Close()

	slog.Info("server stopped")
	return nil
}
