package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apoconnect/apoconnect/pkg/apoconnect/auth"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/config"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/database"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/logging"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/models"
	"github.com/apoconnect/apoconnect/pkg/apoconnect/server"
	"go.uber.org/zap"
)

// @title ApoConnect API
// @version 1.0
// @description Social network for pharmacies: feed, rooms, partner directory.

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT session token. Format: "Bearer {token}"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "apoconnect: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Info("Configuration loaded", cfg.LogFields()...)

	auth.Configure(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.ExpirationHours)*time.Hour)
	auth.SetBcryptCost(cfg.Auth.BcryptCost)

	// Connect to database
	if err := database.Connect(cfg.DB); err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	// Run auto-migrations
	db := database.GetDB()
	if err := models.AutoMigrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("Database migrations completed", zap.String("driver", cfg.DB.Driver))

	created, err := database.EnsureCategories(db)
	if err != nil {
		return fmt.Errorf("seeding categories: %w", err)
	}
	if created > 0 {
		logger.Info("Seeded categories", zap.Int("count", created))
	}

	srv := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: server.New(server.Options{
			DB:       db,
			Logger:   logger,
			Config:   cfg,
			Notifier: auth.NewLogNotifier(logger),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting ApoConnect server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
