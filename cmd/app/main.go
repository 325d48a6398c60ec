package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"fuelcards/internal/config"
	"fuelcards/internal/logger"
	"fuelcards/internal/server"
	"fuelcards/internal/store"
)

func main() {
	logger.Init()
	logger.Info("Starting fuel card dashboard")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	storeClient := store.New(cfg.StoreURL, cfg.StoreTimeout)
	logger.Info("Record store client initialized", "url", cfg.StoreURL)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		// Кэш не критичен: без редиса каждый запрос идёт в хранилище.
		logger.Error("Redis unavailable, operations cache disabled", "error", err)
	} else {
		logger.Info("Redis connected", "addr", cfg.RedisAddr)
	}

	srv := server.New(storeClient, rdb, cfg)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
