package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/omniprompt/gateway/internal/api"
	"github.com/omniprompt/gateway/internal/config"
	"github.com/omniprompt/gateway/internal/database"
	"github.com/omniprompt/gateway/internal/dispatch"
	"github.com/omniprompt/gateway/internal/logger"
	"github.com/omniprompt/gateway/internal/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Init logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		zl.Fatalw("Database init failed", "error", err)
	}
	defer db.Close()

	registry, err := providers.Build(context.Background(), cfg)
	if err != nil {
		zl.Fatalw("Provider registry init failed", "error", err)
	}

	limiter := dispatch.NewLimiter(db)
	dispatcher := dispatch.NewDispatcher(registry, limiter, db, zl,
		time.Duration(cfg.ProviderTimeoutSeconds)*time.Second)

	handlers := api.NewHandlers(db, registry, dispatcher, zl)
	router := api.NewRouter(handlers, cfg.CORSOrigin)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zl.Infow("Gateway starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatalw("Server error", "error", err)
		}
	}()

	<-sigCtx.Done()
	zl.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Fatalw("Shutdown error", "error", err)
	}
	zl.Info("Gateway stopped")
}
