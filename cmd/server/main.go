package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mockraft/internal/app"
	"mockraft/internal/config"
	"mockraft/internal/database/postgres"
	"mockraft/internal/logger"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(config.Config{}).Fatalf("failed to load config: %v", err)
	}
	log := logger.New(cfg)

	if cfg.MigrateOnStart {
		if err := migrate(cfg, log); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}

	bootstrap, cleanup, err := app.Bootstrap(cfg, log)
	if err != nil {
		log.Fatalf("failed to bootstrap app: %v", err)
	}
	defer func() {
		if err := cleanup(); err != nil {
			log.Printf("cleanup error: %v", err)
		}
	}()

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		log.Fatalf("invalid HTTP port: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- bootstrap.Fiber.Listen(addr)
	}()
	log.Printf("[Server] listening addr=%s env=%s", addr, cfg.App.Environment)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Errorf("server error: %v", err)
		}
	case sig := <-sigCh:
		log.Printf("[Server] shutting down signal=%s", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := bootstrap.Fiber.ShutdownWithContext(ctx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}
}

func migrate(cfg config.Config, log *logrus.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	return app.Migrate(ctx, db, cfg.MigrationsDir, log)
}
