package main

import (
	"context"
	"flag"
	"time"

	"mockraft/internal/app"
	"mockraft/internal/config"
	dbpostgres "mockraft/internal/database/postgres"
	"mockraft/internal/database/seeder"
	"mockraft/internal/logger"
)

func main() {
	migrationsDir := flag.String("migrations", "", "migrations directory (defaults to MIGRATIONS_DIR, then the embedded files)")
	skipMigrate := flag.Bool("skip-migrate", false, "run seeders without applying migrations")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.New(config.Config{}).Fatalf("failed to load config: %v", err)
	}
	log := logger.New(cfg)

	connCtx, connCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer connCancel()
	db, err := dbpostgres.Connect(connCtx, cfg.Database, log)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if !*skipMigrate {
		dir := *migrationsDir
		if dir == "" {
			dir = cfg.MigrationsDir
		}
		migCtx, migCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer migCancel()
		if err := app.Migrate(migCtx, db, dir, log); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	r := seeder.Runner{Seeders: seeder.Defaults(), Logger: log}
	if err := r.Run(ctx, db); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	log.Info("[Seeder] all seeders completed")
}
