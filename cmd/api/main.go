package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"costmix/adapters/api"
	"costmix/adapters/postgres"
	"costmix/app"
	"costmix/internal"
	"costmix/internal/config"
	"costmix/ports"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))

	var repo ports.ConfigRepositoryPort
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := postgres.Migrate(db); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
		repo = postgres.NewConfigRepository(db)
		logger.Info("config persistence enabled")
	} else {
		logger.Warn("DATABASE_URL not set, configs will not be persisted")
	}

	service := api.NewService(app.NewPrepService(logger), repo, logger)
	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: service.Router(),
	}

	go func() {
		logger.Info("listening on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownSeconds)*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error: %v", err)
	}
}
