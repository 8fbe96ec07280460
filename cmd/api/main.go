package main

import (
	"net/http"
	"os"
	"time"

	"cat-feeder/internal/config"
	"cat-feeder/internal/router"

	"cat-feeder/internal/adapters/storage/postgres"
	"cat-feeder/internal/platform/logger"

	"github.com/joho/godotenv"
)

func main() {
	// .env opcional para dev; en deploy las vars vienen del entorno.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.NewFromEnv()

	opts := router.Options{Config: cfg, Log: log}
	if cfg.DBDSN != "" {
		db, err := postgres.Open(cfg.DBDSN)
		if err != nil {
			log.Error("postgres open failed", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		defer db.Close()

		if err := postgres.Migrate(db); err != nil {
			log.Error("migrations failed", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		opts.DB = db
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router.NewRouter(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": cfg.Addr, "version": cfg.AppVersion})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
}
