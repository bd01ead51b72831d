package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"musicshare/internal/config"
	"musicshare/internal/database"
	"musicshare/internal/logging"
	"musicshare/internal/store"
	"musicshare/migrations"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file (defaults to $MUSICSHARE_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.New(logging.Config{}).Fatal(err, "load config")
	}

	logger := logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	logging.SetGlobalLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database.URL, database.Pool{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		logger.Fatal(err, "connect to database")
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := migrations.Up(db); err != nil {
			logger.Fatal(err, "apply migrations")
		}
		logger.Info("migrations applied")
	}

	files, err := newAssetStore(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal(err, "init asset store")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           newHTTPHandler(cfg, store.New(db), files),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API available at http://" + srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(err, "server error")
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(err, "graceful shutdown")
		}
	}
}
