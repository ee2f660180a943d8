package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/diewo77/school-billing/internal/billing"
	"github.com/diewo77/school-billing/internal/config"
	"github.com/diewo77/school-billing/internal/db"
	"github.com/diewo77/school-billing/internal/logging"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Seed the default fee structure and exit")
	generateFlag    = flag.String("generate", "", "Generate invoices for a period (YYYY-MM) and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	dbConn, err := db.Open(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations completed")
		return nil
	}
	if err := db.Apply(dbConn, cfg, log); err != nil {
		return err
	}
	if *seedOnlyFlag {
		if err := db.Seed(dbConn); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		log.Info("seeding completed")
		return nil
	}
	if cfg.App.Seed {
		if err := db.Seed(dbConn); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg, log, dbConn)
	if err != nil {
		return err
	}

	if *generateFlag != "" {
		defer app.Close()
		period, err := billing.ParsePeriod(*generateFlag)
		if err != nil {
			return err
		}
		n, err := app.Generate(ctx, period)
		if err != nil {
			return err
		}
		log.Info("generation completed", zap.Stringer("period", period), zap.Int("created", n))
		return nil
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ErrorLog:     zap.NewStdLog(log.Named("http")),
	}

	app.Start()
	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Server.Port), zap.Bool("dev", cfg.App.Dev))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	app.Stop(shutdownCtx)
	log.Info("server stopped gracefully")
	return nil
}
