package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baharkarakas/card-ledger/internal/api"
	"github.com/baharkarakas/card-ledger/internal/config"
	"github.com/baharkarakas/card-ledger/internal/db"
	"github.com/baharkarakas/card-ledger/internal/logger"
	"github.com/baharkarakas/card-ledger/internal/metrics"
	"github.com/baharkarakas/card-ledger/internal/repository"
	"github.com/baharkarakas/card-ledger/internal/repository/memory"
	"github.com/baharkarakas/card-ledger/internal/repository/postgres"
	"github.com/baharkarakas/card-ledger/internal/services"
	"github.com/baharkarakas/card-ledger/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var loader *config.Loader
	if cfg.FilePath != "" {
		var err error
		loader, err = config.NewLoader(cfg.FilePath)
		if err != nil {
			log.Error("config file", "err", err)
			os.Exit(1)
		}
		cfg = cfg.Apply(loader.Config())
	}

	var repos repository.Repositories
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("db connect", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		if cfg.Migrate {
			if err := db.RunMigrations(ctx, pool); err != nil {
				log.Error("migrations", "err", err)
				os.Exit(1)
			}
		}
		repos = postgres.NewRepositories(pool, cfg.InitialCreditLimit)
	case config.StoreMemory:
		repos = memory.NewRepositories(cfg.InitialCreditLimit)
	default:
		log.Error("unknown STORE_DRIVER", "driver", cfg.StoreDriver)
		os.Exit(1)
	}

	wp := worker.NewPool(cfg.WorkerCount, 1024)
	defer wp.Stop()

	ledgerSvc := services.NewLedgerService(repos.Ledger, repos.AuditLogs, wp, cfg.InitialCreditLimit)

	if loader != nil {
		loader.OnChange(func(fc config.FileConfig) {
			if fc.InitialCreditLimit != nil {
				ledgerSvc.SetInitialCreditLimit(*fc.InitialCreditLimit)
				log.Info("initial credit limit reloaded", "credit_limit", *fc.InitialCreditLimit)
			}
		})
		stopWatch, err := loader.Watch()
		if err != nil {
			log.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
		} else {
			defer stopWatch()
		}
	}

	metrics.Init()
	r := api.NewRouter(cfg, ledgerSvc)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting",
			"port", cfg.HTTPPort,
			"store", cfg.StoreDriver,
			"initial_credit_limit", cfg.InitialCreditLimit,
			"cors_origins", cfg.CORSOrigins,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
}
