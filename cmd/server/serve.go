package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"equitystek/server/config"
	"equitystek/server/internal/api"
	"equitystek/server/internal/database"
	"equitystek/server/internal/geocoding"
	"equitystek/server/internal/metrics"
	"equitystek/server/internal/portfolio"
	"equitystek/server/internal/processor"
	"equitystek/server/internal/queue"
	"equitystek/server/internal/scheduler"
	"equitystek/server/internal/tradesperson"
	"equitystek/server/internal/valuation"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and the revaluation pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func openDatabase(cfg *config.Config, logger *logrus.Logger) (*database.Database, error) {
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	logger.Infof("Using database at: %s", cfg.Database.Path)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	return db, nil
}

func seedPlans(ctx context.Context, db *database.Database, path string, logger *logrus.Logger) (int, error) {
	plans, err := config.LoadPlans(path)
	if err != nil {
		return 0, err
	}
	if err := db.UpsertPlans(ctx, plans); err != nil {
		return 0, err
	}
	logger.WithFields(logrus.Fields{
		"file":  path,
		"plans": len(plans),
	}).Info("Seeded subscription plans")
	return len(plans), nil
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg.LogLevel)

	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := seedPlans(ctx, db, cfg.PlansFile, logger); err != nil {
		logger.WithError(err).Warn("Failed to seed plans, keeping stored catalogue")
	}

	calc, err := valuation.NewCalculator(cfg.ValuationRates())
	if err != nil {
		return err
	}
	m := metrics.New(prometheus.DefaultRegisterer)

	revaluationQueue := queue.NewRevaluationQueue(cfg.Revaluation.QueueSize, logger)

	opts := portfolio.Options{
		Queue:       revaluationQueue,
		Metrics:     m,
		Logger:      logger,
		Concurrency: cfg.Portfolio.Concurrency,
	}
	if cfg.Geocoding.Enabled {
		opts.Geocoder = geocoding.NewGeocoder(geocoding.Settings{
			BaseURL:     cfg.Geocoding.BaseURL,
			UserAgent:   cfg.Geocoding.UserAgent,
			MinInterval: cfg.Geocoding.MinInterval,
		}, logger)
	}
	service := portfolio.NewService(portfolio.NewStore(db), calc, opts)

	batchProcessor := processor.NewBatchProcessor(service, revaluationQueue, processor.Settings{
		MaxRetries: cfg.Revaluation.MaxRetries,
		RetryDelay: cfg.Revaluation.RetryDelay,
	}, m, logger)
	batchProcessor.Start()
	revaluationQueue.Start(cfg.Revaluation.Workers)

	sweeper := scheduler.NewScheduler(db, revaluationQueue, cfg.Revaluation.SweepInterval, cfg.Revaluation.BatchSize, logger)
	sweeper.Start()

	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(service, db, tradesperson.NewDirectory(db, logger), logger)
	router := api.NewRouter(handler, api.RouterOptions{
		CORSOrigins: cfg.Server.CORSOrigins,
		Metrics:     m,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("Server failed")
			serveErr = fmt.Errorf("failed to start server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}

	sweeper.Stop()
	batchProcessor.Stop()
	revaluationQueue.Close()
	return serveErr
}
