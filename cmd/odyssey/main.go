package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-lite/internal/app"
	"github.com/odyssey-erp/odyssey-lite/internal/contacts"
	"github.com/odyssey-erp/odyssey-lite/internal/expenses"
	"github.com/odyssey-erp/odyssey-lite/internal/export"
	"github.com/odyssey-erp/odyssey-lite/internal/inventory"
	"github.com/odyssey-erp/odyssey-lite/internal/ledger"
	"github.com/odyssey-erp/odyssey-lite/internal/observability"
	"github.com/odyssey-erp/odyssey-lite/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-lite/internal/reports"
	"github.com/odyssey-erp/odyssey-lite/internal/sales"
	"github.com/odyssey-erp/odyssey-lite/internal/shared"
	"github.com/odyssey-erp/odyssey-lite/internal/view"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)
	if cfg.TestMode {
		logger.Info("test mode detected, skipping runtime startup")
		return
	}

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "odyssey_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	registry := ledger.NewRegistry(cfg.LowStockThreshold, cfg.SessionTTL)

	sweeper, err := app.NewSweeper(cfg.SweepSchedule, registry, metrics, logger)
	if err != nil {
		logger.Error("schedule sweeper", slog.Any("error", err))
		os.Exit(1)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Templates:        templates,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		Registry:         registry,
		InventoryHandler: inventory.NewHandler(logger, inventory.NewService(metrics), templates, csrfManager),
		SalesHandler:     sales.NewHandler(logger, sales.NewService(metrics), templates, csrfManager),
		ExpensesHandler:  expenses.NewHandler(logger, expenses.NewService(metrics), templates, csrfManager),
		ReportsHandler:   reports.NewHandler(logger, reports.NewService(metrics), templates, csrfManager),
		ContactsHandler:  contacts.NewHandler(logger, contacts.NewService(metrics), templates, csrfManager),
		ExportHandler:    export.NewHandler(logger, metrics),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
