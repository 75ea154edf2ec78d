package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/aurum-erp/aurum-erp/internal/accounting/accounts"
	"github.com/aurum-erp/aurum-erp/internal/accounting/entries"
	"github.com/aurum-erp/aurum-erp/internal/accounting/fx"
	"github.com/aurum-erp/aurum-erp/internal/accounting/ledger"
	"github.com/aurum-erp/aurum-erp/internal/accounting/reports"
	"github.com/aurum-erp/aurum-erp/internal/accounting/tax"
	"github.com/aurum-erp/aurum-erp/internal/app"
	"github.com/aurum-erp/aurum-erp/internal/budget"
	"github.com/aurum-erp/aurum-erp/internal/forecast"
	"github.com/aurum-erp/aurum-erp/internal/platform/cache"
	"github.com/aurum-erp/aurum-erp/internal/platform/db"
	"github.com/aurum-erp/aurum-erp/internal/recon"
	"github.com/aurum-erp/aurum-erp/internal/shared"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, report caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	converter := fx.NewConverter(cfg.BaseCurrency, fx.NewRateRepository(pool))
	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)

	accountsService := accounts.NewService(accounts.NewRepository(pool))
	ledgerService := ledger.NewService(ledger.NewRepository(pool), converter, auditLogger, reportCache, logger)
	reportsService := reports.NewService(reports.NewRepository(pool), reportCache)
	taxService := tax.NewService(tax.NewRepository(pool))
	entriesService := entries.NewService(ledgerService, accountsService, reportsService, taxService, logger)
	budgetService := budget.NewService(budget.NewRepository(pool), reportsService, auditLogger, logger)
	forecastService := forecast.NewService(reportsService, forecast.NewInvoiceRepository(pool), budgetService, logger)
	reconService := recon.NewService(ledgerService, accountsService, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Pool:            pool,
		AccountsHandler: accounts.NewHandler(logger, accountsService),
		LedgerHandler:   ledger.NewHandler(logger, ledgerService),
		EntriesHandler:  entries.NewHandler(logger, entriesService),
		ReportsHandler:  reports.NewHandler(logger, reportsService),
		BudgetHandler:   budget.NewHandler(logger, budgetService),
		ForecastHandler: forecast.NewHandler(logger, forecastService),
		ReconHandler:    recon.NewHandler(logger, reconService),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
