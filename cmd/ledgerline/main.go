package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ledgerline/ledgerline/internal/app"
	"github.com/ledgerline/ledgerline/internal/coa"
	"github.com/ledgerline/ledgerline/internal/ledger"
	"github.com/ledgerline/ledgerline/internal/observability"
	"github.com/ledgerline/ledgerline/internal/platform/cache"
	"github.com/ledgerline/ledgerline/internal/platform/db"
	"github.com/ledgerline/ledgerline/internal/reports"
	"github.com/ledgerline/ledgerline/internal/voucher"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, account cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	accountRepo := coa.NewRepository(pool)
	accountCache := coa.NewCache(redisClient, cfg.COACacheTTL)
	accountService := coa.NewService(accountRepo, accountCache)
	if err := coa.SeedDefaultChart(ctx, accountService); err != nil {
		logger.Error("seed default chart", slog.Any("error", err))
		os.Exit(1)
	}
	accountHandler := coa.NewHandler(logger, accountService)

	voucherRepo := voucher.NewRepository(pool)
	voucherService := voucher.NewService(voucherRepo, accountService, metrics, voucher.Policy{
		AllowFutureDates:     cfg.PostingAllowFutureDates,
		FiscalYearStartMonth: time.Month(cfg.FiscalYearStartMonth),
	})
	voucherHandler := voucher.NewHandler(logger, voucherService)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, accountService)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	reportService := reports.NewService(ledgerService, accountService)
	reportsHandler := reports.NewHandler(logger, reportService)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		AccountHandler: accountHandler,
		VoucherHandler: voucherHandler,
		LedgerHandler:  ledgerHandler,
		ReportsHandler: reportsHandler,
		Metrics:        metrics,
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
