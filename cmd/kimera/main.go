package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FusherTm/kimerav1/internal/app"
	"github.com/FusherTm/kimerav1/internal/finance/connections"
	"github.com/FusherTm/kimerav1/internal/finance/statement"
	"github.com/FusherTm/kimerav1/internal/finance/transactions"
	"github.com/FusherTm/kimerav1/internal/observability"
	"github.com/FusherTm/kimerav1/internal/orders"
	"github.com/FusherTm/kimerav1/internal/partners"
	"github.com/FusherTm/kimerav1/internal/platform/cache"
	"github.com/FusherTm/kimerav1/internal/platform/db"
	"github.com/FusherTm/kimerav1/internal/rbac"
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
		logger.Warn("redis unavailable, dashboard cache disabled", slog.Any("error", err))
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

	checker, err := rbac.NewChecker(rbac.DefaultRoles())
	if err != nil {
		logger.Error("load rbac roles", slog.Any("error", err))
		os.Exit(1)
	}
	guard := rbac.Middleware{Checker: checker, Logger: logger}

	ordersRepo := orders.NewRepository(pool)
	ordersService := orders.NewService(ordersRepo, logger, cfg.VATRate())
	ordersHandler := orders.NewHandler(logger, ordersService)

	connectionsRepo := connections.NewRepository(pool)
	connectionsService := connections.NewService(connectionsRepo, logger)
	connectionsHandler := connections.NewHandler(logger, connectionsService)

	transactionsRepo := transactions.NewRepository(pool)
	transactionsService := transactions.NewService(transactionsRepo, logger)
	transactionsHandler := transactions.NewHandler(logger, transactionsService)

	partnersRepo := partners.NewRepository(pool)
	partnersHandler := partners.NewHandler(logger, partnersRepo)

	statementRepo := statement.NewRepository(pool)
	statementCache := statement.NewCache(redisClient, cfg.DashboardCacheTTL)
	statementService := statement.NewService(statementRepo, partnersRepo, statementCache, logger)
	statementHandler := statement.NewHandler(logger, statementService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		OrdersHandler:       ordersHandler,
		ConnectionsHandler:  connectionsHandler,
		TransactionsHandler: transactionsHandler,
		StatementHandler:    statementHandler,
		PartnersHandler:     partnersHandler,
		RBACMiddleware:      guard,
		Metrics:             metrics,
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
