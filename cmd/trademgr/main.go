package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/trade-manager/trade-manager/internal/analytics"
	analyticshttp "github.com/trade-manager/trade-manager/internal/analytics/http"
	"github.com/trade-manager/trade-manager/internal/app"
	"github.com/trade-manager/trade-manager/internal/articles"
	"github.com/trade-manager/trade-manager/internal/auth"
	"github.com/trade-manager/trade-manager/internal/collaborators"
	"github.com/trade-manager/trade-manager/internal/events"
	"github.com/trade-manager/trade-manager/internal/notifications"
	"github.com/trade-manager/trade-manager/internal/observability"
	"github.com/trade-manager/trade-manager/internal/platform/cache"
	"github.com/trade-manager/trade-manager/internal/platform/db"
	"github.com/trade-manager/trade-manager/internal/shared"
	"github.com/trade-manager/trade-manager/internal/stock"
	"github.com/trade-manager/trade-manager/internal/transactions"
	"github.com/trade-manager/trade-manager/internal/users"
	"github.com/trade-manager/trade-manager/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "tm_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	bus := events.NewBus(redisClient, logger)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	analyticsRepo := analytics.NewPGRepository(pool)
	analyticsCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL)
	analyticsService := analytics.NewService(analyticsRepo, analyticsCache)
	analyticsHandler := analyticshttp.NewHandler(logger, analyticsService)
	go func() {
		if err := analyticsCache.ListenForInvalidation(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("analytics invalidation listener stopped", slog.Any("error", err))
		}
	}()

	stockRepo := stock.NewRepository(pool)
	stockService := stock.NewService(stockRepo, bus, stock.ServiceConfig{
		AllowNegativeStock: cfg.AllowNegativeStock,
		LowStockThreshold:  cfg.LowStockThreshold,
	})
	stockHandler := stock.NewHandler(logger, stockService)

	articlesRepo := articles.NewRepository(pool)
	articlesService := articles.NewService(articlesRepo, stockService, analyticsService)
	articlesHandler := articles.NewHandler(logger, articlesService)

	transactionsRepo := transactions.NewRepository(pool)
	transactionsService := transactions.NewService(transactionsRepo, stockService, bus, analyticsService)
	transactionsHandler := transactions.NewHandler(logger, transactionsService)

	collaboratorsRepo := collaborators.NewRepository(pool)
	collaboratorsService := collaborators.NewService(collaboratorsRepo)
	collaboratorsHandler := collaborators.NewHandler(logger, collaboratorsService, usersService)

	notificationsRepo := notifications.NewRepository(pool)
	notificationsService := notifications.NewService(notificationsRepo, bus, logger)
	notificationsHandler := notifications.NewHandler(logger, notificationsService)
	go func() {
		if err := notificationsService.ListenEvents(ctx, bus); err != nil && ctx.Err() == nil {
			logger.Warn("notifications listener stopped", slog.Any("error", err))
		}
	}()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		SessionManager:       sessionManager,
		CSRFManager:          csrfManager,
		AuthHandler:          authHandler,
		UsersHandler:         usersHandler,
		ArticlesHandler:      articlesHandler,
		StockHandler:         stockHandler,
		TransactionsHandler:  transactionsHandler,
		CollaboratorsHandler: collaboratorsHandler,
		NotificationsHandler: notificationsHandler,
		AnalyticsHandler:     analyticsHandler,
		JobsHandler:          jobsHandler,
		Metrics:              metrics,
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
