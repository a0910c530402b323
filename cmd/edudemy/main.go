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

	"github.com/edudemy/edudemy/internal/app"
	"github.com/edudemy/edudemy/internal/auth"
	"github.com/edudemy/edudemy/internal/authz"
	"github.com/edudemy/edudemy/internal/notifications"
	"github.com/edudemy/edudemy/internal/observability"
	"github.com/edudemy/edudemy/internal/platform/cache"
	"github.com/edudemy/edudemy/internal/platform/db"
	"github.com/edudemy/edudemy/internal/shared"
	"github.com/edudemy/edudemy/internal/students"
	"github.com/edudemy/edudemy/internal/users"
	"github.com/edudemy/edudemy/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "edudemy_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	metrics := observability.NewMetrics()

	authzStore := authz.NewStore(dbpool)
	authzCache := authz.NewEffectiveCache(redisClient, cfg.AuthzCacheTTL)
	authzService := authz.NewService(authzStore, authzCache)
	gate := authz.Middleware{Service: authzService, Logger: logger, Metrics: metrics}

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService, gate)

	authService := auth.NewService(usersService)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)
	principalLoader := &auth.PrincipalLoader{Users: usersService, Logger: logger}

	studentsRepo := students.NewRepository(dbpool)
	studentsService := students.NewService(studentsRepo)
	studentsHandler := students.NewHandler(logger, studentsService, gate)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("asynq client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	notificationsRepo := notifications.NewRepository(dbpool)
	notificationsService := notifications.NewService(notificationsRepo, jobsClient, logger)
	notificationsHandler := notifications.NewHandler(logger, notificationsService, gate)

	auditLogger := shared.NewAuditLogger(dbpool)
	permissionsHandler := authz.NewHandler(logger, authzService, usersService, gate, auditLogger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		SessionManager:       sessionManager,
		CSRFManager:          csrfManager,
		Principal:            principalLoader,
		AuthHandler:          authHandler,
		UsersHandler:         usersHandler,
		StudentsHandler:      studentsHandler,
		NotificationsHandler: notificationsHandler,
		PermissionsHandler:   permissionsHandler,
		JobHandler:           jobHandler,
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
