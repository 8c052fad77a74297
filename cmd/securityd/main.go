package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/cache"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/config"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/database"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/geo"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/handlers"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/jobs"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/log"
	pgrepo "github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository/postgres"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/server"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/service"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	var archiveStore *storage.ArchiveStore
	if cfg.Archive.Enabled {
		archiveStore, err = storage.NewArchiveStore(cfg.Archive)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init archive store")
		}
		if err := archiveStore.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure archive bucket failed")
		}
	}

	sessionRepo := pgrepo.NewSessionRepository(dbPool)
	eventRepo := pgrepo.NewEventRepository(dbPool)
	auditRepo := pgrepo.NewAuditRepository(dbPool)
	userRepo := pgrepo.NewUserRepository(dbPool)
	twoFactorRepo := pgrepo.NewTwoFactorRepository(dbPool)
	notificationRepo := pgrepo.NewNotificationRepository(dbPool)

	var resolver geo.Resolver = geo.NopResolver{}
	if cfg.Geo.Enabled {
		resolver = geo.NewHTTPResolver(cfg.Geo)
	}

	alertWorker := service.NewAlertWorker(service.LogSink{Log: logger}, 256, logger)
	alertWorker.Start()

	notificationService := service.NewNotificationService(notificationRepo, alertWorker, logger)
	eventService := service.NewEventService(eventRepo, notificationService, logger)
	sessionService := service.NewSessionService(sessionRepo, resolver, cfg.Sessions.StaleAfter, logger)
	authService := service.NewAuthService(userRepo, sessionService, eventService, cfg.Security, logger)
	auditService := service.NewAuditService(auditRepo, logger)
	scoreService := service.NewScoreService(sessionRepo, eventRepo, userRepo, twoFactorRepo, logger)

	limiter := cache.NewRedisRateLimiter(redisClient, cfg.TwoFactor.MaxAttempts, cfg.TwoFactor.AttemptWindow)
	setupCache := cache.NewRedisSetupCache(redisClient)
	twoFactorService := service.NewTwoFactorService(twoFactorRepo, setupCache, limiter, eventService, cfg.TwoFactor, logger)

	handlerSet := handlers.NewHandlerSet(
		logger,
		cfg,
		userRepo,
		authService,
		sessionService,
		eventService,
		twoFactorService,
		auditService,
		scoreService,
		notificationService,
	)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(sessionService, auditService, archiveStore, cfg.Sessions.SweepInterval, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, alertWorker, dbPool, redisClient)
}

func waitForShutdown(
	logger zerolog.Logger,
	srv *server.HTTPServer,
	scheduler *jobs.Scheduler,
	alerts *service.AlertWorker,
	db *pgxpool.Pool,
	redisClient *redis.Client,
) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	scheduler.Stop()
	alerts.Stop()

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
