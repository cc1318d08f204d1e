package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/agent-console/internal/api/http"
	"github.com/spec-kit/agent-console/internal/api/http/handlers"
	"github.com/spec-kit/agent-console/internal/cache"
	"github.com/spec-kit/agent-console/internal/config"
	"github.com/spec-kit/agent-console/internal/events"
	"github.com/spec-kit/agent-console/internal/gateway"
	"github.com/spec-kit/agent-console/internal/journal"
	"github.com/spec-kit/agent-console/internal/observability"
	"github.com/spec-kit/agent-console/internal/persistence"
	"github.com/spec-kit/agent-console/internal/service"
	"github.com/spec-kit/agent-console/internal/session"
	"github.com/spec-kit/agent-console/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	sessions := session.NewManager(cfg.Session.Secret, cfg.Session.TTLMinutes)

	api := gateway.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Token,
		gateway.WithTimeout(cfg.Upstream.Timeout()))

	directoryCache := cache.NewDirectoryCache(redis.Client, cfg.Redis.DirectoryTTL(), logger)

	conversationService := service.NewConversationService(service.ConversationDependencies{
		API:        api,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	replyService := service.NewReplyService(api, conversationService)
	mergeService := service.NewMergeService(api, conversationService)
	directoryService := service.NewDirectoryService(api, directoryCache)

	var journalRepo journal.Repository
	if pool := pg.PoolHandle(); pool != nil {
		journalRepo = journal.NewRepository(pool)
	}
	journalService := service.NewJournalService(journalRepo, logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.StartJournalWorker(journalService, dispatcher)
	worker.StartNotificationWorker(notificationService)
	worker.StartMetricsWorker(metrics, dispatcher)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: 32 * 1024 * 1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Sessions: handlers.NewSessionHandler(sessions),
		Tickets:  handlers.NewTicketsHandler(conversationService, replyService, mergeService, directoryService, journalService),
		Users:    handlers.NewUsersHandler(directoryService),
		Session:  sessions,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
