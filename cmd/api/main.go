package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/pticket/helpdesk/internal/api/http"
	"github.com/pticket/helpdesk/internal/api/http/handlers"
	"github.com/pticket/helpdesk/internal/auth"
	"github.com/pticket/helpdesk/internal/config"
	"github.com/pticket/helpdesk/internal/events"
	"github.com/pticket/helpdesk/internal/observability"
	"github.com/pticket/helpdesk/internal/persistence"
	"github.com/pticket/helpdesk/internal/repository"
	"github.com/pticket/helpdesk/internal/service"
	"github.com/pticket/helpdesk/internal/worker"
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	minioClient, err := persistence.NewMinio(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to connect object storage", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	branchRepo := repository.NewBranchRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	replyRepo := repository.NewReplyRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	activityRepo := repository.NewActivityLogRepository(pool)
	calendarRepo := repository.NewCalendarRepository(pool)
	emailConfigRepo := repository.NewEmailConfigRepository(pool)
	inventoryRepo := repository.NewInventoryRepository(pool)
	statisticsRepo := repository.NewStatisticsRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	mailer := service.NewSMTPMailer(emailConfigRepo, cfg.SMTP, logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		ReplyRepo:      replyRepo,
		CategoryRepo:   categoryRepo,
		DepartmentRepo: departmentRepo,
		UserRepo:       userRepo,
		ActivityRepo:   activityRepo,
		Dispatcher:     dispatcher,
	})
	taskService := service.NewTaskService(service.TaskDependencies{
		TaskRepo:       taskRepo,
		UserRepo:       userRepo,
		DepartmentRepo: departmentRepo,
		ActivityRepo:   activityRepo,
		Dispatcher:     dispatcher,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: notificationRepo,
		TicketRepo:       ticketRepo,
		TaskRepo:         taskRepo,
		UserRepo:         userRepo,
		DepartmentRepo:   departmentRepo,
		Dispatcher:       dispatcher,
		Mailer:           mailer,
		Redis:            redis.Client,
		Logger:           logger,
	})
	reminderService := service.NewReminderService(service.ReminderDependencies{
		TaskRepo:   taskRepo,
		UserRepo:   userRepo,
		Mailer:     mailer,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	orgService := service.NewOrgService(service.OrgDependencies{
		UserRepo:       userRepo,
		BranchRepo:     branchRepo,
		DepartmentRepo: departmentRepo,
		CategoryRepo:   categoryRepo,
		Mailer:         mailer,
		Logger:         logger,
		BcryptCost:     cfg.Auth.BcryptCost,
	})
	calendarService := service.NewCalendarService(calendarRepo, redis.Client, cfg.Calendar, logger)
	statisticsService := service.NewStatisticsService(statisticsRepo)
	inventoryService := service.NewInventoryService(service.InventoryDependencies{
		InventoryRepo:  inventoryRepo,
		DepartmentRepo: departmentRepo,
		UserRepo:       userRepo,
	})
	emailSettingsService := service.NewEmailSettingsService(emailConfigRepo, mailer)
	attachmentService := service.NewAttachmentService(minioClient, cfg.Storage)

	worker.StartNotificationWorker(notificationService)
	worker.NewDeadlineReminderWorker(reminderService, cfg.Reminder, logger).Start(ctx)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pool, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Tasks:          handlers.NewTasksHandler(taskService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Org:            handlers.NewOrgHandler(orgService),
		Statistics:     handlers.NewStatisticsHandler(statisticsService),
		Inventory:      handlers.NewInventoryHandler(inventoryService),
		Calendar:       handlers.NewCalendarHandler(calendarService),
		EmailSettings:  handlers.NewEmailSettingsHandler(emailSettingsService),
		Attachments:    handlers.NewAttachmentsHandler(attachmentService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
