package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/juliaconfecciones/production-backend/internal/audit"
	"github.com/juliaconfecciones/production-backend/internal/cron"
	"github.com/juliaconfecciones/production-backend/internal/employees"
	"github.com/juliaconfecciones/production-backend/internal/materials"
	"github.com/juliaconfecciones/production-backend/internal/notifications"
	"github.com/juliaconfecciones/production-backend/internal/production"
	"github.com/juliaconfecciones/production-backend/pkg/config"
	"github.com/juliaconfecciones/production-backend/pkg/db"
	"github.com/juliaconfecciones/production-backend/pkg/logger"
	"github.com/juliaconfecciones/production-backend/pkg/metrics"
	"github.com/juliaconfecciones/production-backend/pkg/migrate"
	"github.com/juliaconfecciones/production-backend/pkg/outbox"
	"github.com/juliaconfecciones/production-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, db.Options{UseSQLite: cfg.FeatureFlags.UseSQLite}, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	jobs, err := buildJobs(cfg, logg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build cron jobs", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockScope(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(jobs...),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})

	metrics.Serve(ctx, cfg.App.MetricsAddr, prometheus.DefaultGatherer, logg)

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildJobs(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) ([]cron.Job, error) {
	auditService, err := audit.NewService(audit.NewRepository(dbClient.DB()))
	if err != nil {
		return nil, err
	}
	materialService, err := materials.NewService(materials.NewRepository(dbClient.DB()), auditService, dbClient, logg)
	if err != nil {
		return nil, err
	}
	employeeService, err := employees.NewService(employees.NewRepository(dbClient.DB()), auditService, dbClient, logg)
	if err != nil {
		return nil, err
	}
	outboxRepo := outbox.NewRepository(dbClient.DB())
	notificationsService, err := notifications.NewService(notifications.ServiceParams{
		Repo:         notifications.NewRepository(dbClient.DB()),
		Outbox:       outbox.NewService(outboxRepo, logg),
		Logger:       logg,
		HistoryLimit: cfg.Production.NotificationsHistory,
	})
	if err != nil {
		return nil, err
	}
	productionService, err := production.NewService(production.ServiceParams{
		Repo:          production.NewRepository(dbClient.DB()),
		Materials:     materialService,
		Employees:     employeeService,
		Audit:         auditService,
		Notifications: notificationsService,
		Tx:            dbClient,
		Logger:        logg,
		Config: production.Config{
			RequireCutBeforeSew: cfg.Production.RequireCutBeforeSew,
			CompletedTasksLimit: cfg.Production.CompletedTasksLimit,
		},
	})
	if err != nil {
		return nil, err
	}

	reminders, err := cron.NewReminderJob(cron.ReminderJobParams{
		Logger:   logg,
		DB:       dbClient,
		Tasks:    productionService,
		Notifier: notificationsService,
		After:    cfg.Cron.ReminderAfter,
	})
	if err != nil {
		return nil, err
	}
	lowStock, err := cron.NewLowStockJob(cron.LowStockJobParams{
		Logger:    logg,
		Materials: materialService,
	})
	if err != nil {
		return nil, err
	}
	retention, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outboxRepo,
	})
	if err != nil {
		return nil, err
	}
	return []cron.Job{reminders, lowStock, retention}, nil
}

func lockScope(env string) string {
	if env == "" {
		env = "local"
	}
	return "cron-worker:" + env
}
