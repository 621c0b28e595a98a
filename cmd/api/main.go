package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/juliaconfecciones/production-backend/api/routes"
	"github.com/juliaconfecciones/production-backend/internal/audit"
	"github.com/juliaconfecciones/production-backend/internal/employees"
	"github.com/juliaconfecciones/production-backend/internal/materials"
	"github.com/juliaconfecciones/production-backend/internal/notifications"
	"github.com/juliaconfecciones/production-backend/internal/payments"
	"github.com/juliaconfecciones/production-backend/internal/production"
	"github.com/juliaconfecciones/production-backend/pkg/config"
	"github.com/juliaconfecciones/production-backend/pkg/db"
	"github.com/juliaconfecciones/production-backend/pkg/logger"
	"github.com/juliaconfecciones/production-backend/pkg/migrate"
	"github.com/juliaconfecciones/production-backend/pkg/outbox"
	"github.com/juliaconfecciones/production-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	auditService, err := audit.NewService(audit.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}

	materialService, err := materials.NewService(materials.NewRepository(dbClient.DB()), auditService, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create materials service", err)
		os.Exit(1)
	}

	employeeService, err := employees.NewService(employees.NewRepository(dbClient.DB()), auditService, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create employees service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.ServiceParams{
		Repo:         notifications.NewRepository(dbClient.DB()),
		Outbox:       outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Logger:       logg,
		HistoryLimit: cfg.Production.NotificationsHistory,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	ordersRepo := production.NewRepository(dbClient.DB())
	productionService, err := production.NewService(production.ServiceParams{
		Repo:          ordersRepo,
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
		logg.Error(context.Background(), "failed to create production service", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(payments.ServiceParams{
		Repo:          payments.NewRepository(dbClient.DB()),
		Orders:        ordersRepo,
		Employees:     employeeService,
		Audit:         auditService,
		Notifications: notificationsService,
		Tx:            dbClient,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			prometheus.DefaultGatherer,
			employeeService,
			materialService,
			productionService,
			paymentService,
			auditService,
			notificationsService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}
}
