package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/juliaconfecciones/production-backend/api/controllers"
	ordercontrollers "github.com/juliaconfecciones/production-backend/api/controllers/orders"
	portalcontrollers "github.com/juliaconfecciones/production-backend/api/controllers/portal"
	"github.com/juliaconfecciones/production-backend/api/middleware"
	"github.com/juliaconfecciones/production-backend/internal/audit"
	"github.com/juliaconfecciones/production-backend/internal/employees"
	"github.com/juliaconfecciones/production-backend/internal/materials"
	"github.com/juliaconfecciones/production-backend/internal/notifications"
	"github.com/juliaconfecciones/production-backend/internal/payments"
	"github.com/juliaconfecciones/production-backend/internal/production"
	"github.com/juliaconfecciones/production-backend/pkg/config"
	"github.com/juliaconfecciones/production-backend/pkg/db"
	"github.com/juliaconfecciones/production-backend/pkg/logger"
	"github.com/juliaconfecciones/production-backend/pkg/redis"
)

// rateLimiter is the redis surface the login limiter needs.
type rateLimiter interface {
	redis.Pinger
	middleware.RateLimiterStore
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient rateLimiter,
	gatherer prometheus.Gatherer,
	employeeService employees.Service,
	materialService materials.Service,
	productionService production.Service,
	paymentService payments.Service,
	auditService audit.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	if cfg.FeatureFlags.AllowCORS {
		r.Use(middleware.CORS(cfg.App.CORSOrigins))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginCodeLimit,
	)

	var redisPinger redis.Pinger
	var limiterStore middleware.RateLimiterStore
	if redisClient != nil {
		redisPinger = redisClient
		limiterStore = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminKey(cfg.Admin.APIKey, logg))

			r.Route("/employees", func(r chi.Router) {
				r.Post("/", controllers.RegisterEmployee(employeeService, logg))
				r.Get("/", controllers.ListEmployees(employeeService, logg))
				r.Get("/{employeeId}", controllers.GetEmployee(employeeService, logg))
				r.Post("/{employeeId}/deactivate", controllers.DeactivateEmployee(employeeService, logg))
				r.Get("/{employeeId}/pay-summary", controllers.EmployeePaySummary(paymentService, logg))
			})

			r.Route("/materials", func(r chi.Router) {
				r.Post("/", controllers.RegisterMaterial(materialService, logg))
				r.Get("/", controllers.ListMaterials(materialService, logg))
				r.Get("/below-threshold", controllers.MaterialsBelowThreshold(materialService, logg))
				r.Post("/{materialId}/restock", controllers.RestockMaterial(materialService, logg))
				r.Post("/{materialId}/deactivate", controllers.DeactivateMaterial(materialService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", ordercontrollers.Create(productionService, logg))
				r.Get("/{orderId}", ordercontrollers.Detail(productionService, logg))
				r.Get("/{orderId}/audit", ordercontrollers.AuditTrail(auditService, logg))
				r.Get("/{orderId}/shipments", ordercontrollers.Shipments(productionService, logg))
				r.Post("/{orderId}/stages/{stage}/dispatch", ordercontrollers.Dispatch(productionService, logg))
				r.Post("/{orderId}/stages/{stage}/paid", ordercontrollers.MarkPaid(paymentService, logg))
			})

			r.Get("/reports/production", ordercontrollers.Report(productionService, logg))
		})

		r.Route("/portal", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, limiterStore, logg)).
				Post("/login", portalcontrollers.Login(employeeService, cfg.JWT, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.PortalAuth(cfg.JWT, logg))

				r.Route("/tasks", func(r chi.Router) {
					r.Get("/", portalcontrollers.PendingTasks(productionService, logg))
					r.Get("/completed", portalcontrollers.CompletedTasks(productionService, logg))
					r.Get("/{orderId}", portalcontrollers.TaskDetail(productionService, logg))
					r.Post("/{orderId}/stages/{stage}/confirm", portalcontrollers.ConfirmCompletion(productionService, logg))
					r.Post("/{orderId}/stages/{stage}/status", portalcontrollers.UpdateStatus(productionService, logg))
				})
				r.Get("/pay-summary", portalcontrollers.PaySummary(paymentService, logg))
				r.Get("/notifications", portalcontrollers.ListNotifications(notificationsService, logg))
				r.Post("/notifications/{notificationId}/read", portalcontrollers.MarkNotificationRead(notificationsService, logg))
			})
		})
	})

	return r
}
