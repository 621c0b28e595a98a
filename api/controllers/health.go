package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/juliaconfecciones/production-backend/api/responses"
	"github.com/juliaconfecciones/production-backend/pkg/config"
	"github.com/juliaconfecciones/production-backend/pkg/db"
	pkgerrors "github.com/juliaconfecciones/production-backend/pkg/errors"
	"github.com/juliaconfecciones/production-backend/pkg/logger"
	"github.com/juliaconfecciones/production-backend/pkg/redis"
)

const readinessTimeout = 2 * time.Second

const envHeader = "X-Production-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and redis. A nil pinger is reported as skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbPinger db.Pinger, redisPinger redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{
			"database": pingStatus(ctx, dbPinger),
			"redis":    pingStatus(ctx, redisPinger),
		}
		for name, status := range checks {
			if status == "down" {
				err := pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").
					WithDetails(map[string]any{"dependency": name, "checks": checks})
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

type pinger interface {
	Ping(context.Context) error
}

func pingStatus(ctx context.Context, p pinger) string {
	if p == nil {
		return "skipped"
	}
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "up"
}
